package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONSizer_SerializableValues(t *testing.T) {
	sizer := JSONSizer{}

	tests := []struct {
		name     string
		value    any
		expected int
	}{
		{"String", "hello", len(`"hello"`)},
		{"Nil", nil, len(`null`)},
		{"Number", 42, len(`42`)},
		{"Object", map[string]any{"id": "7283"}, len(`{"id":"7283"}`)},
		{"Array", []int{1, 2, 3}, len(`[1,2,3]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sizer.Size(tt.value))
		})
	}
}

func TestJSONSizer_UnserializableFallback(t *testing.T) {
	sizer := JSONSizer{}

	// Channels cannot be marshaled; the sizer must fall back to an
	// estimate instead of failing.
	size := sizer.Size(make(chan int))
	assert.Greater(t, size, 0)

	// A map containing an unserializable value also falls back.
	size = sizer.Size(map[string]any{"fn": func() {}})
	assert.Greater(t, size, 0)
}

func TestEstimate(t *testing.T) {
	assert.Equal(t, 0, estimate(nil))
	assert.Equal(t, 5, estimate("hello"))
	assert.Equal(t, 3, estimate([]byte{1, 2, 3}))
	assert.Greater(t, estimate([]int64{1, 2, 3, 4}), 0)
	assert.Greater(t, estimate(struct{ A, B int64 }{}), 0)
}
