package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/SampleBias/mcp-stem-informatics/internal/profile"
	"github.com/SampleBias/mcp-stem-informatics/plugin/stemformatics"
	"github.com/SampleBias/mcp-stem-informatics/store/cache"
	"github.com/SampleBias/mcp-stem-informatics/server/internal/observability"
)

type capturedRequest struct {
	Method string
	Path   string
	Query  url.Values
}

func newTestService(t *testing.T, status int, payload any) (*APIV1Service, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = append(captured, capturedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query()})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(upstream.Close)

	config := stemformatics.DefaultConfig()
	config.BaseURL = upstream.URL
	client := stemformatics.NewClient(config, cache.NopStore{})

	p := &profile.Profile{Mode: "dev"}
	metrics := observability.NewMetrics("test", prometheus.NewRegistry())
	return NewAPIV1Service(p, client, metrics), &captured
}

func invokeTool(t *testing.T, service *APIV1Service, name, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tools/"+name, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/tools/:name")
	c.SetParamNames("name")
	c.SetParamValues(name)
	require.NoError(t, service.callTool(c))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestListTools(t *testing.T) {
	service, _ := newTestService(t, http.StatusOK, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tools", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, service.listTools(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Tools []toolDescriptor `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Tools, 16)

	names := make(map[string]bool, len(body.Tools))
	for _, tool := range body.Tools {
		names[tool.Name] = true
		require.NotEmpty(t, tool.Description)
	}
	for _, expected := range []string{
		"get_dataset_metadata", "get_dataset_expression", "perform_ttest",
		"search_datasets", "download_datasets", "get_atlas_projection",
	} {
		require.True(t, names[expected], "missing tool %s", expected)
	}
}

func TestCallTool(t *testing.T) {
	t.Run("PathAndDefaults", func(t *testing.T) {
		service, captured := newTestService(t, http.StatusOK, map[string]any{"name": "myeloid atlas"})

		rec := invokeTool(t, service, "get_dataset_samples", `{"dataset_id": "2000"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		require.Len(t, *captured, 1)
		got := (*captured)[0]
		require.Equal(t, http.MethodGet, got.Method)
		require.Equal(t, "/datasets/2000/samples", got.Path)
		require.Equal(t, "records", got.Query.Get("orient"))
		require.Equal(t, "false", got.Query.Get("as_file"))

		body := decodeBody(t, rec)
		require.Equal(t, map[string]any{"name": "myeloid atlas"}, body["result"])
	})

	t.Run("OptionalParamOmittedWhenEmpty", func(t *testing.T) {
		service, captured := newTestService(t, http.StatusOK, nil)

		invokeTool(t, service, "get_dataset_expression", `{"dataset_id": "2000"}`)
		require.False(t, (*captured)[0].Query.Has("gene_id"))

		invokeTool(t, service, "get_dataset_expression", `{"dataset_id": "2000", "gene_id": "ENSG00000102145", "log2": true}`)
		got := (*captured)[1]
		require.Equal(t, "ENSG00000102145", got.Query.Get("gene_id"))
		require.Equal(t, "true", got.Query.Get("log2"))
		require.Equal(t, "cpm", got.Query.Get("key"))
	})

	t.Run("IntegerArguments", func(t *testing.T) {
		service, captured := newTestService(t, http.StatusOK, nil)

		invokeTool(t, service, "get_correlated_genes", `{"dataset_id": "2000", "gene_id": "ENSG00000102145", "cutoff": 50}`)
		require.Equal(t, "50", (*captured)[0].Query.Get("cutoff"))

		invokeTool(t, service, "get_dataset_pca", `{"dataset_id": "2000"}`)
		require.Equal(t, "20", (*captured)[1].Query.Get("dims"))
	})

	t.Run("DatasetIDListJoined", func(t *testing.T) {
		service, captured := newTestService(t, http.StatusOK, nil)

		invokeTool(t, service, "download_datasets", `{"dataset_ids": ["2000", "3000"]}`)
		require.Equal(t, "/download", (*captured)[0].Path)
		require.Equal(t, "2000,3000", (*captured)[0].Query.Get("dataset_id"))
	})

	t.Run("MissingRequiredArgument", func(t *testing.T) {
		service, captured := newTestService(t, http.StatusOK, nil)

		rec := invokeTool(t, service, "get_dataset_metadata", `{}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "INVALID_ARGUMENTS", decodeBody(t, rec)["code"])
		require.Empty(t, *captured)
	})

	t.Run("UnknownTool", func(t *testing.T) {
		service, _ := newTestService(t, http.StatusOK, nil)

		rec := invokeTool(t, service, "no_such_tool", `{}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "UNKNOWN_TOOL", decodeBody(t, rec)["code"])
	})

	t.Run("UpstreamFailureMapsToBadGateway", func(t *testing.T) {
		service, _ := newTestService(t, http.StatusInternalServerError, map[string]string{"detail": "boom"})

		rec := invokeTool(t, service, "get_atlas_types", `{}`)
		require.Equal(t, http.StatusBadGateway, rec.Code)
		require.Equal(t, string(stemformatics.ErrCodeUpstreamStatus), decodeBody(t, rec)["code"])
	})
}

func TestReadResource(t *testing.T) {
	readResource := func(t *testing.T, service *APIV1Service, uri string) *httptest.ResponseRecorder {
		t.Helper()
		e := echo.New()
		target := "/api/v1/resources"
		if uri != "" {
			target += "?uri=" + url.QueryEscape(uri)
		}
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		require.NoError(t, service.readResourceHandler(e.NewContext(req, rec)))
		return rec
	}

	t.Run("DatasetSamples", func(t *testing.T) {
		service, captured := newTestService(t, http.StatusOK, []any{map[string]any{"sample_id": "s1"}})

		rec := readResource(t, service, "datasets://2000/samples")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "/datasets/2000/samples", (*captured)[0].Path)
		require.Equal(t, "records", (*captured)[0].Query.Get("orient"))
	})

	t.Run("DatasetExpression", func(t *testing.T) {
		service, captured := newTestService(t, http.StatusOK, nil)

		readResource(t, service, "datasets://2000/expression")
		require.Equal(t, "/datasets/2000/expression", (*captured)[0].Path)
		require.Equal(t, "cpm", (*captured)[0].Query.Get("key"))
	})

	t.Run("AtlasTypes", func(t *testing.T) {
		service, captured := newTestService(t, http.StatusOK, []string{"blood", "myeloid"})

		rec := readResource(t, service, "atlas://types")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "/atlas-types", (*captured)[0].Path)
	})

	t.Run("SearchDatasets", func(t *testing.T) {
		service, captured := newTestService(t, http.StatusOK, nil)

		readResource(t, service, "search://datasets")
		require.Equal(t, "/search/datasets", (*captured)[0].Path)
	})

	t.Run("UnknownURI", func(t *testing.T) {
		service, captured := newTestService(t, http.StatusOK, nil)

		rec := readResource(t, service, "bogus://nope")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "UNKNOWN_RESOURCE", decodeBody(t, rec)["code"])
		require.Empty(t, *captured)
	})

	t.Run("MissingURI", func(t *testing.T) {
		service, _ := newTestService(t, http.StatusOK, nil)

		rec := readResource(t, service, "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "INVALID_ARGUMENTS", decodeBody(t, rec)["code"])
	})
}

func TestListResourceTemplates(t *testing.T) {
	service, _ := newTestService(t, http.StatusOK, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/resources/templates", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, service.listResourceTemplates(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		ResourceTemplates []map[string]string `json:"resourceTemplates"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.ResourceTemplates, 6)
}
