package stemformatics

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"sync"

	"golang.org/x/sync/semaphore"
)

// SearchAllDatasets pages through search/datasets until the upstream
// returns an empty window and returns the combined result list. The
// client's rate limiter paces the requests.
func (c *Client) SearchAllDatasets(ctx context.Context, pageSize int) ([]any, error) {
	if pageSize <= 0 {
		pageSize = 50
	}

	var all []any
	for start := 0; ; start += pageSize {
		params := url.Values{}
		params.Set("pagination_limit", strconv.Itoa(pageSize))
		params.Set("pagination_start", strconv.Itoa(start))

		result, err := c.Get(ctx, "search/datasets", params)
		if err != nil {
			return nil, err
		}

		page, ok := result.([]any)
		if !ok {
			return nil, InvalidResponse(nil)
		}
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
	}

	return all, nil
}

// ListDatasetSamples pages through a dataset's samples. Iteration
// stops on an empty or short page.
func (c *Client) ListDatasetSamples(ctx context.Context, datasetID string, pageSize int) ([]any, error) {
	if pageSize <= 0 {
		pageSize = 50
	}

	var all []any
	for {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(pageSize))
		params.Set("orient", "records")
		params.Set("offset", strconv.Itoa(len(all)))

		result, err := c.Get(ctx, "datasets/"+datasetID+"/samples", params)
		if err != nil {
			return nil, err
		}

		page, ok := result.([]any)
		if !ok {
			return nil, InvalidResponse(nil)
		}
		all = append(all, page...)
		if len(page) < pageSize {
			break
		}
	}

	return all, nil
}

// ExpressionByGenes fetches expression data for each gene in a dataset
// with bounded concurrency. A failing gene is logged and skipped so a
// single bad ID does not sink the whole batch.
func (c *Client) ExpressionByGenes(ctx context.Context, datasetID string, geneIDs []string, concurrency int64) (map[string]any, error) {
	if concurrency <= 0 {
		concurrency = 3
	}

	sem := semaphore.NewWeighted(concurrency)
	var mu sync.Mutex
	results := make(map[string]any, len(geneIDs))

	var wg sync.WaitGroup
	for _, geneID := range geneIDs {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return results, Canceled(err)
		}

		wg.Add(1)
		go func(geneID string) {
			defer wg.Done()
			defer sem.Release(1)

			params := url.Values{}
			params.Set("gene_id", geneID)
			params.Set("orient", "records")

			result, err := c.Get(ctx, "datasets/"+datasetID+"/expression", params)
			if err != nil {
				slog.Warn("expression fetch failed", "dataset", datasetID, "gene", geneID, "error", err)
				return
			}

			mu.Lock()
			results[geneID] = result
			mu.Unlock()
		}(geneID)
	}

	wg.Wait()
	return results, nil
}
