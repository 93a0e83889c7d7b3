package v1

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Args holds the JSON arguments of a tool invocation.
type Args map[string]any

// String returns a required string argument.
func (a Args) String(name string) (string, error) {
	value, ok := a[name]
	if !ok {
		return "", errors.Errorf("missing required argument %q", name)
	}
	s, ok := value.(string)
	if !ok || s == "" {
		return "", errors.Errorf("argument %q must be a non-empty string", name)
	}
	return s, nil
}

// StringOr returns an optional string argument with a default.
func (a Args) StringOr(name, defaultValue string) string {
	if s, ok := a[name].(string); ok && s != "" {
		return s
	}
	return defaultValue
}

// BoolOr returns an optional bool argument with a default.
func (a Args) BoolOr(name string, defaultValue bool) bool {
	if b, ok := a[name].(bool); ok {
		return b
	}
	return defaultValue
}

// IntOr returns an optional integer argument with a default. JSON
// numbers decode as float64, so both forms are accepted.
func (a Args) IntOr(name string, defaultValue int) int {
	switch v := a[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return defaultValue
}

// StringList returns a required list-of-strings argument.
func (a Args) StringList(name string) ([]string, error) {
	value, ok := a[name]
	if !ok {
		return nil, errors.Errorf("missing required argument %q", name)
	}
	list, ok := value.([]any)
	if !ok {
		return nil, errors.Errorf("argument %q must be a list of strings", name)
	}
	result := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, errors.Errorf("argument %q must be a list of strings", name)
		}
		result = append(result, s)
	}
	if len(result) == 0 {
		return nil, errors.Errorf("argument %q must not be empty", name)
	}
	return result, nil
}

// Tool maps a named operation onto an upstream API call.
type Tool struct {
	Name        string
	Description string
	Handler     func(ctx context.Context, args Args) (any, error)
}

// registerTools builds the tool registry. Parameter marshaling mirrors
// the upstream API expectations: booleans render as "true"/"false" and
// optional parameters are omitted when empty.
func (s *APIV1Service) registerTools() {
	s.addTool(&Tool{
		Name:        "get_dataset_metadata",
		Description: "Get metadata for a specific dataset",
		Handler: func(ctx context.Context, args Args) (any, error) {
			datasetID, err := args.String("dataset_id")
			if err != nil {
				return nil, err
			}
			return s.Client.Get(ctx, "datasets/"+url.PathEscape(datasetID)+"/metadata", nil)
		},
	})

	s.addTool(&Tool{
		Name:        "get_dataset_samples",
		Description: "Get samples for a specific dataset",
		Handler: func(ctx context.Context, args Args) (any, error) {
			datasetID, err := args.String("dataset_id")
			if err != nil {
				return nil, err
			}
			params := url.Values{}
			params.Set("orient", args.StringOr("orient", "records"))
			params.Set("as_file", strconv.FormatBool(args.BoolOr("as_file", false)))
			return s.Client.Get(ctx, "datasets/"+url.PathEscape(datasetID)+"/samples", params)
		},
	})

	s.addTool(&Tool{
		Name:        "get_dataset_expression",
		Description: "Get gene expression data for a dataset, optionally filtered by Ensembl gene ID",
		Handler: func(ctx context.Context, args Args) (any, error) {
			datasetID, err := args.String("dataset_id")
			if err != nil {
				return nil, err
			}
			params := url.Values{}
			params.Set("key", args.StringOr("key", "cpm"))
			params.Set("log2", strconv.FormatBool(args.BoolOr("log2", false)))
			params.Set("orient", args.StringOr("orient", "records"))
			params.Set("as_file", strconv.FormatBool(args.BoolOr("as_file", false)))
			if geneID := args.StringOr("gene_id", ""); geneID != "" {
				params.Set("gene_id", geneID)
			}
			return s.Client.Get(ctx, "datasets/"+url.PathEscape(datasetID)+"/expression", params)
		},
	})

	s.addTool(&Tool{
		Name:        "get_dataset_pca",
		Description: "Get PCA coordinates for a dataset",
		Handler: func(ctx context.Context, args Args) (any, error) {
			datasetID, err := args.String("dataset_id")
			if err != nil {
				return nil, err
			}
			params := url.Values{}
			params.Set("orient", args.StringOr("orient", "records"))
			params.Set("dims", strconv.Itoa(args.IntOr("dims", 20)))
			return s.Client.Get(ctx, "datasets/"+url.PathEscape(datasetID)+"/pca", params)
		},
	})

	s.addTool(&Tool{
		Name:        "get_correlated_genes",
		Description: "Get genes correlated with a specific gene in a dataset",
		Handler: func(ctx context.Context, args Args) (any, error) {
			datasetID, err := args.String("dataset_id")
			if err != nil {
				return nil, err
			}
			geneID, err := args.String("gene_id")
			if err != nil {
				return nil, err
			}
			params := url.Values{}
			params.Set("gene_id", geneID)
			params.Set("cutoff", strconv.Itoa(args.IntOr("cutoff", 30)))
			return s.Client.Get(ctx, "datasets/"+url.PathEscape(datasetID)+"/correlated-genes", params)
		},
	})

	s.addTool(&Tool{
		Name:        "perform_ttest",
		Description: "Perform a t-test for a gene between two sample groups",
		Handler: func(ctx context.Context, args Args) (any, error) {
			datasetID, err := args.String("dataset_id")
			if err != nil {
				return nil, err
			}
			params := url.Values{}
			for _, name := range []string{"gene_id", "sample_group", "sample_group_item1", "sample_group_item2"} {
				value, err := args.String(name)
				if err != nil {
					return nil, err
				}
				params.Set(name, value)
			}
			return s.Client.Get(ctx, "datasets/"+url.PathEscape(datasetID)+"/ttest", params)
		},
	})

	s.addTool(&Tool{
		Name:        "search_datasets",
		Description: "Search for datasets",
		Handler: func(ctx context.Context, args Args) (any, error) {
			params := url.Values{}
			if query := args.StringOr("query_string", ""); query != "" {
				params.Set("query_string", query)
			}
			return s.Client.Get(ctx, "search/datasets", params)
		},
	})

	s.addTool(&Tool{
		Name:        "search_samples",
		Description: "Search for samples",
		Handler: func(ctx context.Context, args Args) (any, error) {
			params := url.Values{}
			params.Set("limit", strconv.Itoa(args.IntOr("limit", 50)))
			params.Set("orient", args.StringOr("orient", "records"))
			if query := args.StringOr("query_string", ""); query != "" {
				params.Set("query_string", query)
			}
			if field := args.StringOr("field", ""); field != "" {
				params.Set("field", field)
			}
			return s.Client.Get(ctx, "search/samples", params)
		},
	})

	s.addTool(&Tool{
		Name:        "get_dataset_values",
		Description: "Get unique values for a key across all datasets",
		Handler: func(ctx context.Context, args Args) (any, error) {
			key, err := args.String("key")
			if err != nil {
				return nil, err
			}
			params := url.Values{}
			params.Set("include_count", strconv.FormatBool(args.BoolOr("include_count", false)))
			return s.Client.Get(ctx, "values/datasets/"+url.PathEscape(key), params)
		},
	})

	s.addTool(&Tool{
		Name:        "get_sample_values",
		Description: "Get unique values for a key across all samples",
		Handler: func(ctx context.Context, args Args) (any, error) {
			key, err := args.String("key")
			if err != nil {
				return nil, err
			}
			params := url.Values{}
			params.Set("include_count", strconv.FormatBool(args.BoolOr("include_count", false)))
			return s.Client.Get(ctx, "values/samples/"+url.PathEscape(key), params)
		},
	})

	s.addTool(&Tool{
		Name:        "download_datasets",
		Description: "Download one or more datasets",
		Handler: func(ctx context.Context, args Args) (any, error) {
			datasetIDs, err := args.StringList("dataset_ids")
			if err != nil {
				return nil, err
			}
			params := url.Values{}
			params.Set("dataset_id", strings.Join(datasetIDs, ","))
			return s.Client.Get(ctx, "download", params)
		},
	})

	s.addTool(&Tool{
		Name:        "get_sample_group_to_genes",
		Description: "Get genes associated with a sample group",
		Handler: func(ctx context.Context, args Args) (any, error) {
			sampleGroup, err := args.String("sample_group")
			if err != nil {
				return nil, err
			}
			sampleGroupItem, err := args.String("sample_group_item")
			if err != nil {
				return nil, err
			}
			params := url.Values{}
			params.Set("sample_group", sampleGroup)
			params.Set("sample_group_item", sampleGroupItem)
			params.Set("cutoff", strconv.Itoa(args.IntOr("cutoff", 10)))
			return s.Client.Get(ctx, "genes/sample-group-to-genes", params)
		},
	})

	s.addTool(&Tool{
		Name:        "get_gene_to_sample_groups",
		Description: "Get sample groups associated with a gene",
		Handler: func(ctx context.Context, args Args) (any, error) {
			geneID, err := args.String("gene_id")
			if err != nil {
				return nil, err
			}
			params := url.Values{}
			params.Set("gene_id", geneID)
			params.Set("sample_group", args.StringOr("sample_group", "cell_type"))
			return s.Client.Get(ctx, "genes/gene-to-sample-groups", params)
		},
	})

	s.addTool(&Tool{
		Name:        "get_atlas_types",
		Description: "Get available atlas types",
		Handler: func(ctx context.Context, _ Args) (any, error) {
			return s.Client.Get(ctx, "atlas-types", nil)
		},
	})

	s.addTool(&Tool{
		Name:        "get_atlas",
		Description: "Get atlas data for an atlas type and item",
		Handler: func(ctx context.Context, args Args) (any, error) {
			atlasType, err := args.String("atlas_type")
			if err != nil {
				return nil, err
			}
			item, err := args.String("item")
			if err != nil {
				return nil, err
			}
			params := url.Values{}
			params.Set("version", args.StringOr("version", ""))
			params.Set("orient", args.StringOr("orient", "records"))
			params.Set("filtered", strconv.FormatBool(args.BoolOr("filtered", false)))
			params.Set("as_file", strconv.FormatBool(args.BoolOr("as_file", false)))
			if query := args.StringOr("query_string", ""); query != "" {
				params.Set("query_string", query)
			}
			if geneID := args.StringOr("gene_id", ""); geneID != "" {
				params.Set("gene_id", geneID)
			}
			return s.Client.Get(ctx, "atlases/"+url.PathEscape(atlasType)+"/"+url.PathEscape(item), params)
		},
	})

	s.addTool(&Tool{
		Name:        "get_atlas_projection",
		Description: "Get atlas projection data for a data source",
		Handler: func(ctx context.Context, args Args) (any, error) {
			atlasType, err := args.String("atlas_type")
			if err != nil {
				return nil, err
			}
			dataSource, err := args.String("data_source")
			if err != nil {
				return nil, err
			}
			return s.Client.Get(ctx, "atlas-projection/"+url.PathEscape(atlasType)+"/"+url.PathEscape(dataSource), nil)
		},
	})
}

func (s *APIV1Service) addTool(tool *Tool) {
	s.tools[tool.Name] = tool
	s.toolOrder = append(s.toolOrder, tool.Name)
}
