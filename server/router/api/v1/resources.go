package v1

import (
	"context"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	apierrors "github.com/SampleBias/mcp-stem-informatics/server/internal/errors"
)

// Resource describes a readable URI template.
type Resource struct {
	URITemplate string
	Description string
}

// resourceTemplates lists the URI templates the service can resolve.
var resourceTemplates = []Resource{
	{URITemplate: "datasets://{dataset_id}/metadata", Description: "Dataset metadata"},
	{URITemplate: "datasets://{dataset_id}/samples", Description: "Dataset sample annotations"},
	{URITemplate: "datasets://{dataset_id}/expression", Description: "Dataset expression matrix"},
	{URITemplate: "search://datasets", Description: "List all datasets"},
	{URITemplate: "search://samples", Description: "List all samples"},
	{URITemplate: "atlas://types", Description: "Available atlas types"},
}

// readResource resolves a resource URI onto an upstream call.
func (s *APIV1Service) readResource(ctx context.Context, uri string) (any, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, apierrors.InvalidArguments("unparseable resource uri", errors.WithStack(err))
	}
	path := strings.Trim(parsed.Path, "/")

	switch parsed.Scheme {
	case "datasets":
		datasetID := parsed.Host
		if datasetID == "" || path == "" {
			return nil, apierrors.UnknownResource(uri)
		}
		switch path {
		case "metadata":
			return s.Client.Get(ctx, "datasets/"+url.PathEscape(datasetID)+"/metadata", nil)
		case "samples":
			params := url.Values{}
			params.Set("orient", "records")
			return s.Client.Get(ctx, "datasets/"+url.PathEscape(datasetID)+"/samples", params)
		case "expression":
			params := url.Values{}
			params.Set("key", "cpm")
			params.Set("orient", "records")
			return s.Client.Get(ctx, "datasets/"+url.PathEscape(datasetID)+"/expression", params)
		}
	case "search":
		switch parsed.Host {
		case "datasets":
			return s.Client.Get(ctx, "search/datasets", nil)
		case "samples":
			params := url.Values{}
			params.Set("orient", "records")
			params.Set("limit", "50")
			return s.Client.Get(ctx, "search/samples", params)
		}
	case "atlas":
		if parsed.Host == "types" {
			return s.Client.Get(ctx, "atlas-types", nil)
		}
	}
	return nil, apierrors.UnknownResource(uri)
}
