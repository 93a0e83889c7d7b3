package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/SampleBias/mcp-stem-informatics/internal/profile"
	"github.com/SampleBias/mcp-stem-informatics/plugin/stemformatics"
	apierrors "github.com/SampleBias/mcp-stem-informatics/server/internal/errors"
	"github.com/SampleBias/mcp-stem-informatics/server/internal/observability"
)

// APIV1Service exposes the tool and resource surface over HTTP.
type APIV1Service struct {
	Profile *profile.Profile
	Client  *stemformatics.Client
	Metrics *observability.Metrics

	logger    *slog.Logger
	tools     map[string]*Tool
	toolOrder []string
}

func NewAPIV1Service(profile *profile.Profile, client *stemformatics.Client, metrics *observability.Metrics) *APIV1Service {
	service := &APIV1Service{
		Profile: profile,
		Client:  client,
		Metrics: metrics,
		logger:  observability.NewLogger(profile.IsDev()),
		tools:   make(map[string]*Tool),
	}
	service.registerTools()
	return service
}

// RegisterRoutes mounts the v1 API onto the echo group.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.GET("/tools", s.listTools)
	g.POST("/tools/:name", s.callTool)
	g.GET("/resources", s.readResourceHandler)
	g.GET("/resources/templates", s.listResourceTemplates)
}

type toolDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *APIV1Service) listTools(c echo.Context) error {
	descriptors := make([]toolDescriptor, 0, len(s.toolOrder))
	for _, name := range s.toolOrder {
		tool := s.tools[name]
		descriptors = append(descriptors, toolDescriptor{Name: tool.Name, Description: tool.Description})
	}
	return c.JSON(http.StatusOK, map[string]any{"tools": descriptors})
}

func (s *APIV1Service) listResourceTemplates(c echo.Context) error {
	templates := make([]map[string]string, 0, len(resourceTemplates))
	for _, r := range resourceTemplates {
		templates = append(templates, map[string]string{
			"uriTemplate": r.URITemplate,
			"description": r.Description,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"resourceTemplates": templates})
}

func (s *APIV1Service) callTool(c echo.Context) error {
	name := c.Param("name")
	tool, ok := s.tools[name]
	if !ok {
		return writeError(c, apierrors.UnknownTool(name))
	}

	args := Args{}
	if err := c.Bind(&args); err != nil {
		return writeError(c, apierrors.InvalidArguments("decode arguments", err))
	}

	rc := observability.NewRequestContext(s.logger, name)
	rc.Info("tool invocation started")

	result, err := tool.Handler(c.Request().Context(), args)
	duration := time.Since(rc.StartTime)
	if err != nil {
		s.Metrics.RecordTool(name, false, duration)
		rc.Error("tool invocation failed", err)
		return writeError(c, err)
	}
	s.Metrics.RecordTool(name, true, duration)
	rc.Info("tool invocation finished", slog.Int64(observability.LogFieldDuration, rc.DurationMs()))
	return c.JSON(http.StatusOK, map[string]any{"result": result})
}

func (s *APIV1Service) readResourceHandler(c echo.Context) error {
	uri := c.QueryParam("uri")
	if uri == "" {
		return writeError(c, apierrors.InvalidArguments("missing uri query parameter", nil))
	}

	result, err := s.readResource(c.Request().Context(), uri)
	if err != nil {
		s.Metrics.RecordResource(false)
		return writeError(c, err)
	}
	s.Metrics.RecordResource(true)
	return c.JSON(http.StatusOK, map[string]any{"contents": result})
}

// writeError maps a handler error onto an HTTP status. Upstream
// failures surface as 502, argument problems as 400.
func writeError(c echo.Context, err error) error {
	var apiErr *stemformatics.APIError
	if errors.As(err, &apiErr) {
		return errorJSON(c, http.StatusBadGateway, string(apiErr.Code), apiErr)
	}
	var reqErr *apierrors.RequestError
	if errors.As(err, &reqErr) {
		return errorJSON(c, reqErr.HTTPStatus(), string(reqErr.Code), reqErr)
	}
	return errorJSON(c, http.StatusBadRequest, string(apierrors.ErrCodeInvalidArguments), err)
}

func errorJSON(c echo.Context, status int, code string, err error) error {
	return c.JSON(status, map[string]any{
		"error": err.Error(),
		"code":  code,
	})
}
