// Package mcp exposes trend predictions and edition aggregates as MCP tools
// over the streamable HTTP transport.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/okian/cupstats/internal/domain/aggregate"
	"github.com/okian/cupstats/internal/domain/trend"
	"github.com/okian/cupstats/pkg/logger"
	"github.com/okian/cupstats/pkg/metrics"
)

// Tool names.
const (
	ToolPredictTrend      = "predict_trend"
	ToolEditionMetrics    = "edition_metrics"
	ToolTitleDistribution = "title_distribution"
)

const (
	serverName    = "cupstats"
	serverVersion = "1.0.0"
)

// ErrMissingArgument is returned when a required tool argument is absent.
var ErrMissingArgument = errors.New("missing argument")

// Provider is the subset of the service the tools call.
type Provider interface {
	Predict(ctx context.Context, year int, predictionType string) (trend.Result, error)
	EditionMetrics(ctx context.Context, year int) (aggregate.Result, error)
	Titles(ctx context.Context, host string) (aggregate.Result, error)
}

// PredictArgs is the input schema for predict_trend.
type PredictArgs struct {
	Year int    `json:"year,omitempty" jsonschema:"Target year (0 = configured default)"`
	Type string `json:"type,omitempty" jsonschema:"Prediction type: total_attendance|avg_attendance|goals (default total_attendance)"`
}

// EditionArgs is the input schema for edition_metrics.
type EditionArgs struct {
	Year int `json:"year" jsonschema:"Edition year (required)"`
}

// TitleArgs is the input schema for title_distribution.
type TitleArgs struct {
	Host string `json:"host,omitempty" jsonschema:"Host country filter (blank = all editions)"`
}

// PredictOutput is the predict_trend result: the prediction plus its
// human readable summary lines.
type PredictOutput struct {
	trend.Result
	Lines []string `json:"lines,omitempty"`
}

// Option configures the tool server.
type Option func(*tools)

// WithLogger sets the logger used for tool failures.
func WithLogger(l logger.Logger) Option {
	return func(t *tools) {
		if l != nil {
			t.logger = l
		}
	}
}

type tools struct {
	provider Provider
	logger   logger.Logger
}

// NewServer builds an MCP server with every tool registered.
func NewServer(provider Provider, opts ...Option) *gomcp.Server {
	t := &tools{provider: provider, logger: logger.Discard()}
	for _, opt := range opts {
		opt(t)
	}

	server := gomcp.NewServer(&gomcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	gomcp.AddTool(server, &gomcp.Tool{
		Name:        ToolPredictTrend,
		Description: "Linear trend forecast of total attendance, mean match attendance or goals for a future edition",
	}, t.predict)

	gomcp.AddTool(server, &gomcp.Tool{
		Name:        ToolEditionMetrics,
		Description: "Goals scored, attendance and qualified teams of one edition",
	}, t.editionMetrics)

	gomcp.AddTool(server, &gomcp.Tool{
		Name:        ToolTitleDistribution,
		Description: "Number of titles per winning country, optionally for one host country",
	}, t.titles)

	return server
}

// Handler serves server over the streamable HTTP transport.
func Handler(server *gomcp.Server) http.Handler {
	return gomcp.NewStreamableHTTPHandler(func(*http.Request) *gomcp.Server {
		return server
	}, &gomcp.StreamableHTTPOptions{JSONResponse: true})
}

func (t *tools) predict(ctx context.Context, _ *gomcp.CallToolRequest, args PredictArgs) (*gomcp.CallToolResult, any, error) {
	kind := args.Type
	if kind == "" {
		kind = trend.TotalAttendance.String()
	}
	res, err := t.provider.Predict(ctx, args.Year, kind)
	if err != nil {
		return t.fail(ctx, ToolPredictTrend, err), nil, nil
	}
	out := PredictOutput{Result: res}
	if res.Summary != nil {
		out.Lines = res.Summary.Lines()
	}
	return t.json(ctx, ToolPredictTrend, out)
}

func (t *tools) editionMetrics(ctx context.Context, _ *gomcp.CallToolRequest, args EditionArgs) (*gomcp.CallToolResult, any, error) {
	if args.Year == 0 {
		return t.fail(ctx, ToolEditionMetrics, fmt.Errorf("%w: year", ErrMissingArgument)), nil, nil
	}
	res, err := t.provider.EditionMetrics(ctx, args.Year)
	if err != nil {
		return t.fail(ctx, ToolEditionMetrics, err), nil, nil
	}
	return t.json(ctx, ToolEditionMetrics, res)
}

func (t *tools) titles(ctx context.Context, _ *gomcp.CallToolRequest, args TitleArgs) (*gomcp.CallToolResult, any, error) {
	res, err := t.provider.Titles(ctx, args.Host)
	if err != nil {
		return t.fail(ctx, ToolTitleDistribution, err), nil, nil
	}
	return t.json(ctx, ToolTitleDistribution, res)
}

// json renders v as the text content of a successful result.
func (t *tools) json(ctx context.Context, tool string, v any) (*gomcp.CallToolResult, any, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return t.fail(ctx, tool, err), nil, nil
	}
	metrics.RecordMCPToolCall(tool, true)
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: string(raw)}},
	}, nil, nil
}

// fail reports err inside the result so clients see it as a tool error rather
// than a protocol error.
func (t *tools) fail(ctx context.Context, tool string, err error) *gomcp.CallToolResult {
	metrics.RecordMCPToolCall(tool, false)
	t.logger.Warn(ctx, "tool call failed", logger.String("tool", tool), logger.Error(err))
	return &gomcp.CallToolResult{
		IsError: true,
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf("error: %v", err)}},
	}
}
