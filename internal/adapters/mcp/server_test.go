package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/okian/cupstats/internal/domain/aggregate"
	"github.com/okian/cupstats/internal/domain/trend"
	"github.com/okian/cupstats/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type stubProvider struct {
	predictErr error
	gotYear    int
	gotType    string
	gotHost    string
}

func (s *stubProvider) Predict(_ context.Context, year int, predictionType string) (trend.Result, error) {
	s.gotYear, s.gotType = year, predictionType
	if s.predictErr != nil {
		return trend.Result{}, s.predictErr
	}
	return trend.Result{
		Status: trend.StatusOK,
		Summary: &trend.Summary{
			Type:           trend.TotalAttendance,
			Unit:           "millions",
			TargetYear:     2030,
			Forecast:       4.7,
			ReferenceYear:  2018,
			ReferenceValue: 3.5,
		},
	}, nil
}

func (s *stubProvider) EditionMetrics(_ context.Context, year int) (aggregate.Result, error) {
	t := aggregate.NewTable("metric", "value")
	t.Append(aggregate.MetricGoals, 171.0)
	return aggregate.Result{Table: t}, nil
}

func (s *stubProvider) Titles(_ context.Context, host string) (aggregate.Result, error) {
	s.gotHost = host
	return aggregate.Empty(aggregate.LabelNoHostTitles), nil
}

func text(res *gomcp.CallToolResult) string {
	convey.So(res.Content, convey.ShouldHaveLength, 1)
	tc, ok := res.Content[0].(*gomcp.TextContent)
	convey.So(ok, convey.ShouldBeTrue)
	return tc.Text
}

func TestTools(t *testing.T) {
	convey.Convey("Given the tool handlers over a stub provider", t, func() {
		p := &stubProvider{}
		tl := &tools{provider: p, logger: logger.Discard()}
		ctx := context.Background()

		convey.Convey("predict_trend defaults the type and adds summary lines", func() {
			res, _, err := tl.predict(ctx, nil, PredictArgs{Year: 2030})
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.IsError, convey.ShouldBeFalse)
			convey.So(p.gotType, convey.ShouldEqual, "total_attendance")
			convey.So(p.gotYear, convey.ShouldEqual, 2030)

			var out map[string]any
			convey.So(json.Unmarshal([]byte(text(res)), &out), convey.ShouldBeNil)
			convey.So(out["status"], convey.ShouldEqual, "ok")
			convey.So(out["lines"].([]any)[0], convey.ShouldEqual, "Prediction 2030: 4.7 millions")
		})

		convey.Convey("a provider error becomes an error result", func() {
			p.predictErr = errors.New("unknown prediction type")
			res, _, err := tl.predict(ctx, nil, PredictArgs{Type: "corners"})
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.IsError, convey.ShouldBeTrue)
			convey.So(text(res), convey.ShouldContainSubstring, "unknown prediction type")
		})

		convey.Convey("edition_metrics requires a year", func() {
			res, _, err := tl.editionMetrics(ctx, nil, EditionArgs{})
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.IsError, convey.ShouldBeTrue)

			res, _, _ = tl.editionMetrics(ctx, nil, EditionArgs{Year: 2014})
			convey.So(res.IsError, convey.ShouldBeFalse)
			convey.So(text(res), convey.ShouldContainSubstring, "goals")
		})

		convey.Convey("title_distribution passes the host and keeps no-data results", func() {
			res, _, _ := tl.titles(ctx, nil, TitleArgs{Host: "Atlantis"})
			convey.So(p.gotHost, convey.ShouldEqual, "Atlantis")
			convey.So(res.IsError, convey.ShouldBeFalse)
			convey.So(text(res), convey.ShouldContainSubstring, `"no_data": true`)
		})
	})
}

func TestServerSession(t *testing.T) {
	convey.Convey("Given a client connected in memory", t, func() {
		ctx := context.Background()
		server := NewServer(&stubProvider{}, WithLogger(logger.Discard()))

		serverTransport, clientTransport := gomcp.NewInMemoryTransports()
		ss, err := server.Connect(ctx, serverTransport, nil)
		convey.So(err, convey.ShouldBeNil)
		defer ss.Close()

		client := gomcp.NewClient(&gomcp.Implementation{Name: "test", Version: "0"}, nil)
		cs, err := client.Connect(ctx, clientTransport, nil)
		convey.So(err, convey.ShouldBeNil)
		defer cs.Close()

		convey.Convey("every tool is listed", func() {
			list, err := cs.ListTools(ctx, nil)
			convey.So(err, convey.ShouldBeNil)
			names := make([]string, 0, len(list.Tools))
			for _, tool := range list.Tools {
				names = append(names, tool.Name)
			}
			convey.So(names, convey.ShouldContain, ToolPredictTrend)
			convey.So(names, convey.ShouldContain, ToolEditionMetrics)
			convey.So(names, convey.ShouldContain, ToolTitleDistribution)
		})

		convey.Convey("a tool can be called", func() {
			res, err := cs.CallTool(ctx, &gomcp.CallToolParams{
				Name:      ToolPredictTrend,
				Arguments: map[string]any{"year": 2030, "type": "total_attendance"},
			})
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.IsError, convey.ShouldBeFalse)
			convey.So(text(res), convey.ShouldContainSubstring, `"forecast": 4.7`)
		})
	})
}

func TestHandler(t *testing.T) {
	convey.Convey("The streamable handler rejects a plain GET without a session", t, func() {
		h := Handler(NewServer(&stubProvider{}))
		req := httptest.NewRequest(http.MethodGet, "/mcp", http.NoBody)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		convey.So(w.Code, convey.ShouldBeGreaterThanOrEqualTo, http.StatusBadRequest)
	})
}
