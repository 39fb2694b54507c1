package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/climate-choropleth/internal/adapter/http"
	"github.com/couchcryptid/climate-choropleth/internal/app"
	"github.com/couchcryptid/climate-choropleth/internal/domain"
	"github.com/couchcryptid/climate-choropleth/internal/panel"
	"github.com/couchcryptid/climate-choropleth/internal/scale"
)

type call struct {
	op      string
	width   int
	height  int
	side    string
	metric  domain.Metric
	year    int
	region  string
	pointer scale.Point
}

type mockPanels struct {
	readyErr error
	opErr    error
	frame    panel.Frame
	tip      panel.TooltipView
	calls    []call
}

func (m *mockPanels) CheckReadiness(_ context.Context) error { return m.readyErr }

func (m *mockPanels) SelectMetric(_ context.Context, side string, metric domain.Metric) error {
	m.calls = append(m.calls, call{op: "metric", side: side, metric: metric})
	return m.opErr
}

func (m *mockPanels) SelectYear(_ context.Context, side string, year int) error {
	m.calls = append(m.calls, call{op: "year", side: side, year: year})
	return m.opErr
}

func (m *mockPanels) Hover(_ context.Context, side, region string, pointer scale.Point) error {
	m.calls = append(m.calls, call{op: "hover", side: side, region: region, pointer: pointer})
	return m.opErr
}

func (m *mockPanels) PointerMove(_ context.Context, side string, pointer scale.Point) error {
	m.calls = append(m.calls, call{op: "move", side: side, pointer: pointer})
	return m.opErr
}

func (m *mockPanels) HoverEnd(_ context.Context, side string) error {
	m.calls = append(m.calls, call{op: "hover_end", side: side})
	return m.opErr
}

func (m *mockPanels) Resize(_ context.Context, width, height int) error {
	m.calls = append(m.calls, call{op: "resize", width: width, height: height})
	return m.opErr
}

func (m *mockPanels) Frame(_ context.Context, side string) (panel.Frame, error) {
	if side != app.Left && side != app.Right {
		return panel.Frame{}, fmt.Errorf("%q: %w", side, app.ErrUnknownPanel)
	}
	f := m.frame
	f.Panel = side
	return f, nil
}

func (m *mockPanels) Frames(ctx context.Context) (panel.Frame, panel.Frame, panel.TooltipView, error) {
	l, _ := m.Frame(ctx, app.Left)
	r, _ := m.Frame(ctx, app.Right)
	return l, r, m.tip, nil
}

func (m *mockPanels) Tooltip(_ context.Context) (panel.TooltipView, error) { return m.tip, nil }

func readyFrame() panel.Frame {
	v := 5.0
	return panel.Frame{
		State:   "ready",
		Width:   10,
		Height:  10,
		Metric:  "temperature",
		Label:   "Temperatur",
		Unit:    "°C",
		Year:    1991,
		Years:   []int{1991, 1992},
		Metrics: []panel.MetricOption{{Key: "temperature", Label: "Temperatur", Enabled: true, Selected: true}},
		Regions: []panel.RegionView{{Name: "A", Path: "M0,0L10,0L10,10Z", Fill: "#0000ff", Opacity: 1, Value: &v}},
		Legend:  &scale.Legend{Width: 10},
	}
}

func newTestServer(m *mockPanels) *httpadapter.Server {
	return httpadapter.NewServer(":0", m, slog.Default())
}

func do(t *testing.T, srv *httpadapter.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := do(t, newTestServer(&mockPanels{}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := do(t, newTestServer(&mockPanels{}), http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	m := &mockPanels{readyErr: errors.New("panels loading (left loading, right ready)")}
	rec := do(t, newTestServer(m), http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := do(t, newTestServer(&mockPanels{}), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestPage(t *testing.T) {
	m := &mockPanels{frame: readyFrame()}
	rec := do(t, newTestServer(m), http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<title>Klimavergleich</title>")
	assert.Equal(t, 2, strings.Count(rec.Body.String(), `data-region="A"`))
}

func TestPanelSVG(t *testing.T) {
	m := &mockPanels{frame: readyFrame()}
	rec := do(t, newTestServer(m), http.MethodGet, "/panels/right.svg", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "<svg"))
	assert.Contains(t, rec.Body.String(), `fill="#0000ff"`)
}

func TestPanelFrameJSON(t *testing.T) {
	m := &mockPanels{frame: readyFrame()}
	rec := do(t, newTestServer(m), http.MethodGet, "/api/panels/left", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var f panel.Frame
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &f))
	assert.Equal(t, "left", f.Panel)
	assert.Equal(t, "ready", f.State)
	require.Len(t, f.Regions, 1)
	assert.InDelta(t, 5.0, *f.Regions[0].Value, 1e-9)
}

func TestUnknownPanelReturns404(t *testing.T) {
	m := &mockPanels{frame: readyFrame()}
	srv := newTestServer(m)

	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/api/panels/middle", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/panels/middle.svg", "").Code)
}

func TestSelectMetric(t *testing.T) {
	m := &mockPanels{frame: readyFrame()}
	rec := do(t, newTestServer(m), http.MethodPost, "/api/panels/right/metric", `{"metric":"Sonnenscheindauer"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, m.calls, 1)
	assert.Equal(t, call{op: "metric", side: "right", metric: domain.Sunshine}, m.calls[0])
}

func TestSelectMetricRejectsUnknownMetric(t *testing.T) {
	m := &mockPanels{}
	rec := do(t, newTestServer(m), http.MethodPost, "/api/panels/left/metric", `{"metric":"humidity"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, m.calls)
}

func TestSelectYear(t *testing.T) {
	m := &mockPanels{frame: readyFrame()}
	rec := do(t, newTestServer(m), http.MethodPost, "/api/panels/left/year", `{"year":1992}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, m.calls, 1)
	assert.Equal(t, call{op: "year", side: "left", year: 1992}, m.calls[0])
}

func TestHoverReturnsTooltip(t *testing.T) {
	m := &mockPanels{tip: panel.TooltipView{Visible: true, Owner: "left", Text: "A: 5 °C", X: 40, Y: -10}}
	rec := do(t, newTestServer(m), http.MethodPost, "/api/panels/left/hover", `{"region":"A","x":10,"y":20}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, call{op: "hover", side: "left", region: "A", pointer: scale.Point{X: 10, Y: 20}}, m.calls[0])

	var tip panel.TooltipView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tip))
	assert.Equal(t, m.tip, tip)
}

func TestHoverRequiresRegion(t *testing.T) {
	m := &mockPanels{}
	rec := do(t, newTestServer(m), http.MethodPost, "/api/panels/left/hover", `{"x":1,"y":2}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, m.calls)
}

func TestMoveAndHoverEnd(t *testing.T) {
	m := &mockPanels{}
	srv := newTestServer(m)

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/panels/right/move", `{"x":12,"y":22}`).Code)
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/panels/right/hover/end", "").Code)
	assert.Equal(t, []call{
		{op: "move", side: "right", pointer: scale.Point{X: 12, Y: 22}},
		{op: "hover_end", side: "right"},
	}, m.calls)
}

func TestTooltip(t *testing.T) {
	rec := do(t, newTestServer(&mockPanels{}), http.MethodGet, "/api/tooltip", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"visible":false,"x":0,"y":0}`, rec.Body.String())
}

func TestResize(t *testing.T) {
	m := &mockPanels{}
	rec := do(t, newTestServer(m), http.MethodPost, "/api/viewport", `{"width":800,"height":300}`)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"width":800,"height":300}`, rec.Body.String())
	assert.Equal(t, []call{{op: "resize", width: 800, height: 300}}, m.calls)
}

func TestResizeRejectsInvalidViewport(t *testing.T) {
	m := &mockPanels{opErr: fmt.Errorf("resize to 0x300: %w", app.ErrInvalidViewport)}
	rec := do(t, newTestServer(m), http.MethodPost, "/api/viewport", `{"width":0,"height":300}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMalformedBodyReturns400(t *testing.T) {
	srv := newTestServer(&mockPanels{})

	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPost, "/api/panels/left/year", `{"year":`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPost, "/api/panels/left/year", `{"yr":1992}`).Code)
}

func TestErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"year not found", fmt.Errorf("select year 1800: %w", domain.ErrYearNotFound), http.StatusNotFound},
		{"region not found", fmt.Errorf("hover: %w", domain.ErrRegionNotFound), http.StatusNotFound},
		{"metric unavailable", fmt.Errorf("select: %w", domain.ErrMetricUnavailable), http.StatusConflict},
		{"not ready", panel.ErrNotReady, http.StatusConflict},
		{"panel failed", panel.ErrPanelFailed, http.StatusConflict},
		{"stopped", app.ErrStopped, http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockPanels{opErr: tt.err}
			rec := do(t, newTestServer(m), http.MethodPost, "/api/panels/left/year", `{"year":1800}`)

			assert.Equal(t, tt.want, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.err.Error(), body["error"])
		})
	}
}

func TestWrongMethodIsRejected(t *testing.T) {
	rec := do(t, newTestServer(&mockPanels{}), http.MethodGet, "/api/panels/left/year", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
