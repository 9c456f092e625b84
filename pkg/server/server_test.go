package server

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vanderheijden86/trackr/internal/datasource"
	"github.com/vanderheijden86/trackr/pkg/chart"
	"github.com/vanderheijden86/trackr/pkg/model"
	"github.com/vanderheijden86/trackr/pkg/testutil"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := datasource.NewStaticStore(testutil.NewDefault().Dataset())
	return New(store,
		WithLogger(zaptest.NewLogger(t)),
		WithClock(func() time.Time { return time.Date(2020, 4, 23, 14, 5, 9, 0, time.UTC) }),
	)
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

type chartBody struct {
	Layers []struct {
		Name string `json:"name"`
	} `json:"layers"`
	Annotations []struct {
		EntityID string `json:"entity_id"`
		Text     string `json:"text"`
	} `json:"annotations"`
	Layout struct {
		AxesVisible bool `json:"axes_visible"`
	} `json:"layout"`
	Notice string `json:"notice"`
}

func TestHealth(t *testing.T) {
	rr := get(t, newTestServer(t), "/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotZero(t, body["records"])
}

func TestOptions(t *testing.T) {
	rr := get(t, newTestServer(t), "/api/options")
	require.Equal(t, http.StatusOK, rr.Code)

	var cat datasource.Catalog
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cat))
	assert.Equal(t, []string{"World"}, cat.DefaultSelection)
	assert.Equal(t, 7, cat.DefaultParameter)
	assert.Equal(t, 5, cat.ParameterMin)
	assert.Equal(t, 10, cat.ParameterMax)
	assert.Len(t, cat.Entities, 5)
	assert.True(t, strings.HasPrefix(cat.LastUpdated, "Last updated on "))
}

func TestChartQuery(t *testing.T) {
	rr := get(t, newTestServer(t), "/api/chart?entity=Germany&entity=Italy&days=7&bounds=q65,q95")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var body chartBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Len(t, body.Layers, 5*2+2)
	require.Len(t, body.Annotations, 2)
	assert.Equal(t, "Germany", body.Annotations[0].EntityID)
	assert.Equal(t, "Italy", body.Annotations[1].EntityID)
	assert.True(t, body.Layout.AxesVisible)
}

func TestChartDefaultsAndPlaceholder(t *testing.T) {
	s := newTestServer(t)

	rr := get(t, s, "/api/chart")
	require.Equal(t, http.StatusOK, rr.Code)
	var empty chartBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &empty))
	assert.False(t, empty.Layout.AxesVisible)
	require.Len(t, empty.Annotations, 1)
	assert.Equal(t, chart.PlaceholderText, empty.Annotations[0].Text)

	rr = get(t, s, "/api/chart?entity=World")
	require.Equal(t, http.StatusOK, rr.Code)
	var world chartBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &world))
	assert.Len(t, world.Layers, 7, "default bounds draw both tiers")

	rr = get(t, s, "/api/chart?entity=World&bounds=")
	var bare chartBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &bare))
	assert.Len(t, bare.Layers, 3, "an empty bounds value hides every band")
}

func TestChartUnknownParameter(t *testing.T) {
	rr := get(t, newTestServer(t), "/api/chart?entity=World&days=99")
	require.Equal(t, http.StatusOK, rr.Code)
	var body chartBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, chart.NoticeNoData, body.Notice)
	assert.Empty(t, body.Annotations)
}

func TestChartBadQuery(t *testing.T) {
	s := newTestServer(t)
	for _, target := range []string{
		"/api/chart?entity=World&days=seven",
		"/api/chart?entity=World&bounds=q80",
		"/chart.svg?entity=World&days=1.5",
		"/chart.png?entity=World&width=-3",
	} {
		rr := get(t, s, target)
		assert.Equal(t, http.StatusBadRequest, rr.Code, target)
		assert.Contains(t, rr.Body.String(), "bad query", target)
	}
}

func TestChartImages(t *testing.T) {
	s := newTestServer(t)

	rr := get(t, s, "/chart.svg?entity=World&entity=Spain")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/svg+xml", rr.Header().Get("Content-Type"))
	var doc interface{}
	require.NoError(t, xml.Unmarshal(rr.Body.Bytes(), &doc))

	rr = get(t, s, "/chart.png?entity=World&width=300&height=150")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	img, err := png.Decode(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}

func TestDownload(t *testing.T) {
	rr := get(t, newTestServer(t), "/download")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `attachment; filename="database_20200423_140509.csv"`, rr.Header().Get("Content-Disposition"))

	ds, err := datasource.ParseCSV(bytes.NewReader(rr.Body.Bytes()), nil)
	require.NoError(t, err)
	assert.Equal(t, testutil.NewDefault().Dataset().Len(), ds.Len())
}

func TestDownloadWithoutDataset(t *testing.T) {
	s := New(nil)
	rr := get(t, s, "/download")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestFAQ(t *testing.T) {
	rr := get(t, newTestServer(t), "/faq")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, rr.Body.String(), "How can I reach you?")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	get(t, s, "/api/chart?entity=World")

	rr := get(t, s, "/api/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Enabled bool `json:"enabled"`
		Timings []struct {
			Name  string `json:"name"`
			Count int64  `json:"count"`
		} `json:"timings"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	if body.Enabled {
		names := make([]string, 0, len(body.Timings))
		for _, tm := range body.Timings {
			names = append(names, tm.Name)
		}
		assert.Contains(t, names, "assemble")
		assert.Contains(t, names, "http_request")
	}
}

func TestSummaryEndpoint(t *testing.T) {
	rr := get(t, newTestServer(t), "/api/summary")
	require.Equal(t, http.StatusOK, rr.Code)
	var body []datasource.ParameterSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body, 6)
	assert.Equal(t, 5, body[0].Parameter)
}

func TestCORS(t *testing.T) {
	s := New(datasource.NewStaticStore(testutil.NewDefault().Dataset()),
		WithOptions(Options{CORSOrigins: []string{"https://example.org"}}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://example.org")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	assert.Equal(t, "https://example.org", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestParseRequest(t *testing.T) {
	cat := datasource.Catalog{DefaultParameter: 7, DefaultBounds: model.BoundsBoth}
	cases := []struct {
		query string
		want  chart.Request
	}{
		{"", chart.Request{Selection: []string{}, Parameter: 7, Bounds: model.BoundsBoth}},
		{"entity=B&entity=A&entity=B&days=5", chart.Request{Selection: []string{"B", "A"}, Parameter: 5, Bounds: model.BoundsBoth}},
		{"entity=Korea,+South&bounds=q95", chart.Request{Selection: []string{"Korea, South"}, Parameter: 7, Bounds: model.Bounds95}},
		{"entity=A&bounds=q65&bounds=q95", chart.Request{Selection: []string{"A"}, Parameter: 7, Bounds: model.BoundsBoth}},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/api/chart?"+tc.query, nil)
		got, err := ParseRequest(r, cat)
		require.NoError(t, err, tc.query)
		assert.Equal(t, tc.want.Parameter, got.Parameter, tc.query)
		assert.Equal(t, tc.want.Bounds, got.Bounds, tc.query)
		assert.ElementsMatch(t, tc.want.Selection, got.Selection, tc.query)
		if len(tc.want.Selection) > 0 {
			assert.Equal(t, tc.want.Selection, got.Selection, tc.query)
		}
	}

	_, err := ParseRequest(httptest.NewRequest(http.MethodGet, "/api/chart?days=x", nil), cat)
	assert.True(t, errors.Is(err, ErrBadQuery))
}

func TestRunShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
