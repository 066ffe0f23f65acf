package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/free-ocr/internal/common"
	"github.com/joseph-ayodele/free-ocr/internal/extraction"
	"github.com/joseph-ayodele/free-ocr/internal/llm"
	"github.com/joseph-ayodele/free-ocr/internal/ocr"
	"github.com/joseph-ayodele/free-ocr/internal/rewrite"
)

type fixture struct {
	srv      *Server
	genCalls int32
}

func newFixture(t *testing.T, genErr error, ocrErr error) *fixture {
	t.Helper()
	fx := &fixture{}
	gen := llm.GeneratorFunc(func(_ context.Context, req llm.GenerateRequest) (string, error) {
		atomic.AddInt32(&fx.genCalls, 1)
		if genErr != nil {
			return "", genErr
		}
		return "rewritten:" + req.Input, nil
	})
	proxy := rewrite.NewService(gen, nil)
	rec := ocr.RecognizerFunc(func(context.Context, []byte) (ocr.Result, error) {
		if ocrErr != nil {
			return ocr.Result{}, ocrErr
		}
		return ocr.Result{Text: "# Receipt\nTotal: 12", Method: ocr.MethodRemote}, nil
	})
	session := extraction.NewSession(rec, proxy, nil)
	fx.srv = New(proxy, rec, session, nil)
	return fx
}

func (fx *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	fx.srv.ServeHTTP(rr, req)
	return rr
}

func imageBody(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 6, 6))))
	b, _ := json.Marshal(map[string]string{"image_data": base64.StdEncoding.EncodeToString(buf.Bytes())})
	return string(b)
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestRewriteEndpoint(t *testing.T) {
	fx := newFixture(t, nil, nil)
	rr := fx.do(t, http.MethodPost, "/api/change_response_mode", `{"mode":"json","content":"Total: 12"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, map[string]string{"text": "rewritten:OCR Content: Total: 12\nMode: json"}, decode[map[string]string](t, rr))
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))
}

// Scenario D: an unknown mode is a 400 and the generator is not called.
func TestRewriteEndpointInvalidMode(t *testing.T) {
	fx := newFixture(t, nil, nil)
	rr := fx.do(t, http.MethodPost, "/api/change_response_mode", `{"mode":"xml","content":"..."}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode[map[string]string](t, rr)
	assert.Contains(t, body["error"], "xml")
	assert.Zero(t, atomic.LoadInt32(&fx.genCalls))
}

func TestRewriteEndpointBadBodies(t *testing.T) {
	fx := newFixture(t, nil, nil)
	for _, body := range []string{`not json`, `{"mode":"json"}`, `{"content":"x"}`} {
		rr := fx.do(t, http.MethodPost, "/api/change_response_mode", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
		assert.NotEmpty(t, decode[map[string]string](t, rr)["error"])
	}
	assert.Zero(t, atomic.LoadInt32(&fx.genCalls))
}

func TestRewriteEndpointGeneratorFailure(t *testing.T) {
	fx := newFixture(t, errors.New("rate limited"), nil)
	rr := fx.do(t, http.MethodPost, "/api/change_response_mode", `{"mode":"zod","content":"x"}`)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.NotEmpty(t, decode[map[string]string](t, rr)["error"])
}

func TestModesEndpoint(t *testing.T) {
	fx := newFixture(t, nil, nil)
	rr := fx.do(t, http.MethodGet, "/api/modes", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[struct {
		Modes []modeInfo `json:"modes"`
	}](t, rr)
	require.Len(t, body.Modes, 5)
	assert.Equal(t, "markdown", body.Modes[0].Mode)
	assert.True(t, body.Modes[0].Primary)
	assert.Equal(t, "Zod", body.Modes[3].Label)
}

func TestOCREndpoint(t *testing.T) {
	fx := newFixture(t, nil, nil)
	rr := fx.do(t, http.MethodPost, "/api/ocr", imageBody(t))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "# Receipt\nTotal: 12", decode[map[string]string](t, rr)["text"])

	rr = fx.do(t, http.MethodPost, "/api/ocr", `{"image_data":"@@@"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestOCREndpointUpstreamFailure(t *testing.T) {
	fx := newFixture(t, nil, common.Upstreamf(errors.New("503"), "ocr endpoint answered 503"))
	rr := fx.do(t, http.MethodPost, "/api/ocr", imageBody(t))
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, "ocr endpoint answered 503", decode[map[string]string](t, rr)["error"])
}

func TestExtractionFlow(t *testing.T) {
	fx := newFixture(t, nil, nil)

	rr := fx.do(t, http.MethodGet, "/api/extractions/current", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "IDLE", decode[snapshotView](t, rr).Phase)

	rr = fx.do(t, http.MethodGet, "/api/extractions/current/export.xlsx", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = fx.do(t, http.MethodPost, "/api/extractions", imageBody(t))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	view := decode[snapshotView](t, rr)
	assert.Equal(t, "ALL_SETTLED", view.Phase)
	assert.Equal(t, uint64(1), view.Batch)
	assert.Empty(t, view.Failed)
	assert.Contains(t, view.MarkdownHTML, "<h1>Receipt</h1>")
	require.Len(t, view.Modes, 5)
	for _, m := range view.Modes {
		assert.Equal(t, "ready", m.Status, m.Mode)
		assert.True(t, m.Selectable, m.Mode)
	}
	assert.Equal(t, int32(4), atomic.LoadInt32(&fx.genCalls))

	rr = fx.do(t, http.MethodPost, "/api/extractions/current/select", `{"mode":"pydantic"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "pydantic", decode[snapshotView](t, rr).Selected)

	rr = fx.do(t, http.MethodPost, "/api/extractions/current/select", `{"mode":"yaml"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = fx.do(t, http.MethodGet, "/api/extractions/current/export.xlsx", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "batch-1.xlsx")
	f, err := excelize.OpenReader(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Extractions")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestExtractionRewriteFailuresStillSettle(t *testing.T) {
	fx := newFixture(t, errors.New("generator down"), nil)

	rr := fx.do(t, http.MethodPost, "/api/extractions", imageBody(t))
	require.Equal(t, http.StatusOK, rr.Code)
	view := decode[snapshotView](t, rr)
	assert.Equal(t, "ALL_SETTLED", view.Phase)
	assert.ElementsMatch(t, []string{"plain", "json", "pydantic", "zod"}, view.Failed)

	rr = fx.do(t, http.MethodPost, "/api/extractions/current/select", `{"mode":"json"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestExtractionOCRFailure(t *testing.T) {
	fx := newFixture(t, nil, common.Upstreamf(errors.New("500"), "ocr endpoint answered 500"))

	rr := fx.do(t, http.MethodPost, "/api/extractions", imageBody(t))
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	view := decode[snapshotView](t, rr)
	assert.Equal(t, "EXTRACT_FAILED", view.Phase)
	assert.Equal(t, "ocr endpoint answered 500", view.Error)
	assert.Zero(t, atomic.LoadInt32(&fx.genCalls))
}

func TestBodyLimit(t *testing.T) {
	fx := newFixture(t, nil, nil)
	fx.srv = New(fx.srv.proxy, fx.srv.recognizer, fx.srv.session, nil, WithMaxBodyBytes(16))
	rr := fx.do(t, http.MethodPost, "/api/change_response_mode", `{"mode":"json","content":"way past sixteen bytes"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decode[map[string]string](t, rr)["error"], "exceeds")
}

func TestCORSPreflight(t *testing.T) {
	fx := newFixture(t, nil, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/change_response_mode", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	fx.srv.ServeHTTP(rr, req)

	assert.Less(t, rr.Code, 300)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Zero(t, atomic.LoadInt32(&fx.genCalls))
}

func TestHealthAndIndex(t *testing.T) {
	fx := newFixture(t, nil, nil)
	rr := fx.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = fx.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "free-ocr")
}
