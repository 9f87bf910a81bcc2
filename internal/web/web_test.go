package web

import (
	"context"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ia-assistant/server/internal/artifacts"
	"github.com/ia-assistant/server/internal/metrics"
	"github.com/ia-assistant/server/internal/pipeline/model"
	"github.com/ia-assistant/server/internal/runs"
)

type fakeRunner struct {
	state model.State
	got   []model.RunInput
}

func (f *fakeRunner) Run(_ context.Context, in model.RunInput) model.State {
	f.got = append(f.got, in)
	s := f.state
	s.UserInput = in.UserInput
	s.RecipientEmail = in.RecipientEmail
	s.UserFeedback = in.UserFeedback
	return s
}

type testServer struct {
	router  http.Handler
	runner  *fakeRunner
	runs    *runs.MemoryRunRepository
	store   *artifacts.Store
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T, state model.State) *testServer {
	t.Helper()
	store, err := artifacts.NewStore(model.ArtifactConfig{Dir: filepath.Join(t.TempDir(), "pdfs"), Prefix: "respuesta"})
	require.NoError(t, err)

	ts := &testServer{
		runner:  &fakeRunner{state: state},
		runs:    runs.NewMemoryRunRepository(),
		store:   store,
		metrics: metrics.New(),
	}
	router, err := NewRouter(Config{SecretKey: "test-secret"}, Deps{
		Runner:  ts.runner,
		Runs:    ts.runs,
		Store:   store,
		Metrics: ts.metrics,
	})
	require.NoError(t, err)
	ts.router = router
	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	return rr
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// follow replays the cookies of a redirect onto a GET of its location.
func follow(t *testing.T, ts *testServer, rr *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rr.Code)
	req := httptest.NewRequest(http.MethodGet, rr.Header().Get("Location"), nil)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	next := ts.do(req)
	require.Equal(t, http.StatusOK, next.Code)
	return next.Body.String()
}

func successState() model.State {
	return model.State{
		InputValid:        true,
		ProcessedInput:    "What is 2+2?",
		LLMResponse:       "4",
		ModelUsed:         "llama-3.3-70b-versatile",
		PDFPath:           "/tmp/respuesta_20240305_140709.pdf",
		PDFFilename:       "respuesta_20240305_140709.pdf",
		EmailSent:         true,
		FeedbackProcessed: true,
		FeedbackSentiment: model.SentimentPositive,
	}
}

func TestIndex(t *testing.T) {
	ts := newTestServer(t, successState())

	rr := ts.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `action="/process"`)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
}

func TestProcess_RendersResultAndPersistsRun(t *testing.T) {
	ts := newTestServer(t, successState())

	rr := ts.do(postForm(url.Values{
		"user_input":      {"  What is 2+2?  "},
		"recipient_email": {" x@y.com "},
		"user_feedback":   {"gracias"},
	}))
	require.Equal(t, http.StatusOK, rr.Code)

	question := template.HTMLEscapeString("What is 2+2?")
	body := rr.Body.String()
	assert.Contains(t, body, question)
	assert.Contains(t, body, `href="/download/respuesta_20240305_140709.pdf"`)
	assert.Contains(t, body, "Enviado por email a x@y.com")
	assert.Contains(t, body, "positive")

	require.Len(t, ts.runner.got, 1)
	in := ts.runner.got[0]
	assert.Equal(t, "What is 2+2?", in.UserInput)
	assert.Equal(t, "x@y.com", in.RecipientEmail)
	assert.Equal(t, "gracias", in.UserFeedback)
	assert.NotEqual(t, uuid.Nil, in.ID)

	rec, err := ts.runs.Find(context.Background(), in.ID)
	require.NoError(t, err)
	assert.Equal(t, "4", rec.Answer)
	assert.True(t, rec.EmailSent)

	// the stored run is reachable from its own page
	page := ts.do(httptest.NewRequest(http.MethodGet, "/results/"+in.ID.String(), nil))
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), question)
}

func TestProcess_EmptyQuestionRedirectsWithoutRunning(t *testing.T) {
	ts := newTestServer(t, successState())

	rr := ts.do(postForm(url.Values{"user_input": {"   "}}))
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assert.Empty(t, ts.runner.got)

	assert.Contains(t, follow(t, ts, rr), "Por favor ingresa una pregunta o mensaje")
}

func TestProcess_StateErrorBecomesFlash(t *testing.T) {
	st := successState()
	st.EmailSent = false
	st.Error = "Error al enviar email: 535 bad credentials"
	ts := newTestServer(t, st)

	rr := ts.do(postForm(url.Values{"user_input": {"What is 2+2?"}, "recipient_email": {"x@y.com"}}))
	assert.Contains(t, follow(t, ts, rr), "Error al enviar email: 535 bad credentials")

	recent, err := ts.runs.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, st.Error, recent[0].Error)
}

func TestProcess_LongErrorStillFlashes(t *testing.T) {
	st := successState()
	st.Error = "Error al generar respuesta: " + strings.Repeat("x", 3500)
	ts := newTestServer(t, st)

	rr := ts.do(postForm(url.Values{"user_input": {"hola"}}))
	require.NotEmpty(t, rr.Result().Cookies())

	body := follow(t, ts, rr)
	assert.Contains(t, body, "Error al generar respuesta: xxx")
	assert.NotContains(t, body, strings.Repeat("x", 3500))
}

func TestTruncateFlash(t *testing.T) {
	assert.Equal(t, "corto", truncateFlash("corto"))

	long := truncateFlash(strings.Repeat("é", maxFlashMessage))
	assert.True(t, utf8.ValidString(long))
	assert.LessOrEqual(t, len(long), maxFlashMessage+len("..."))
	assert.True(t, strings.HasSuffix(long, "..."))
}

func TestDownload(t *testing.T) {
	ts := newTestServer(t, successState())
	art, err := ts.store.Save("pdf", func(w io.Writer) error {
		_, err := io.WriteString(w, "%PDF-1.3 fake")
		return err
	})
	require.NoError(t, err)

	rr := ts.do(httptest.NewRequest(http.MethodGet, "/download/"+art.Filename, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `attachment; filename="`+art.Filename+`"`, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.3 fake", rr.Body.String())
}

func TestDownload_MissingFileFlashes(t *testing.T) {
	ts := newTestServer(t, successState())

	for _, name := range []string{"nope.pdf", ".env"} {
		rr := ts.do(httptest.NewRequest(http.MethodGet, "/download/"+name, nil))
		assert.Contains(t, follow(t, ts, rr), "Error al descargar: artifact not found", name)
	}
}

func TestResult_NotFound(t *testing.T) {
	ts := newTestServer(t, successState())

	assert.Equal(t, http.StatusNotFound, ts.do(httptest.NewRequest(http.MethodGet, "/results/"+uuid.NewString(), nil)).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(httptest.NewRequest(http.MethodGet, "/results/not-a-uuid", nil)).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, successState())

	rr := ts.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	assert.Equal(t, 1.0, testutil.ToFloat64(ts.metrics.HTTPRequests.WithLabelValues("/healthz", http.MethodGet, "200")))

	rr = ts.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "http_requests_total")
}

func TestFlashCookieIsSigned(t *testing.T) {
	ts := newTestServer(t, successState())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: "forged"})
	rr := ts.do(req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), `class="flash`)
}
