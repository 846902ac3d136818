package webhook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/community-sync/internal/monitoring"
	"github.com/sells-group/community-sync/internal/pipeline"
)

type fakeRunner struct {
	mu   sync.Mutex
	runs []pipeline.User
}

func (f *fakeRunner) Run(_ context.Context, user pipeline.User) *pipeline.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, user)
	return &pipeline.Outcome{
		UserID:     user.ID,
		Stage:      pipeline.StageDone,
		Resolution: &pipeline.Resolution{Kind: pipeline.ResolvedNewLead, RecordID: "00Q1"},
	}
}

func (f *fakeRunner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.runs)
}

func newTestHandler() (*Handler, *fakeRunner) {
	runner := &fakeRunner{}
	h := NewHandler(context.Background(), "secret-token", runner, NewDeduper(8), monitoring.NewCollector())
	return h, runner
}

func post(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHandleEvent_BadTokenRejected(t *testing.T) {
	t.Parallel()

	h, runner := newTestHandler()
	rr := post(t, h.Router(), `{"token":"wrong","event":{"user":{"id":"U1"}}}`)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	h.Wait()
	assert.Zero(t, runner.count())
}

func TestHandleEvent_ChallengeEchoed(t *testing.T) {
	t.Parallel()

	h, runner := newTestHandler()
	rr := post(t, h.Router(), `{"token":"secret-token","challenge":"abc123xyz"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	body, _ := io.ReadAll(rr.Body)
	assert.Equal(t, "abc123xyz", string(body))
	h.Wait()
	assert.Zero(t, runner.count())
}

func TestHandleEvent_AcceptedAndProcessed(t *testing.T) {
	t.Parallel()

	h, runner := newTestHandler()
	rr := post(t, h.Router(), `{"token":"secret-token","event":{"type":"team_join","user":{"id":"U1","profile":{"display_name":"jane","real_name":"Jane Doe"}}}}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	body, _ := io.ReadAll(rr.Body)
	assert.Equal(t, "ok", string(body))

	h.Wait()
	require.Equal(t, 1, runner.count())
	assert.Equal(t, "U1", runner.runs[0].ID)
	assert.Equal(t, "jane", runner.runs[0].DisplayName)
	assert.Equal(t, "Jane Doe", runner.runs[0].RealName)
}

func TestHandleEvent_DuplicateCollapsed(t *testing.T) {
	t.Parallel()

	h, runner := newTestHandler()
	router := h.Router()

	rr := post(t, router, `{"token":"secret-token","event":{"user":{"id":"U1"}}}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = post(t, router, `{"token":"secret-token","event":{"user":{"id":"U1"}}}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	h.Wait()
	assert.Equal(t, 1, runner.count())

	// A different user resumes normal processing.
	post(t, router, `{"token":"secret-token","event":{"user":{"id":"U2"}}}`)
	h.Wait()
	assert.Equal(t, 2, runner.count())
}

// ctxCaptureRunner records the context error observed inside each run.
type ctxCaptureRunner struct {
	mu   sync.Mutex
	errs []error
}

func (r *ctxCaptureRunner) Run(ctx context.Context, user pipeline.User) *pipeline.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, ctx.Err())
	return &pipeline.Outcome{
		UserID:     user.ID,
		Stage:      pipeline.StageDone,
		Resolution: &pipeline.Resolution{Kind: pipeline.ResolvedNewLead},
	}
}

func TestHandleEvent_ProcessingSurvivesShutdownCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	runner := &ctxCaptureRunner{}
	h := NewHandler(ctx, "secret-token", runner, NewDeduper(8), monitoring.NewCollector())
	router := h.Router()

	// Shutdown begins before the event is dispatched; the run must still
	// execute on a live context so the CRM write and feed post both land.
	cancel()
	rr := post(t, router, `{"token":"secret-token","event":{"user":{"id":"U1"}}}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	h.Wait()
	require.Len(t, runner.errs, 1)
	assert.NoError(t, runner.errs[0])
}

func TestHandleEvent_MissingUserIgnored(t *testing.T) {
	t.Parallel()

	h, runner := newTestHandler()
	rr := post(t, h.Router(), `{"token":"secret-token","event":{"type":"team_join"}}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	h.Wait()
	assert.Zero(t, runner.count())
}

func TestHandleEvent_MalformedBody(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler()
	rr := post(t, h.Router(), `{not json`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler()
	router := h.Router()

	post(t, router, `{"token":"secret-token","event":{"user":{"id":"U1"}}}`)
	h.Wait()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)
	assert.Contains(t, rr.Body.String(), `"new_leads":1`)
}
