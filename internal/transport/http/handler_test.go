package httptransport_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"validation-proxy-service/internal/entity"
	"validation-proxy-service/internal/ratelimit"
	"validation-proxy-service/internal/repository/memory"
	"validation-proxy-service/internal/service"
	httptransport "validation-proxy-service/internal/transport/http"
	"validation-proxy-service/internal/validator"
	"validation-proxy-service/internal/worker"
)

// ---- helpers ----

type testEnv struct {
	router   http.Handler
	registry *memory.JobRegistry
}

type envOpts struct {
	upstream  http.Handler
	timeout   time.Duration
	workers   int
	queueSize int
	limiter   ratelimit.Limiter
	maxBody   int64
	noRun     bool
}

func newTestEnv(t *testing.T, o envOpts) *testEnv {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	if o.upstream == nil {
		o.upstream = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"valid":true}`))
		})
	}
	if o.timeout == 0 {
		o.timeout = 2 * time.Second
	}
	if o.workers == 0 {
		o.workers = 4
	}
	if o.queueSize == 0 {
		o.queueSize = 64
	}

	upstream := httptest.NewServer(o.upstream)
	t.Cleanup(upstream.Close)

	reg := memory.NewJobRegistry()
	client := validator.NewClient(upstream.URL+"/validate", o.timeout, o.maxBody)
	pool := worker.NewPool(worker.NewProcessor(reg, client, log), o.workers, o.queueSize, log)

	if !o.noRun {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			_ = pool.Run(ctx)
			close(done)
		}()
		// registered after upstream.Close, so it runs first
		t.Cleanup(func() {
			cancel()
			<-done
		})
	}

	svc := service.NewJobService(reg, pool, o.limiter)
	h := httptransport.NewHandler(svc, log)
	return &testEnv{router: httptransport.Routes(h, log), registry: reg}
}

func (e *testEnv) start(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/validate/start", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) startOK(t *testing.T, email, url string) string {
	t.Helper()
	rr := e.start(t, fmt.Sprintf(`{"email":%q,"url":%q}`, email, url))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d, body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		JobID string `json:"jobId"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json response: %v, body=%s", err, rr.Body.String())
	}
	if resp.JobID == "" {
		t.Fatalf("expected jobId, body=%s", rr.Body.String())
	}
	return resp.JobID
}

func (e *testEnv) result(t *testing.T, id string) (int, entity.Job) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/validate/result/"+id, nil)
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)

	var j entity.Job
	if rr.Code == http.StatusOK {
		if err := json.Unmarshal(rr.Body.Bytes(), &j); err != nil {
			t.Fatalf("invalid json: %v, body=%s", err, rr.Body.String())
		}
	}
	return rr.Code, j
}

func (e *testEnv) waitTerminal(t *testing.T, id string) entity.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		code, j := e.result(t, id)
		if code != http.StatusOK {
			t.Fatalf("expected 200 while polling, got %d", code)
		}
		if j.Status.Terminal() {
			return j
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", id)
	return entity.Job{}
}

// ---- tests ----

func TestHTTP_StartValidation_202_ThenRunning_ThenDone(t *testing.T) {
	release := make(chan struct{})
	env := newTestEnv(t, envOpts{
		upstream: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"valid":true}`))
		}),
	})

	id := env.startOK(t, "me@example.com", "http://example.com")

	code, j := env.result(t, id)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if j.Status != entity.StatusRunning || j.Result != nil || j.Error != nil {
		t.Fatalf("expected bare running job, got %+v", j)
	}

	close(release)
	j = env.waitTerminal(t, id)
	if j.Status != entity.StatusDone {
		t.Fatalf("expected done, got %s", j.Status)
	}
	if j.Result.StatusCode != 200 || j.Result.Body != `{"valid":true}` || j.Result.ContentType != "application/json" {
		t.Fatalf("unexpected result %+v", j.Result)
	}

	// terminal state never changes
	time.Sleep(20 * time.Millisecond)
	_, again := env.result(t, id)
	if again.Status != entity.StatusDone || again.Result.Body != j.Result.Body {
		t.Fatalf("terminal state changed: %+v", again)
	}
}

func TestHTTP_StartValidation_400(t *testing.T) {
	env := newTestEnv(t, envOpts{noRun: true})

	cases := []struct {
		name string
		body string
		want string
	}{
		{"ftp scheme", `{"email":"me@example.com","url":"ftp://example.com"}`, "url scheme must be http or https"},
		{"empty email", `{"email":"","url":"http://example.com"}`, "missing field: email"},
		{"empty email with bad url", `{"email":"","url":"ftp://example.com"}`, "missing field: email"},
		{"whitespace url", `{"email":"me@example.com","url":"  "}`, "missing field: url"},
		{"no fields", `{}`, "missing field: email"},
		{"invalid json", `{"email":`, "invalid json"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := env.start(t, tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d, body=%s", rr.Code, rr.Body.String())
			}
			var resp struct {
				Error string `json:"error"`
			}
			_ = json.Unmarshal(rr.Body.Bytes(), &resp)
			if resp.Error != tc.want {
				t.Fatalf("expected error %q, got %q", tc.want, resp.Error)
			}
		})
	}
	if env.registry.Len() != 0 {
		t.Fatalf("rejected submissions must not be registered")
	}
}

func TestHTTP_GetResult_404_Unknown(t *testing.T) {
	env := newTestEnv(t, envOpts{noRun: true})

	code, _ := env.result(t, uuid.NewString())
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestHTTP_UpstreamErrorStatusIsRelayedAsDone(t *testing.T) {
	env := newTestEnv(t, envOpts{
		upstream: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"reason":"bad"}`))
		}),
	})

	j := env.waitTerminal(t, env.startOK(t, "me@example.com", "https://example.com"))
	if j.Status != entity.StatusDone {
		t.Fatalf("expected done, got %s (error=%v)", j.Status, j.Error)
	}
	if j.Result.StatusCode != http.StatusInternalServerError || j.Result.Body != `{"reason":"bad"}` {
		t.Fatalf("unexpected result %+v", j.Result)
	}
	if j.Error != nil {
		t.Fatalf("done job must not carry an error")
	}
}

func TestHTTP_NonUTF8BodyIsBase64(t *testing.T) {
	raw := []byte{0xff, 0xfe, 'o', 'k'}
	env := newTestEnv(t, envOpts{
		upstream: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write(raw)
		}),
	})

	j := env.waitTerminal(t, env.startOK(t, "me@example.com", "https://example.com"))
	if j.Status != entity.StatusDone {
		t.Fatalf("expected done, got %s (error=%v)", j.Status, j.Error)
	}
	if j.Result.BodyEncoding != "base64" {
		t.Fatalf("expected bodyEncoding base64, got %q", j.Result.BodyEncoding)
	}
	got, err := base64.StdEncoding.DecodeString(j.Result.Body)
	if err != nil {
		t.Fatalf("body is not base64: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatalf("decoded body %x, want %x", got, raw)
	}
}

func TestHTTP_OversizedUpstreamBodyBecomesError(t *testing.T) {
	env := newTestEnv(t, envOpts{
		maxBody: 8,
		upstream: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"valid":true,"padding":"xxxx"}`))
		}),
	})

	j := env.waitTerminal(t, env.startOK(t, "me@example.com", "https://example.com"))
	if j.Status != entity.StatusError {
		t.Fatalf("expected error, got %s", j.Status)
	}
	if j.Error == nil || *j.Error != "validator request failed: response body exceeds 8 bytes" {
		t.Fatalf("unexpected error %v", j.Error)
	}
	if j.Result != nil {
		t.Fatalf("error job must not carry a result")
	}
}

func TestHTTP_UpstreamTimeoutBecomesError(t *testing.T) {
	release := make(chan struct{})
	env := newTestEnv(t, envOpts{
		timeout: 50 * time.Millisecond,
		upstream: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}),
	})
	defer close(release)

	j := env.waitTerminal(t, env.startOK(t, "me@example.com", "http://example.com"))
	if j.Status != entity.StatusError {
		t.Fatalf("expected error, got %s", j.Status)
	}
	if j.Error == nil || *j.Error != "validator request timed out after 50ms" {
		t.Fatalf("unexpected error message %v", j.Error)
	}
	if j.Result != nil {
		t.Fatalf("error job must not carry a result")
	}
}

func TestHTTP_ConcurrentJobsCorrelate(t *testing.T) {
	env := newTestEnv(t, envOpts{
		upstream: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte(r.URL.Query().Get("email") + " " + r.URL.Query().Get("url")))
		}),
	})

	const n = 40
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rr := env.start(t, fmt.Sprintf(`{"email":"u%d@example.com","url":"http://example.com/%d"}`, i, i))
			var resp struct {
				JobID string `json:"jobId"`
			}
			_ = json.Unmarshal(rr.Body.Bytes(), &resp)
			ids[i] = resp.JobID
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i, id := range ids {
		if id == "" || seen[id] {
			t.Fatalf("submission %d: missing or duplicate id %q", i, id)
		}
		seen[id] = true

		j := env.waitTerminal(t, id)
		want := fmt.Sprintf("u%d@example.com http://example.com/%d", i, i)
		if j.Status != entity.StatusDone || j.Result.Body != want {
			t.Fatalf("job %d: expected done %q, got %s %+v", i, want, j.Status, j.Result)
		}
		if j.Email != fmt.Sprintf("u%d@example.com", i) {
			t.Fatalf("job %d: email not correlated: %s", i, j.Email)
		}
	}
}

func TestHTTP_StartValidation_503_WhenQueueFull(t *testing.T) {
	env := newTestEnv(t, envOpts{noRun: true, queueSize: 1})

	env.startOK(t, "me@example.com", "http://example.com")

	rr := env.start(t, `{"email":"me@example.com","url":"http://example.com"}`)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d, body=%s", rr.Code, rr.Body.String())
	}
	if env.registry.Len() != 1 {
		t.Fatalf("expected only the accepted job registered, got %d", env.registry.Len())
	}
}

func TestHTTP_StartValidation_429_WhenRateLimited(t *testing.T) {
	env := newTestEnv(t, envOpts{noRun: true, limiter: ratelimit.NewLocal(1, 0)})

	env.startOK(t, "me@example.com", "http://example.com")

	rr := env.start(t, `{"email":"me@example.com","url":"http://example.com"}`)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d, body=%s", rr.Code, rr.Body.String())
	}
}

func TestHTTP_Sort(t *testing.T) {
	env := newTestEnv(t, envOpts{noRun: true})

	req := httptest.NewRequest(http.MethodPost, "/sort", bytes.NewBufferString(`{"data":"hello"}`))
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	got := strings.TrimSpace(rr.Body.String())
	if got != `{"word":["e","h","l","l","o"]}` {
		t.Fatalf("unexpected body %s", got)
	}

	for _, body := range []string{`{"data":5}`, `{"data":null}`, `{}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/sort", bytes.NewBufferString(body))
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), `\"data\" must be a string`) {
			t.Fatalf("body %s: unexpected error %s", body, rr.Body.String())
		}
	}
}

func TestHTTP_HealthAndHome(t *testing.T) {
	env := newTestEnv(t, envOpts{noRun: true})

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("unexpected health response %d %q", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK || !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("unexpected home response %d %s", rr.Code, rr.Header().Get("Content-Type"))
	}
}
