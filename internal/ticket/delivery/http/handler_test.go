package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"asana-ticket-numbering/internal/model"
	"asana-ticket-numbering/internal/ticket"
	ticketHTTP "asana-ticket-numbering/internal/ticket/delivery/http"
	"asana-ticket-numbering/internal/ticket/repository"
	"asana-ticket-numbering/internal/ticket/usecase"
	"asana-ticket-numbering/internal/webhook"
	"asana-ticket-numbering/pkg/log"
)

// ── Mocks ──────────────────────────────────────────────────────────────────

type mockSubRepo struct {
	mu       sync.Mutex
	secrets  map[string]string
	counters map[string]int64
	getCalls int
	getErr   error
	saveErr  error
}

func newMockSubRepo() *mockSubRepo {
	return &mockSubRepo{secrets: map[string]string{}, counters: map[string]int64{}}
}

func (m *mockSubRepo) GetSecret(ctx context.Context, sub model.Subscription) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getErr != nil {
		return "", m.getErr
	}
	s, ok := m.secrets[repository.SecretKey(sub)]
	if !ok {
		return "", repository.ErrSecretNotFound
	}
	return s, nil
}

func (m *mockSubRepo) SaveSecret(ctx context.Context, sub model.Subscription, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.secrets[repository.SecretKey(sub)] = secret
	return nil
}

func (m *mockSubRepo) NextSequence(ctx context.Context, sub model.Subscription) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[sub.CounterKey]++
	return m.counters[sub.CounterKey], nil
}

type mockTaskRepo struct {
	mu      sync.Mutex
	tasks   map[string]string
	renames int
}

func (m *mockTaskRepo) GetTask(ctx context.Context, id string) (model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name, ok := m.tasks[id]
	if !ok {
		return model.Task{}, repository.ErrTaskNotFound
	}
	return model.Task{ID: id, Name: name}, nil
}

func (m *mockTaskRepo) RenameTask(ctx context.Context, id, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renames++
	m.tasks[id] = name
	return nil
}

// countingUseCase wraps a UseCase to observe whether processing ran.
type countingUseCase struct {
	ticket.UseCase
	processed int
}

func (u *countingUseCase) ProcessEvents(ctx context.Context, input ticket.ProcessEventsInput) ticket.ProcessEventsOutput {
	u.processed++
	return u.UseCase.ProcessEvents(ctx, input)
}

// ── Helpers ────────────────────────────────────────────────────────────────

const renameBody = `{"events":[{"resource":{"resource_type":"task","gid":"42"},"change":{"field":"name"}}]}`

type fixture struct {
	router   *gin.Engine
	subRepo  *mockSubRepo
	taskRepo *mockTaskRepo
	uc       *countingUseCase
}

func newFixture(t *testing.T, security webhook.SecurityConfig, cfg ticketHTTP.Config) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		subRepo:  newMockSubRepo(),
		taskRepo: &mockTaskRepo{tasks: map[string]string{}},
	}
	f.uc = &countingUseCase{UseCase: usecase.New(log.NewNop(), f.subRepo, f.taskRepo, usecase.Config{})}

	h := ticketHTTP.New(log.NewNop(), f.uc, webhook.NewSecurityValidator(security), cfg)
	f.router = gin.New()
	ticketHTTP.RegisterRoutes(f.router, h)
	return f
}

func (f *fixture) do(target string, headers map[string]string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
	return resp.Message
}

// ── Tests ──────────────────────────────────────────────────────────────────

func TestHandleWebhook_MissingParams(t *testing.T) {
	for _, target := range []string{"/webhook", "/webhook?prefix=ABC", "/webhook?counter_key=ABC", "/webhook?counter_key=%20&prefix=ABC"} {
		t.Run(target, func(t *testing.T) {
			f := newFixture(t, webhook.SecurityConfig{}, ticketHTTP.Config{})
			w := f.do(target, map[string]string{"X-Hook-Secret": "s3cr3t"}, "")

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
			if got := message(t, w); got != "Missing counter_key or prefix" {
				t.Errorf("unexpected message: %q", got)
			}
			if len(f.subRepo.secrets) != 0 {
				t.Error("no secret should be stored")
			}
		})
	}
}

func TestHandleWebhook_Handshake(t *testing.T) {
	f := newFixture(t, webhook.SecurityConfig{}, ticketHTTP.Config{})

	w := f.do("/webhook?counter_key=ABC&prefix=ABC", map[string]string{"x-hook-secret": "s3cr3t"}, "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("X-Hook-Secret"); got != "s3cr3t" {
		t.Errorf("expected echoed secret, got %q", got)
	}
	if got := message(t, w); got != "Webhook handshake successful" {
		t.Errorf("unexpected message: %q", got)
	}
	if got := f.subRepo.secrets["ABC_hook_secret"]; got != "s3cr3t" {
		t.Errorf("expected ABC_hook_secret -> s3cr3t, got %q", got)
	}
}

func TestHandleWebhook_HandshakeTakesPrecedence(t *testing.T) {
	f := newFixture(t, webhook.SecurityConfig{}, ticketHTTP.Config{})

	w := f.do("/?counter_key=ABC&prefix=ABC", map[string]string{
		"X-Hook-Secret":             "new",
		"X-Asana-Request-Signature": "deadbeef",
	}, "")

	if w.Code != http.StatusOK || f.subRepo.secrets["ABC_hook_secret"] != "new" {
		t.Errorf("handshake should win over signature: %d %q", w.Code, f.subRepo.secrets["ABC_hook_secret"])
	}
	if f.subRepo.getCalls != 0 {
		t.Error("signature path must not run during a handshake")
	}
}

func TestHandleWebhook_HandshakeStoreFailure(t *testing.T) {
	f := newFixture(t, webhook.SecurityConfig{}, ticketHTTP.Config{})
	f.subRepo.saveErr = errors.New("store down")

	w := f.do("/webhook?counter_key=ABC&prefix=ABC", map[string]string{"X-Hook-Secret": "s3cr3t"}, "")

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if w.Header().Get("X-Hook-Secret") != "" {
		t.Error("secret must not be echoed when it was not stored")
	}
}

func TestHandleWebhook_SignedDelivery(t *testing.T) {
	f := newFixture(t, webhook.SecurityConfig{}, ticketHTTP.Config{})
	f.subRepo.secrets["ABC_hook_secret"] = "s3cr3t"
	f.subRepo.counters["ABC"] = 4
	f.taskRepo.tasks["42"] = "Fix bug"

	w := f.do("/webhook?counter_key=ABC&prefix=ABC", map[string]string{
		"x-asana-request-signature": webhook.SignHex("s3cr3t", []byte(renameBody)),
	}, renameBody)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := message(t, w); got != "Webhook event processed" {
		t.Errorf("unexpected message: %q", got)
	}
	if got := f.taskRepo.tasks["42"]; got != "ABC-5: Fix bug" {
		t.Errorf("expected task renamed to %q, got %q", "ABC-5: Fix bug", got)
	}
	if f.subRepo.counters["ABC"] != 5 {
		t.Errorf("expected counter 5, got %d", f.subRepo.counters["ABC"])
	}
}

func TestHandleWebhook_AlreadyNumbered(t *testing.T) {
	f := newFixture(t, webhook.SecurityConfig{}, ticketHTTP.Config{})
	f.subRepo.secrets["ABC_hook_secret"] = "s3cr3t"
	f.subRepo.counters["ABC"] = 5
	f.taskRepo.tasks["42"] = "ABC-5: Fix bug"

	w := f.do("/webhook?counter_key=ABC&prefix=ABC", map[string]string{
		"X-Asana-Request-Signature": webhook.SignHex("s3cr3t", []byte(renameBody)),
	}, renameBody)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if f.taskRepo.renames != 0 || f.subRepo.counters["ABC"] != 5 {
		t.Errorf("expected no rename and counter 5, got %d renames, counter %d", f.taskRepo.renames, f.subRepo.counters["ABC"])
	}
}

func TestHandleWebhook_InvalidSignature(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		getErr  error
		sign    string
		body    string
	}{
		{name: "no secret stored", sign: "s3cr3t", body: "not json"},
		{name: "wrong key", secret: "s3cr3t", sign: "other", body: "not json"},
		{name: "store unavailable", secret: "s3cr3t", getErr: errors.New("store down"), sign: "s3cr3t", body: "not json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, webhook.SecurityConfig{}, ticketHTTP.Config{})
			if tt.secret != "" {
				f.subRepo.secrets["ABC_hook_secret"] = tt.secret
			}
			f.subRepo.getErr = tt.getErr

			w := f.do("/webhook?counter_key=ABC&prefix=ABC", map[string]string{
				"X-Asana-Request-Signature": webhook.SignHex(tt.sign, []byte(tt.body)),
			}, tt.body)

			// The body is not JSON: a 400 would mean it was parsed.
			if w.Code != http.StatusForbidden {
				t.Errorf("expected 403, got %d", w.Code)
			}
			if got := message(t, w); got != "Invalid signature" {
				t.Errorf("unexpected message: %q", got)
			}
			if f.uc.processed != 0 {
				t.Error("events must not be processed")
			}
		})
	}
}

func TestHandleWebhook_InvalidJSON(t *testing.T) {
	f := newFixture(t, webhook.SecurityConfig{}, ticketHTTP.Config{})
	f.subRepo.secrets["ABC_hook_secret"] = "s3cr3t"
	body := `{"events": [`

	w := f.do("/webhook?counter_key=ABC&prefix=ABC", map[string]string{
		"X-Asana-Request-Signature": webhook.SignHex("s3cr3t", []byte(body)),
	}, body)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if got := message(t, w); got != "Invalid JSON payload" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestHandleWebhook_EmptySignedBody(t *testing.T) {
	f := newFixture(t, webhook.SecurityConfig{}, ticketHTTP.Config{})
	f.subRepo.secrets["ABC_hook_secret"] = "s3cr3t"

	w := f.do("/webhook?counter_key=ABC&prefix=ABC", map[string]string{
		"X-Asana-Request-Signature": webhook.SignHex("s3cr3t", nil),
	}, "")

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if f.uc.processed != 0 {
		t.Error("empty body must not be processed")
	}
}

func TestHandleWebhook_NoHeaders(t *testing.T) {
	f := newFixture(t, webhook.SecurityConfig{}, ticketHTTP.Config{})

	w := f.do("/webhook?counter_key=ABC&prefix=ABC", nil, renameBody)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if got := message(t, w); got != "Invalid request" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestHandleWebhook_BodyTooLarge(t *testing.T) {
	f := newFixture(t, webhook.SecurityConfig{}, ticketHTTP.Config{MaxBodySize: 16})
	f.subRepo.secrets["ABC_hook_secret"] = "s3cr3t"
	body := string(bytes.Repeat([]byte("a"), 64))

	w := f.do("/webhook?counter_key=ABC&prefix=ABC", map[string]string{
		"X-Asana-Request-Signature": webhook.SignHex("s3cr3t", []byte(body)),
	}, body)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
}

func TestHandleWebhook_RateLimit(t *testing.T) {
	f := newFixture(t, webhook.SecurityConfig{RateLimitPerMin: 1}, ticketHTTP.Config{})
	headers := map[string]string{"X-Hook-Secret": "s3cr3t"}

	if w := f.do("/webhook?counter_key=ABC&prefix=ABC", headers, ""); w.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", w.Code)
	}
	if w := f.do("/webhook?counter_key=ABC&prefix=ABC", headers, ""); w.Code != http.StatusTooManyRequests {
		t.Errorf("second request: expected 429, got %d", w.Code)
	}
	// Limits are per prefix.
	if w := f.do("/webhook?counter_key=XYZ&prefix=XYZ", headers, ""); w.Code != http.StatusOK {
		t.Errorf("other prefix: expected 200, got %d", w.Code)
	}
}

func TestHandleWebhook_IPAllowList(t *testing.T) {
	f := newFixture(t, webhook.SecurityConfig{AllowedIPs: []string{"10.0.0.0/8"}}, ticketHTTP.Config{})

	// httptest requests come from 192.0.2.1.
	w := f.do("/webhook?counter_key=ABC&prefix=ABC", map[string]string{"X-Hook-Secret": "s3cr3t"}, "")

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	if len(f.subRepo.secrets) != 0 {
		t.Error("no secret should be stored")
	}
}

func TestHandleWebhook_ForgedTrafficDoesNotStarveSignedDelivery(t *testing.T) {
	f := newFixture(t, webhook.SecurityConfig{RateLimitPerMin: 600}, ticketHTTP.Config{})
	f.subRepo.secrets["ABC_hook_secret"] = "s3cr3t"
	f.taskRepo.tasks["42"] = "Fix bug"

	for i := 0; i < 100; i++ {
		w := f.do("/webhook?counter_key=ABC&prefix=ABC", map[string]string{
			"X-Asana-Request-Signature": "deadbeef",
		}, renameBody)
		if w.Code != http.StatusForbidden {
			t.Fatalf("forged request %d: expected 403, got %d", i, w.Code)
		}
	}

	w := f.do("/webhook?counter_key=ABC&prefix=ABC", map[string]string{
		"X-Asana-Request-Signature": webhook.SignHex("s3cr3t", []byte(renameBody)),
	}, renameBody)

	if w.Code != http.StatusOK {
		t.Fatalf("signed delivery: expected 200, got %d", w.Code)
	}
	if f.taskRepo.tasks["42"] != "ABC-1: Fix bug" {
		t.Errorf("expected task renamed, got %q", f.taskRepo.tasks["42"])
	}
}

func TestHandleWebhook_SignedDeliveryRateLimit(t *testing.T) {
	f := newFixture(t, webhook.SecurityConfig{RateLimitPerMin: 1}, ticketHTTP.Config{})
	f.subRepo.secrets["ABC_hook_secret"] = "s3cr3t"
	headers := map[string]string{"X-Asana-Request-Signature": webhook.SignHex("s3cr3t", []byte(renameBody))}

	if w := f.do("/webhook?counter_key=ABC&prefix=ABC", headers, renameBody); w.Code != http.StatusOK {
		t.Fatalf("first delivery: expected 200, got %d", w.Code)
	}
	if w := f.do("/webhook?counter_key=ABC&prefix=ABC", headers, renameBody); w.Code != http.StatusTooManyRequests {
		t.Errorf("second delivery: expected 429, got %d", w.Code)
	}
	if f.uc.processed != 1 {
		t.Errorf("expected 1 processed batch, got %d", f.uc.processed)
	}
}

// An empty X-Hook-Secret is treated as if the header were absent.
func TestHandleWebhook_EmptyHookSecret(t *testing.T) {
	t.Run("without signature", func(t *testing.T) {
		f := newFixture(t, webhook.SecurityConfig{}, ticketHTTP.Config{})

		w := f.do("/webhook?counter_key=ABC&prefix=ABC", map[string]string{"X-Hook-Secret": ""}, "")

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
		if got := message(t, w); got != "Invalid request" {
			t.Errorf("unexpected message: %q", got)
		}
		if len(f.subRepo.secrets) != 0 {
			t.Error("no secret should be stored")
		}
	})

	t.Run("with signature", func(t *testing.T) {
		f := newFixture(t, webhook.SecurityConfig{}, ticketHTTP.Config{})
		f.subRepo.secrets["ABC_hook_secret"] = "s3cr3t"
		f.taskRepo.tasks["42"] = "Fix bug"

		w := f.do("/webhook?counter_key=ABC&prefix=ABC", map[string]string{
			"X-Hook-Secret":             "",
			"X-Asana-Request-Signature": webhook.SignHex("s3cr3t", []byte(renameBody)),
		}, renameBody)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if f.subRepo.secrets["ABC_hook_secret"] != "s3cr3t" {
			t.Error("stored secret must not change")
		}
		if f.taskRepo.tasks["42"] != "ABC-1: Fix bug" {
			t.Errorf("expected delivery processed, got %q", f.taskRepo.tasks["42"])
		}
	})
}

func TestHandleWebhook_HandshakeRawLowercaseHeader(t *testing.T) {
	f := newFixture(t, webhook.SecurityConfig{}, ticketHTTP.Config{})

	req := httptest.NewRequest(http.MethodPost, "/webhook?counter_key=ABC&prefix=ABC", nil)
	req.Header["x-hook-secret"] = []string{"s3cr3t"}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := f.subRepo.secrets["ABC_hook_secret"]; got != "s3cr3t" {
		t.Errorf("expected secret stored, got %q", got)
	}
}
