package contact

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/codr1/golfleague/internal/config"
	"github.com/codr1/golfleague/internal/ratelimit"
)

type fakeRelay struct {
	from    string
	subject string
	message string
	calls   int
	err     error
}

func (f *fakeRelay) RelayContact(ctx context.Context, from, subject, message string) error {
	f.calls++
	f.from = from
	f.subject = subject
	f.message = message
	return f.err
}

func setupContactTest(t *testing.T, maxPerHour int) *fakeRelay {
	t.Helper()

	prevConfig := appConfig
	prevRelay := relay
	prevLimiter := limiter
	t.Cleanup(func() {
		appConfig = prevConfig
		relay = prevRelay
		limiter = prevLimiter
	})

	l := ratelimit.New(&ratelimit.Config{ContactMaxIPPerHour: maxPerHour})
	t.Cleanup(l.Close)

	fake := &fakeRelay{}
	InitHandlers(&config.Config{}, fake, l)
	return fake
}

func contactRequestBody(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.7:4321"
	return req
}

func TestHandleContactRelaysMessage(t *testing.T) {
	fake := setupContactTest(t, 5)

	rec := httptest.NewRecorder()
	HandleContact(rec, contactRequestBody(`{"email":" Visitor@Example.com ","subject":"Inscripción","message":"¿Cuándo empieza la liga?"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if fake.calls != 1 {
		t.Fatalf("expected one relay call, got %d", fake.calls)
	}
	if fake.from != "visitor@example.com" {
		t.Fatalf("expected normalized sender, got %q", fake.from)
	}
	if fake.subject != "Inscripción" {
		t.Fatalf("unexpected subject %q", fake.subject)
	}
}

func TestHandleContactMissingFields(t *testing.T) {
	cases := map[string]string{
		"missing email":   `{"subject":"Hola","message":"Texto"}`,
		"invalid email":   `{"email":"nope","subject":"Hola","message":"Texto"}`,
		"missing subject": `{"email":"a@example.com","message":"Texto"}`,
		"missing message": `{"email":"a@example.com","subject":"Hola","message":"   "}`,
		"malformed json":  `{"email":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			fake := setupContactTest(t, 5)

			rec := httptest.NewRecorder()
			HandleContact(rec, contactRequestBody(body))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
			if fake.calls != 0 {
				t.Fatalf("expected no relay call, got %d", fake.calls)
			}
		})
	}
}

func TestHandleContactRateLimited(t *testing.T) {
	fake := setupContactTest(t, 2)
	body := `{"email":"a@example.com","subject":"Hola","message":"Texto"}`

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		HandleContact(rec, contactRequestBody(body))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected status %d, got %d", i, http.StatusOK, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	HandleContact(rec, contactRequestBody(body))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
	if fake.calls != 2 {
		t.Fatalf("expected two relay calls, got %d", fake.calls)
	}
}

func TestHandleContactRelayFailure(t *testing.T) {
	fake := setupContactTest(t, 5)
	fake.err = errors.New("ses unavailable")

	rec := httptest.NewRecorder()
	HandleContact(rec, contactRequestBody(`{"email":"a@example.com","subject":"Hola","message":"Texto"}`))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
	if strings.Contains(rec.Body.String(), "ses unavailable") {
		t.Fatalf("transport error leaked to client: %s", rec.Body.String())
	}
}
