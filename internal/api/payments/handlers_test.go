package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/codr1/golfleague/internal/api/authz"
	"github.com/codr1/golfleague/internal/db"
	"github.com/codr1/golfleague/internal/identity"
	"github.com/codr1/golfleague/internal/models"
	"github.com/codr1/golfleague/internal/payments"
	"github.com/codr1/golfleague/internal/testutil"
)

const testWebhookSecret = "whsec_handler_secret"

type stubGateway struct {
	url string
}

func (g *stubGateway) GetPrice(ctx context.Context, priceID string) (payments.Price, error) {
	return payments.Price{AmountCents: 3000, Currency: "eur", Source: payments.PriceSourceProvider}, nil
}

func (g *stubGateway) CreateCheckoutSession(ctx context.Context, req payments.CheckoutRequest) (string, error) {
	return g.url, nil
}

func setupPaymentsTest(t *testing.T) *db.DB {
	t.Helper()

	database := testutil.NewTestDB(t)

	prevPayments := paymentsSvc
	prevIdentity := identitySvc
	t.Cleanup(func() {
		paymentsSvc = prevPayments
		identitySvc = prevIdentity
	})

	svc := payments.NewService(database, &stubGateway{url: "https://checkout.example/cs_test"}, nil, payments.Config{
		WebhookSecret: testWebhookSecret,
		PriceID:       "price_test",
		FallbackCents: 2500,
		SuccessURL:    "http://localhost/dashboard?payment=success",
		CancelURL:     "http://localhost/dashboard?payment=cancelled",
	})
	InitHandlers(svc, identity.NewService(database, nil, identity.Options{}))

	return database
}

func completedEvent(t *testing.T, eventID string, userID int64) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":          eventID,
		"object":      "event",
		"api_version": "2023-10-16",
		"type":        "checkout.session.completed",
		"data": map[string]any{"object": map[string]any{
			"object":   "checkout.session",
			"metadata": map[string]string{"userId": fmt.Sprint(userID)},
		}},
	})
	require.NoError(t, err)
	return payload
}

func webhookRequest(payload []byte, secret string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", strings.NewReader(string(payload)))
	if secret != "" {
		signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
			Payload:   payload,
			Secret:    secret,
			Timestamp: time.Now(),
		})
		req.Header.Set(signatureHeader, signed.Header)
	}
	return req
}

func TestHandleWebhookActivatesUserOnce(t *testing.T) {
	database := setupPaymentsTest(t)
	userID := testutil.InsertUser(t, database, testutil.UserFixture{Email: "paid@example.com", Status: "PENDING_PAYMENT"})
	payload := completedEvent(t, "evt_handler_1", userID)

	rec := httptest.NewRecorder()
	HandleWebhook(rec, webhookRequest(payload, testWebhookSecret))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())

	user, err := database.Queries.GetUserByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", user.Status)

	rec = httptest.NewRecorder()
	HandleWebhook(rec, webhookRequest(payload, testWebhookSecret))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true,"duplicate":true}`, rec.Body.String())
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	database := setupPaymentsTest(t)
	userID := testutil.InsertUser(t, database, testutil.UserFixture{Email: "forged@example.com", Status: "PENDING_PAYMENT"})
	payload := completedEvent(t, "evt_forged", userID)

	for name, secret := range map[string]string{"wrong secret": "whsec_other", "missing header": ""} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleWebhook(rec, webhookRequest(payload, secret))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	user, err := database.Queries.GetUserByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "PENDING_PAYMENT", user.Status)
}

func TestHandleWebhookUnknownUserAnswers500(t *testing.T) {
	setupPaymentsTest(t)
	payload := completedEvent(t, "evt_ghost", 424242)

	rec := httptest.NewRecorder()
	HandleWebhook(rec, webhookRequest(payload, testWebhookSecret))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleCheckoutRequiresSession(t *testing.T) {
	setupPaymentsTest(t)

	rec := httptest.NewRecorder()
	HandleCheckout(rec, httptest.NewRequest(http.MethodPost, "/api/stripe/checkout", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleCheckoutReturnsURL(t *testing.T) {
	database := setupPaymentsTest(t)
	userID := testutil.InsertUser(t, database, testutil.UserFixture{Email: "new@example.com", Status: "PENDING_PAYMENT"})

	req := httptest.NewRequest(http.MethodPost, "/api/stripe/checkout", nil)
	req = req.WithContext(authz.ContextWithUser(req.Context(), &authz.AuthUser{ID: userID, Role: models.RoleUser}))
	rec := httptest.NewRecorder()
	HandleCheckout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"url":"https://checkout.example/cs_test"}`, rec.Body.String())
}

func TestHandleCheckoutFormRedirects(t *testing.T) {
	database := setupPaymentsTest(t)
	userID := testutil.InsertUser(t, database, testutil.UserFixture{Email: "form@example.com", Status: "PENDING_PAYMENT"})

	req := httptest.NewRequest(http.MethodPost, "/api/stripe/checkout", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = req.WithContext(authz.ContextWithUser(req.Context(), &authz.AuthUser{ID: userID, Role: models.RoleUser}))
	rec := httptest.NewRecorder()
	HandleCheckout(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "https://checkout.example/cs_test", rec.Header().Get("Location"))
}

func TestHandleCheckoutAlreadyActive(t *testing.T) {
	database := setupPaymentsTest(t)
	userID := testutil.InsertUser(t, database, testutil.UserFixture{Email: "done@example.com"})

	req := httptest.NewRequest(http.MethodPost, "/api/stripe/checkout", nil)
	req = req.WithContext(authz.ContextWithUser(req.Context(), &authz.AuthUser{ID: userID, Role: models.RoleUser}))
	rec := httptest.NewRecorder()
	HandleCheckout(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandlePrice(t *testing.T) {
	setupPaymentsTest(t)

	rec := httptest.NewRecorder()
	HandlePrice(rec, httptest.NewRequest(http.MethodGet, "/api/price", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body payments.Price
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(3000), body.AmountCents)
	assert.Equal(t, "30,00 €", body.Formatted)
}
