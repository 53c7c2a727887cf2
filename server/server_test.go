package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"coursemaster/config"
	"coursemaster/logger"
	"coursemaster/middleware"
	"coursemaster/models"
	"coursemaster/payment"
	"coursemaster/server"
	"coursemaster/services"
	"coursemaster/store"
	"coursemaster/testutils"
	"coursemaster/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
)

const (
	jwtSecret     = "test-jwt-secret"
	webhookSecret = "whsec_test_secret"
)

// checkoutProvider mints fake sessions and verifies webhooks with the real
// Stripe signature check.
type checkoutProvider struct {
	*payment.Stripe

	mu       sync.Mutex
	requests []payment.CheckoutRequest
}

func (p *checkoutProvider) CreateCheckoutSession(_ context.Context, req payment.CheckoutRequest) (*payment.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	id := fmt.Sprintf("cs_test_%d", len(p.requests))
	return &payment.Session{ID: id, URL: "https://checkout.stripe.test/" + id}, nil
}

func (p *checkoutProvider) RetrieveSession(_ context.Context, id string) (*payment.Session, error) {
	return &payment.Session{ID: id, Status: "complete", PaymentStatus: "paid"}, nil
}

type testApp struct {
	app      *fiber.App
	store    store.Store
	provider *checkoutProvider
}

// brokenEnrollmentStore fails every enrollment write.
type brokenEnrollmentStore struct {
	store.Store
}

func (brokenEnrollmentStore) AddPurchasedCourse(context.Context, string, string) (models.EnrollOutcome, error) {
	return "", errors.New("connection reset")
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	return setupAppWithStore(t, testutils.SetupTestStore(t))
}

func setupAppWithStore(t *testing.T, st store.Store) *testApp {
	t.Helper()

	cfg := &config.Config{
		JWTKey:           jwtSecret,
		SaltRound:        4,
		ClientURL:        "http://localhost:5173",
		CheckoutCurrency: "usd",
	}
	log := logger.Nop()
	provider := &checkoutProvider{Stripe: payment.NewStripe("sk_test_unused", webhookSecret)}
	svc := services.New(cfg, st, provider, utils.NopMailer{}, log)

	app := server.New(server.Options{
		Config:   cfg,
		Store:    st,
		Provider: provider,
		Services: svc,
		Log:      log,
	})
	return &testApp{app: app, store: st, provider: provider}
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (a *testApp) do(t *testing.T, method, path string, body interface{}, token string) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = json.Unmarshal(raw, &env)
	return resp, env
}

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := middleware.GenerateJWT(jwtSecret, user.Email, user.Role)
	require.NoError(t, err)
	return token
}

func (a *testApp) postWebhook(t *testing.T, payload []byte, signature string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func eventPayload(t *testing.T, eventType, sessionID, courseID, email string) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"id":     "evt_" + sessionID,
		"object": "event",
		"type":   eventType,
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":       sessionID,
				"object":   "checkout.session",
				"metadata": map[string]string{"courseId": courseID, "userEmail": email},
			},
		},
	})
	require.NoError(t, err)
	return payload
}

func sign(payload []byte, secret string) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	}).Header
}

func enrollments(t *testing.T, st store.Store, email string) []models.PurchasedCourse {
	t.Helper()
	user, err := st.FindUserByEmail(context.Background(), email)
	require.NoError(t, err)
	return user.PurchasedCourses
}

func TestRootIsAlive(t *testing.T) {
	a := setupApp(t)

	resp, err := a.app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Server is Running...", string(body))
}

func TestRegisterLoginMe(t *testing.T) {
	a := setupApp(t)

	resp, env := a.do(t, http.MethodPost, "/api/register", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "secret1",
	}, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Contains(t, string(env.Data), "userId")
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderSetCookie))

	resp, _ = a.do(t, http.MethodPost, "/api/register", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "secret1",
	}, "")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, _ = a.do(t, http.MethodPost, "/api/login", map[string]string{
		"email": "ada@example.com", "password": "wrong-password",
	}, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = a.do(t, http.MethodPost, "/api/login", map[string]string{
		"email": "nobody@example.com", "password": "secret1",
	}, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, env = a.do(t, http.MethodPost, "/api/login", map[string]string{
		"email": "ada@example.com", "password": "secret1",
	}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var login struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.Equal(t, "ada@example.com", login.User.Email)
	assert.Equal(t, models.RoleUser, login.User.Role)
	assert.NotContains(t, string(env.Data), "password")

	resp, env = a.do(t, http.MethodGet, "/api/me", nil, login.Token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), "ada@example.com")
}

func TestRegisterValidation(t *testing.T) {
	a := setupApp(t)

	resp, env := a.do(t, http.MethodPost, "/api/register", map[string]string{
		"name": "Ada", "email": "not-an-email", "password": "123",
	}, "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(env.Data), "email")
	assert.Contains(t, string(env.Data), "password")
}

func TestRegisterIgnoresRequestedRole(t *testing.T) {
	a := setupApp(t)

	resp, _ := a.do(t, http.MethodPost, "/api/register", map[string]string{
		"name": "Mallory", "email": "mallory@example.com", "password": "secret1", "roles": "admin",
	}, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	user, err := a.store.FindUserByEmail(context.Background(), "mallory@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
}

func TestCheckoutSession(t *testing.T) {
	a := setupApp(t)
	user := testutils.CreateTestUser(t, a.store)
	course := testutils.CreateTestCourse(t, a.store, testutils.WithPrice(19.99))
	token := tokenFor(t, user)

	tests := []struct {
		name       string
		body       map[string]string
		token      string
		wantStatus int
	}{
		{name: "no credential", body: map[string]string{"courseId": course.ID}, wantStatus: fiber.StatusUnauthorized},
		{name: "missing course id", body: map[string]string{}, token: token, wantStatus: fiber.StatusBadRequest},
		{name: "malformed course id", body: map[string]string{"courseId": "not-an-id"}, token: token, wantStatus: fiber.StatusBadRequest},
		{name: "unknown course", body: map[string]string{"courseId": "3f1c6a58-0d5e-4c3b-9d7e-2a1b3c4d5e6f"}, token: token, wantStatus: fiber.StatusNotFound},
		{name: "created", body: map[string]string{"courseId": course.ID}, token: token, wantStatus: fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := a.do(t, http.MethodPost, "/api/create-checkout-session", tt.body, tt.token)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}

	require.Len(t, a.provider.requests, 1)
	req := a.provider.requests[0]
	assert.Equal(t, int64(1999), req.Amount)
	assert.Equal(t, user.Email, req.CustomerEmail)

	// creating a session never enrolls
	assert.Empty(t, enrollments(t, a.store, user.Email))
}

func TestCheckoutUsesIdentityNotBody(t *testing.T) {
	a := setupApp(t)
	user := testutils.CreateTestUser(t, a.store)
	course := testutils.CreateTestCourse(t, a.store)

	resp, env := a.do(t, http.MethodPost, "/api/create-checkout-session", map[string]string{
		"courseId": course.ID, "email": "victim@example.com",
	}, tokenFor(t, user))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result services.CheckoutResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "cs_test_1", result.SessionID)
	assert.NotEmpty(t, result.URL)
	assert.Equal(t, user.Email, a.provider.requests[0].CustomerEmail)
}

func TestGetSession(t *testing.T) {
	a := setupApp(t)

	resp, env := a.do(t, http.MethodGet, "/api/session/cs_test_9", nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), "cs_test_9")
}

func TestWebhookEnrollsOnce(t *testing.T) {
	a := setupApp(t)
	user := testutils.CreateTestUser(t, a.store)
	course := testutils.CreateTestCourse(t, a.store)

	payload := eventPayload(t, payment.EventCheckoutSessionCompleted, "cs_test_1", course.ID, user.Email)

	for i := 0; i < 2; i++ {
		resp := a.postWebhook(t, payload, sign(payload, webhookSecret))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"received": true}`, string(body))
	}

	got := enrollments(t, a.store, user.Email)
	require.Len(t, got, 1)
	assert.Equal(t, course.ID, got[0].CourseID)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	a := setupApp(t)
	user := testutils.CreateTestUser(t, a.store)
	course := testutils.CreateTestCourse(t, a.store)
	payload := eventPayload(t, payment.EventCheckoutSessionCompleted, "cs_test_1", course.ID, user.Email)

	tests := []struct {
		name      string
		signature string
	}{
		{name: "missing header"},
		{name: "wrong secret", signature: sign(payload, "whsec_other")},
		{name: "garbage", signature: "t=1,v1=deadbeef"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := a.postWebhook(t, payload, tt.signature)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}

	assert.Empty(t, enrollments(t, a.store, user.Email))
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	a := setupApp(t)
	user := testutils.CreateTestUser(t, a.store)
	course := testutils.CreateTestCourse(t, a.store)

	payload := eventPayload(t, "payment_intent.succeeded", "cs_test_1", course.ID, user.Email)
	resp := a.postWebhook(t, payload, sign(payload, webhookSecret))

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, enrollments(t, a.store, user.Email))
}

func TestWebhookAcknowledgesUnknownUser(t *testing.T) {
	a := setupApp(t)
	course := testutils.CreateTestCourse(t, a.store)

	payload := eventPayload(t, payment.EventCheckoutSessionCompleted, "cs_test_1", course.ID, "ghost@example.com")
	resp := a.postWebhook(t, payload, sign(payload, webhookSecret))

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestWebhookStoreFailureAsksForRedelivery(t *testing.T) {
	st := testutils.SetupTestStore(t)
	user := testutils.CreateTestUser(t, st)
	course := testutils.CreateTestCourse(t, st)
	payload := eventPayload(t, payment.EventCheckoutSessionCompleted, "cs_test_1", course.ID, user.Email)

	broken := setupAppWithStore(t, brokenEnrollmentStore{Store: st})
	resp := broken.postWebhook(t, payload, sign(payload, webhookSecret))
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Empty(t, enrollments(t, st, user.Email))

	// the redelivery lands once the store is healthy again
	healthy := setupAppWithStore(t, st)
	resp = healthy.postWebhook(t, payload, sign(payload, webhookSecret))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, enrollments(t, st, user.Email), 1)
}

func TestCompleteModule(t *testing.T) {
	a := setupApp(t)
	ctx := context.Background()
	user := testutils.CreateTestUser(t, a.store)
	other := testutils.CreateTestUser(t, a.store)
	course := testutils.CreateTestCourse(t, a.store)
	_, err := a.store.AddPurchasedCourse(ctx, user.Email, course.ID)
	require.NoError(t, err)

	path := "/api/users/" + url.PathEscape(user.Email) + "/completeModule"
	body := map[string]interface{}{"courseId": course.ID, "moduleIndex": 2}

	resp, _ := a.do(t, http.MethodPatch, path, body, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = a.do(t, http.MethodPatch, path, body, "not-a-jwt")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = a.do(t, http.MethodPatch, path, body, tokenFor(t, other))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Empty(t, enrollments(t, a.store, user.Email)[0].CompletedModules)

	resp, _ = a.do(t, http.MethodPatch, path, map[string]interface{}{"courseId": course.ID}, tokenFor(t, user))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	for _, want := range []models.CompletionOutcome{models.CompletionApplied, models.CompletionNoopAlreadyComplete} {
		resp, env := a.do(t, http.MethodPatch, path, body, tokenFor(t, user))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Contains(t, string(env.Data), string(want))
	}
	assert.Equal(t, []int{2}, enrollments(t, a.store, user.Email)[0].CompletedModules)
}

func TestAssignmentMark(t *testing.T) {
	a := setupApp(t)
	user := testutils.CreateTestUser(t, a.store)
	other := testutils.CreateTestUser(t, a.store)
	course := testutils.CreateTestCourse(t, a.store)

	path := "/api/users/" + url.PathEscape(user.Email) + "/assignment-mark"
	body := map[string]interface{}{"courseId": course.ID, "milestoneIndex": 0, "moduleIndex": 1, "mark": 8.5}

	resp, _ := a.do(t, http.MethodPatch, path, body, tokenFor(t, other))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = a.do(t, http.MethodPatch, path, map[string]interface{}{"courseId": course.ID}, tokenFor(t, user))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = a.do(t, http.MethodPatch, path, body, tokenFor(t, user))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	got, err := a.store.FindUserByEmail(context.Background(), user.Email)
	require.NoError(t, err)
	mark, ok := got.AssignmentMarks.Get(course.ID, 0, 1)
	require.True(t, ok)
	assert.Equal(t, 8.5, mark)
}

func TestSaveMcq(t *testing.T) {
	a := setupApp(t)
	user := testutils.CreateTestUser(t, a.store)
	course := testutils.CreateTestCourse(t, a.store)
	token := tokenFor(t, user)

	resp, _ := a.do(t, http.MethodPost, "/api/save-mcq", map[string]interface{}{
		"courseId": course.ID, "moduleIndex": 0,
	}, token)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	ghost := &models.User{Email: "ghost@example.com", Role: models.RoleUser}
	resp, _ = a.do(t, http.MethodPost, "/api/save-mcq", map[string]interface{}{
		"courseId": course.ID, "moduleIndex": 0, "questionIndex": 0, "isCorrect": true,
	}, tokenFor(t, ghost))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	for _, correct := range []bool{false, true} {
		resp, _ = a.do(t, http.MethodPost, "/api/save-mcq", map[string]interface{}{
			"courseId": course.ID, "moduleIndex": 0, "questionIndex": 0, "isCorrect": correct,
		}, token)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	got, err := a.store.FindUserByEmail(context.Background(), user.Email)
	require.NoError(t, err)
	require.Len(t, got.McqResults, 1)
	assert.True(t, got.McqResults[0].IsCorrect)
}

func TestCourseCatalog(t *testing.T) {
	a := setupApp(t)
	user := testutils.CreateTestUser(t, a.store)
	token := tokenFor(t, user)

	resp, env := a.do(t, http.MethodPost, "/api/courses", map[string]interface{}{
		"title":      "Concurrency in Go",
		"instructor": "Rob",
		"price":      25,
		"category":   "programming",
		"tags":       []string{"go"},
		"milestones": testutils.TestMilestones(),
	}, token)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created struct {
		CourseID string `json:"courseId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	resp, _ = a.do(t, http.MethodPost, "/api/courses", map[string]interface{}{
		"title": "Bad tags", "price": 1, "tags": "go",
	}, token)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, env = a.do(t, http.MethodGet, "/api/courses?search=concurrency&tags=go,rust", nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list struct {
		Courses    []models.Course `json:"courses"`
		TotalPages int64           `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Courses, 1)
	assert.Equal(t, created.CourseID, list.Courses[0].ID)
	assert.Equal(t, int64(1), list.TotalPages)

	resp, _ = a.do(t, http.MethodGet, "/api/courses/"+created.CourseID, nil, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = a.do(t, http.MethodGet, "/api/courses/not-an-id", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = a.do(t, http.MethodGet, "/api/courses/3f1c6a58-0d5e-4c3b-9d7e-2a1b3c4d5e6f", nil, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAdminRoutes(t *testing.T) {
	a := setupApp(t)
	user := testutils.CreateTestUser(t, a.store)
	admin := testutils.CreateTestUser(t, a.store, testutils.WithRole(models.RoleAdmin))
	course := testutils.CreateTestCourse(t, a.store)
	_, err := a.store.AddPurchasedCourse(context.Background(), user.Email, course.ID)
	require.NoError(t, err)

	path := "/api/courses/" + course.ID + "/students"

	// a forged admin claim does not help a stored non-admin
	forged, err := middleware.GenerateJWT(jwtSecret, user.Email, models.RoleAdmin)
	require.NoError(t, err)
	resp, _ := a.do(t, http.MethodGet, path, nil, forged)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, env := a.do(t, http.MethodGet, path, nil, tokenFor(t, admin))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), user.Email)
	assert.NotContains(t, string(env.Data), "password")

	resp, env = a.do(t, http.MethodGet, "/users/admin/"+url.PathEscape(admin.Email), nil, tokenFor(t, admin))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"isAdmin": true}`, string(env.Data))
}

func TestAssignmentSubmissions(t *testing.T) {
	a := setupApp(t)
	student := testutils.CreateTestUser(t, a.store, testutils.WithName("Grace"))
	admin := testutils.CreateTestUser(t, a.store, testutils.WithRole(models.RoleAdmin))
	course := testutils.CreateTestCourse(t, a.store)
	token := tokenFor(t, student)

	resp, _ := a.do(t, http.MethodPost, "/api/assignments/submit", map[string]interface{}{
		"courseId": course.ID, "milestoneIndex": 0, "moduleIndex": 2, "submissionText": "  ",
	}, token)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, env := a.do(t, http.MethodPost, "/api/assignments/submit", map[string]interface{}{
		"courseId": course.ID, "milestoneIndex": 0, "moduleIndex": 2, "submissionText": "https://github.com/grace/solution",
	}, token)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Contains(t, string(env.Data), "submissionId")

	query := fmt.Sprintf("?courseId=%s&milestoneIndex=0&moduleIndex=2", course.ID)

	resp, env = a.do(t, http.MethodGet, "/api/assignments/submission"+query, nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), "grace/solution")

	resp, _ = a.do(t, http.MethodGet, "/api/assignments/submissions/admin"+query, nil, token)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, env = a.do(t, http.MethodGet, "/api/assignments/submissions/admin"+query, nil, tokenFor(t, admin))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), "Grace")

	resp, env = a.do(t, http.MethodGet, "/api/assignments/all-courses", nil, tokenFor(t, admin))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), course.Title)
}
