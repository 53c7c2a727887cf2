package services_test

import (
	"context"
	"errors"
	"testing"

	"coursemaster/apperr"
	"coursemaster/logger"
	"coursemaster/services"
	"coursemaster/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCheckout(t *testing.T) {
	st := testutils.SetupTestStore(t)
	ctx := context.Background()
	user := testutils.CreateTestUser(t, st)
	course := testutils.CreateTestCourse(t, st, testutils.WithPrice(19.99))
	provider := &fakeProvider{}
	svc := services.NewCheckoutService(st, provider, "http://localhost:5173/", "usd", logger.Nop())

	result, err := svc.CreateCheckout(ctx, course.ID, user.Email)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", result.SessionID)
	assert.NotEmpty(t, result.URL)

	require.Len(t, provider.requests, 1)
	req := provider.requests[0]
	assert.Equal(t, int64(1999), req.Amount)
	assert.Equal(t, "usd", req.Currency)
	assert.Equal(t, course.Title, req.Title)
	assert.Equal(t, user.Email, req.CustomerEmail)
	assert.Equal(t, "http://localhost:5173/payment-success?session_id={CHECKOUT_SESSION_ID}&courseId="+course.ID, req.SuccessURL)
	assert.Equal(t, "http://localhost:5173/course/"+course.ID, req.CancelURL)

	intent, err := st.FindCheckoutIntent(ctx, result.SessionID)
	require.NoError(t, err)
	assert.True(t, intent.Matches(course.ID, user.Email))
	assert.Equal(t, int64(1999), intent.Amount)

	// creating a session never enrolls
	got, err := st.FindUserByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Empty(t, got.PurchasedCourses)
}

func TestCreateCheckoutFreeCourse(t *testing.T) {
	st := testutils.SetupTestStore(t)
	user := testutils.CreateTestUser(t, st)
	course := testutils.CreateTestCourse(t, st, testutils.WithPrice(0))
	provider := &fakeProvider{}
	svc := services.NewCheckoutService(st, provider, "http://localhost:5173", "usd", logger.Nop())

	_, err := svc.CreateCheckout(context.Background(), course.ID, user.Email)
	require.NoError(t, err)
	require.Len(t, provider.requests, 1)
	assert.Equal(t, int64(0), provider.requests[0].Amount)
}

func TestCreateCheckoutErrors(t *testing.T) {
	st := testutils.SetupTestStore(t)
	user := testutils.CreateTestUser(t, st)
	course := testutils.CreateTestCourse(t, st)

	tests := []struct {
		name     string
		courseID string
		provider *fakeProvider
		wantKind apperr.Kind
		wantCall bool
	}{
		{name: "missing course id", courseID: "", provider: &fakeProvider{}, wantKind: apperr.KindInvalidInput},
		{name: "malformed course id", courseID: "abc", provider: &fakeProvider{}, wantKind: apperr.KindInvalidInput},
		{name: "unknown course", courseID: "6b0e4a3c-2f55-4a6c-9c1e-000000000000", provider: &fakeProvider{}, wantKind: apperr.KindNotFound},
		{name: "provider failure", courseID: course.ID, provider: &fakeProvider{err: errors.New("boom")}, wantKind: apperr.KindUpstreamFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := services.NewCheckoutService(st, tt.provider, "http://localhost:5173", "usd", logger.Nop())
			_, err := svc.CreateCheckout(context.Background(), tt.courseID, user.Email)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			assert.Empty(t, tt.provider.requests)
		})
	}
}

func TestRetrieveSession(t *testing.T) {
	st := testutils.SetupTestStore(t)
	svc := services.NewCheckoutService(st, &fakeProvider{}, "http://localhost:5173", "usd", logger.Nop())

	session, err := svc.RetrieveSession(context.Background(), "cs_test_9")
	require.NoError(t, err)
	assert.Equal(t, "cs_test_9", session.ID)

	_, err = svc.RetrieveSession(context.Background(), " ")
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	failing := services.NewCheckoutService(st, &fakeProvider{err: errors.New("down")}, "", "", logger.Nop())
	_, err = failing.RetrieveSession(context.Background(), "cs_test_9")
	assert.Equal(t, apperr.KindUpstreamFailure, apperr.KindOf(err))
}
