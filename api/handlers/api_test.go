package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/pickup-notify-api/api"
	"github.com/linesmerrill/pickup-notify-api/api/handlers"
	"github.com/linesmerrill/pickup-notify-api/api/scheduler"
	"github.com/linesmerrill/pickup-notify-api/models"
	"github.com/linesmerrill/pickup-notify-api/notifications"
)

var testAuth = api.Auth{Secret: []byte("handler-secret")}

type fakeRegistrar struct {
	registered   []models.RegisterPushTokenRequest
	unregistered []string
	err          error
}

func (f *fakeRegistrar) Register(ctx context.Context, req models.RegisterPushTokenRequest) error {
	if f.err != nil {
		return f.err
	}
	f.registered = append(f.registered, req)
	return nil
}

func (f *fakeRegistrar) Unregister(ctx context.Context, userID string) error {
	if f.err != nil {
		return f.err
	}
	f.unregistered = append(f.unregistered, userID)
	return nil
}

type fakeLister struct {
	recipient string
	limit     int64
	result    []models.Notification
	err       error
}

func (f *fakeLister) ListFor(ctx context.Context, recipientID string, limit int64) ([]models.Notification, error) {
	f.recipient = recipientID
	f.limit = limit
	return f.result, f.err
}

type fakeTrigger struct {
	calls  int
	result scheduler.RunResult
	err    error
}

func (f *fakeTrigger) TriggerNow(ctx context.Context) (scheduler.RunResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeMailer struct {
	ok       bool
	sent     []string
	lastHTML string
}

func (f *fakeMailer) SendEmail(ctx context.Context, to, subject, html string) bool {
	f.sent = append(f.sent, to+"|"+subject)
	f.lastHTML = html
	return f.ok
}

type testApp struct {
	app       *handlers.App
	tokens    *fakeRegistrar
	lister    *fakeLister
	reminders *fakeTrigger
	mailer    *fakeMailer
}

func newTestApp() *testApp {
	ta := &testApp{
		tokens:    &fakeRegistrar{},
		lister:    &fakeLister{},
		reminders: &fakeTrigger{},
		mailer:    &fakeMailer{ok: true},
	}
	ta.app = &handlers.App{
		Auth:      testAuth,
		Tokens:    ta.tokens,
		Lister:    ta.lister,
		Reminders: ta.reminders,
		Mailer:    ta.mailer,
		Hub:       handlers.NewNotificationHub(),
	}
	ta.app.Router = ta.app.New()
	return ta
}

func (ta *testApp) do(t *testing.T, method, path, body, userID, role string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != "" {
		token, err := testAuth.GenerateToken(userID, role, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	ta.app.Router.ServeHTTP(rr, req)
	return rr
}

func TestUnknownRoute(t *testing.T) {
	ta := newTestApp()
	rr := ta.do(t, "GET", "/asdf", "", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHealthCheckRoute(t *testing.T) {
	ta := newTestApp()
	rr := ta.do(t, "GET", "/health", "", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "alive")
}

func TestRoutesRequireToken(t *testing.T) {
	ta := newTestApp()
	routes := []struct{ method, path string }{
		{"POST", "/api/v1/push-tokens"},
		{"DELETE", "/api/v1/push-tokens/u1"},
		{"GET", "/api/v1/users/u1/notifications"},
		{"POST", "/api/v1/admin/reminders/trigger"},
		{"POST", "/api/v1/admin/email"},
		{"POST", "/api/v1/admin/events/pickup-accepted"},
		{"POST", "/api/v1/admin/events/account-signup"},
		{"GET", "/ws/notifications"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rr := ta.do(t, rt.method, rt.path, "", "", "")
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestRegisterPushToken(t *testing.T) {
	ta := newTestApp()
	body := `{"userId":"u1","role":"driver","token":"ExponentPushToken[abc]","deviceId":"d1","platform":"ios"}`

	rr := ta.do(t, "POST", "/api/v1/push-tokens", body, "u1", "driver")

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, ta.tokens.registered, 1)
	assert.Equal(t, models.RegisterPushTokenRequest{
		UserID: "u1", Role: "driver", Token: "ExponentPushToken[abc]", DeviceID: "d1", Platform: "ios",
	}, ta.tokens.registered[0])
}

func TestRegisterPushToken_OtherUserForbidden(t *testing.T) {
	ta := newTestApp()
	rr := ta.do(t, "POST", "/api/v1/push-tokens", `{"userId":"u2","role":"driver","token":"t"}`, "u1", "driver")

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Empty(t, ta.tokens.registered)
}

func TestRegisterPushToken_AdminMayRegisterForOthers(t *testing.T) {
	ta := newTestApp()
	rr := ta.do(t, "POST", "/api/v1/push-tokens", `{"userId":"u2","role":"vendor","token":"t"}`, "admin-1", "admin")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRegisterPushToken_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
	}{
		{name: "malformed json", body: `{"userId":`},
		{name: "invalid registration", body: `{"userId":"u1","role":"driver"}`, err: notifications.ErrInvalidRegistration},
		{name: "invalid role", body: `{"userId":"u1","role":"pilot","token":"t"}`, err: notifications.ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp()
			ta.tokens.err = tt.err
			rr := ta.do(t, "POST", "/api/v1/push-tokens", tt.body, "u1", "driver")
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestRegisterPushToken_StoreFailure(t *testing.T) {
	ta := newTestApp()
	ta.tokens.err = errors.New("mocked-error")
	rr := ta.do(t, "POST", "/api/v1/push-tokens", `{"userId":"u1","role":"driver","token":"t"}`, "u1", "driver")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestDeletePushToken(t *testing.T) {
	ta := newTestApp()

	rr := ta.do(t, "DELETE", "/api/v1/push-tokens/u1", "", "u1", "vendor")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"u1"}, ta.tokens.unregistered)

	rr = ta.do(t, "DELETE", "/api/v1/push-tokens/u2", "", "u1", "vendor")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestGetUserNotifications(t *testing.T) {
	ta := newTestApp()
	ta.lister.result = []models.Notification{{RecipientID: "u1", Type: models.NotificationPickupAccepted, Title: "Pickup Accepted"}}

	rr := ta.do(t, "GET", "/api/v1/users/u1/notifications?limit=5", "", "u1", "vendor")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "u1", ta.lister.recipient)
	assert.Equal(t, int64(5), ta.lister.limit)
	assert.Contains(t, rr.Body.String(), `"type":"pickup_accepted"`)
}

func TestGetUserNotifications_EmptyIsArray(t *testing.T) {
	ta := newTestApp()
	rr := ta.do(t, "GET", "/api/v1/users/u1/notifications", "", "u1", "vendor")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
	assert.Equal(t, int64(0), ta.lister.limit)
}

func TestGetUserNotifications_Errors(t *testing.T) {
	ta := newTestApp()
	rr := ta.do(t, "GET", "/api/v1/users/u2/notifications", "", "u1", "vendor")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	ta.lister.err = errors.New("mocked-error")
	rr = ta.do(t, "GET", "/api/v1/users/u1/notifications", "", "u1", "vendor")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestTriggerReminder(t *testing.T) {
	ta := newTestApp()
	ta.reminders.result = scheduler.RunResult{Pickups: 3, Drivers: 2, Notified: 2}

	rr := ta.do(t, "POST", "/api/v1/admin/reminders/trigger", "", "admin-1", "admin")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, ta.reminders.calls)
	assert.JSONEq(t, `{"pickups":3,"drivers":2,"notified":2,"failed":0,"emailed":0,"skipped":false}`, rr.Body.String())
}

func TestTriggerReminder_NonAdminForbidden(t *testing.T) {
	ta := newTestApp()
	rr := ta.do(t, "POST", "/api/v1/admin/reminders/trigger", "", "d1", "driver")

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, 0, ta.reminders.calls)
}

func TestTriggerReminder_Failure(t *testing.T) {
	ta := newTestApp()
	ta.reminders.err = errors.New("mocked-error")
	rr := ta.do(t, "POST", "/api/v1/admin/reminders/trigger", "", "admin-1", "admin")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestSendEmail(t *testing.T) {
	ta := newTestApp()
	rr := ta.do(t, "POST", "/api/v1/admin/email", `{"to":"a@example.com","subject":"Hi","html":"<p>x</p>"}`, "admin-1", "admin")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"a@example.com|Hi"}, ta.mailer.sent)
	assert.Equal(t, "<p>x</p>", ta.mailer.lastHTML)

	rr = ta.do(t, "POST", "/api/v1/admin/email", `{"to":"a@example.com","subject":"Hi","text":"line1\nline2"}`, "admin-1", "admin")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, ta.mailer.lastHTML, "line1<br>line2")

	ta.mailer.ok = false
	rr = ta.do(t, "POST", "/api/v1/admin/email", `{"to":"a@example.com","subject":"Hi"}`, "admin-1", "admin")
	assert.Equal(t, http.StatusBadGateway, rr.Code)

	rr = ta.do(t, "POST", "/api/v1/admin/email", `{"to":"","subject":"Hi"}`, "admin-1", "admin")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
