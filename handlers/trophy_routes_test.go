package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"review-trophy-service/middleware"
	"review-trophy-service/services"
	"review-trophy-service/storetest"
	"review-trophy-service/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testToken = "gateway-secret"

func newTestApp(t *testing.T) (*fiber.App, *services.TrophyService, *gorm.DB) {
	t.Helper()
	db := storetest.NewDB(t)
	svc := services.NewTrophyService(db, services.DefaultRegistry(), zap.NewNop())
	icons, err := utils.NewIconStore(context.Background(), utils.R2Options{}, "https://static.example.com/")
	require.NoError(t, err)

	app := fiber.New()
	app.Use(middleware.GatewayAuthMiddleware(testToken, zap.NewNop()))
	SetupMetricsRoutes(app)
	SetupTrophyRoutes(app, svc, icons, zap.NewNop())
	return app, svc, db
}

func do(t *testing.T, app *fiber.App, method, target, body string, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Authorization", "Bearer "+testToken)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

var userHeaders = map[string]string{"X-User-ID": "1", "X-User-Roles": "admin"}

func TestListTrophyKinds(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, body := do(t, app, http.MethodGet, "/trophy-kinds", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var kinds []map[string]string
	require.NoError(t, json.Unmarshal(body, &kinds))
	require.Len(t, kinds, 2)
	assert.Equal(t, "milestone", kinds[0]["id"])
	assert.Equal(t, "https://static.example.com/rb/images/trophy.png", kinds[0]["icon_url"])
	assert.Equal(t, "palindrome", kinds[1]["id"])
}

func TestComputeAndListTrophies(t *testing.T) {
	app, _, db := newTestApp(t)
	user := storetest.SeedUser(t, db, 1, "admin")
	storetest.SeedReviewRequest(t, db, 1000, user)

	resp, body := do(t, app, http.MethodPost, "/s/review-requests/1000/trophies", "", userHeaders)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var computed struct {
		ReviewRequestID int64        `json:"review_request_id"`
		UserID          int64        `json:"user_id"`
		Awarded         []TrophyView `json:"awarded"`
	}
	require.NoError(t, json.Unmarshal(body, &computed))
	assert.EqualValues(t, 1000, computed.ReviewRequestID)
	assert.EqualValues(t, 1, computed.UserID)
	require.Len(t, computed.Awarded, 1)
	assert.Equal(t, "milestone", computed.Awarded[0].TrophyType)
	assert.Equal(t, "Review request #1,000 earned the Milestone Trophy", computed.Awarded[0].Summary)

	resp, body = do(t, app, http.MethodGet, "/review-requests/1000/trophies", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var views []TrophyView
	require.NoError(t, json.Unmarshal(body, &views))
	require.Len(t, views, 1)
	assert.Equal(t, "Milestone Trophy", views[0].Title)
	assert.Equal(t, "https://static.example.com/rb/images/trophy.png", views[0].IconURL)

	resp, body = do(t, app, http.MethodGet, "/users/1/trophies", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &views))
	assert.Len(t, views, 1)

	// recompute awards nothing new
	resp, body = do(t, app, http.MethodPost, "/s/review-requests/1000/trophies", "", userHeaders)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &computed))
	assert.Empty(t, computed.Awarded)
}

func TestComputeTrophies_ForExplicitUser(t *testing.T) {
	app, svc, db := newTestApp(t)
	submitter := storetest.SeedUser(t, db, 1, "admin")
	storetest.SeedUser(t, db, 2, "doc")
	storetest.SeedReviewRequest(t, db, 1221, submitter)

	resp, body := do(t, app, http.MethodPost, "/s/review-requests/1221/trophies", `{"user_id": 2}`, userHeaders)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	trophies, err := svc.TrophiesForUser(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, trophies, 1)
	assert.Equal(t, "palindrome", trophies[0].TrophyType)
}

func TestComputeTrophies_Errors(t *testing.T) {
	app, _, db := newTestApp(t)
	user := storetest.SeedUser(t, db, 1, "admin")
	storetest.SeedReviewRequest(t, db, 1000, user)

	tests := []struct {
		name    string
		target  string
		body    string
		headers map[string]string
		status  int
	}{
		{"missing user context", "/s/review-requests/1000/trophies", "", nil, http.StatusUnauthorized},
		{"bad id", "/s/review-requests/abc/trophies", "", userHeaders, http.StatusBadRequest},
		{"non-positive id", "/s/review-requests/0/trophies", "", userHeaders, http.StatusBadRequest},
		{"unknown review request", "/s/review-requests/2000/trophies", "", userHeaders, http.StatusNotFound},
		{"unknown user", "/s/review-requests/1000/trophies", `{"user_id": 99}`, userHeaders, http.StatusNotFound},
		{"bad json", "/s/review-requests/1000/trophies", `{"user_id":`, userHeaders, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, app, http.MethodPost, tt.target, tt.body, tt.headers)
			assert.Equal(t, tt.status, resp.StatusCode, string(body))
		})
	}
}

func TestListTrophies_BadID(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, _ := do(t, app, http.MethodGet, "/users/-3/trophies", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, http.MethodGet, "/review-requests/x/trophies", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGatewayAuthRequired(t *testing.T) {
	app, _, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/trophy-kinds", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/trophy-kinds", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	app, _, db := newTestApp(t)
	user := storetest.SeedUser(t, db, 1, "admin")
	storetest.SeedReviewRequest(t, db, 1000, user)
	resp, _ := do(t, app, http.MethodPost, "/s/review-requests/1000/trophies", "", userHeaders)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := do(t, app, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `trophies_awarded_total{trophy_type="milestone"}`)
}
