// workers/review_request_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"review-trophy-service/models"
	"review-trophy-service/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PublishedSubmitter is the submitter block of a published review request.
type PublishedSubmitter struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// PublishedReviewRequest matches the review application's JSON for a published review request.
type PublishedReviewRequest struct {
	ID          int64              `json:"id"`
	Summary     string             `json:"summary"`
	Public      bool               `json:"public"`
	Submitter   PublishedSubmitter `json:"submitter"`
	TimeAdded   time.Time          `json:"time_added"`
	LastUpdated time.Time          `json:"last_updated"`
}

// GetPublishedResponse is the top-level structure of the review application response.
type GetPublishedResponse struct {
	ReviewRequests []PublishedReviewRequest `json:"review_requests"`
}

// ReviewRequestSyncWorker mirrors newly published review requests and awards their trophies.
type ReviewRequestSyncWorker struct {
	db           *gorm.DB
	trophies     *services.TrophyService
	interval     time.Duration
	baseURL      string // e.g., "http://reviews.internal:8080"
	endpointPath string // e.g., "/api/v1/review-requests/published"
	serviceToken string
	httpClient   *http.Client
	log          *zap.Logger
}

func NewReviewRequestSyncWorker(db *gorm.DB, trophies *services.TrophyService, baseURL, serviceToken string, interval time.Duration, httpClient *http.Client, log *zap.Logger) *ReviewRequestSyncWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ReviewRequestSyncWorker{
		db:           db,
		trophies:     trophies,
		interval:     interval,
		baseURL:      baseURL,
		endpointPath: "/api/v1/review-requests/published",
		serviceToken: serviceToken,
		httpClient:   httpClient,
		log:          log,
	}
}

func (w *ReviewRequestSyncWorker) Start(ctx context.Context) {
	w.log.Info("🔁 Starting Review Request Sync Worker (review app → trophies)…")
	go w.run(ctx)
}

func (w *ReviewRequestSyncWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.SyncOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.log.Error("❌ Sync batch failed", zap.Error(err))
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			w.log.Info("⏹️ Review Request Sync Worker stopped")
			return
		}
	}
}

// lastSyncTime is the newest update we have mirrored, or the epoch when empty.
func (w *ReviewRequestSyncWorker) lastSyncTime(ctx context.Context) time.Time {
	var latest models.ReviewRequest
	err := w.db.WithContext(ctx).Order("updated_at DESC").First(&latest).Error
	if err != nil || latest.UpdatedAt.IsZero() {
		return time.Unix(0, 0)
	}
	return latest.UpdatedAt
}

// SyncOnce fetches one batch of published review requests, mirrors them and
// computes their trophies. It returns how many review requests were processed.
func (w *ReviewRequestSyncWorker) SyncOnce(ctx context.Context) (int, error) {
	since := w.lastSyncTime(ctx)
	published, err := w.fetch(ctx, since)
	if err != nil {
		return 0, err
	}
	if len(published) == 0 {
		w.log.Debug("[SYNC] ✅ No published review requests", zap.Time("since", since))
		return 0, nil
	}

	processed, failed := 0, 0
	for _, p := range published {
		if err := w.process(ctx, p, since); err != nil {
			failed++
			w.log.Warn("[SYNC] ⚠️ Failed to process review request",
				zap.Int64("review_request_id", p.ID), zap.Error(err))
			continue
		}
		processed++
	}

	w.log.Info("[SYNC] ✅ Synced review requests",
		zap.Int("received", len(published)),
		zap.Int("processed", processed),
		zap.Int("errors", failed))
	return processed, nil
}

func (w *ReviewRequestSyncWorker) fetch(ctx context.Context, since time.Time) ([]PublishedReviewRequest, error) {
	base, err := url.Parse(w.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid review service URL '%s': %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	endpointURL.RawQuery = q.Encode()
	finalURL := endpointURL.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request to %s: %w", finalURL, err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request to review service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("review service non-200 response: %d — %s", resp.StatusCode, string(body))
	}

	var response GetPublishedResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode review service response: %w", err)
	}
	return response.ReviewRequests, nil
}

// process mirrors one review request and awards its trophies. since is the
// current cursor; a row without upstream timestamps is stamped with it so the
// cursor never runs ahead of the review application's clock.
func (w *ReviewRequestSyncWorker) process(ctx context.Context, p PublishedReviewRequest, since time.Time) error {
	if p.ID <= 0 || p.Submitter.ID <= 0 {
		return fmt.Errorf("review request %d: missing id or submitter", p.ID)
	}
	db := w.db.WithContext(ctx)

	user := models.User{
		ID:       p.Submitter.ID,
		Username: p.Submitter.Username,
		Email:    p.Submitter.Email,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "email", "updated_at"}),
	}).Create(&user).Error; err != nil {
		return fmt.Errorf("upsert user %d: %w", user.ID, err)
	}

	updatedAt := p.LastUpdated
	if updatedAt.IsZero() {
		updatedAt = p.TimeAdded
	}
	if updatedAt.IsZero() {
		updatedAt = since
	}
	createdAt := p.TimeAdded
	if createdAt.IsZero() {
		createdAt = updatedAt
	}

	rr := models.ReviewRequest{
		ID:          p.ID,
		SubmitterID: user.ID,
		Summary:     p.Summary,
		Public:      p.Public,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
	if err := db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"submitter_id", "summary", "public", "updated_at"}),
	}).Create(&rr).Error; err != nil {
		return fmt.Errorf("upsert review request %d: %w", rr.ID, err)
	}

	_, err := w.trophies.ComputeTrophies(ctx, &rr, &user)
	return err
}
