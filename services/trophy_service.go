package services

import (
	"context"
	"fmt"

	"review-trophy-service/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TrophyService struct {
	DB       *gorm.DB
	Registry *Registry
	Log      *zap.Logger
}

func NewTrophyService(db *gorm.DB, registry *Registry, log *zap.Logger) *TrophyService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TrophyService{DB: db, Registry: registry, Log: log}
}

// ComputeTrophies checks every registered kind against the review request and
// stores one trophy per qualifying kind. Each trophy is its own write, so a
// store failure keeps the trophies written before it. Recomputing is a no-op
// for kinds already awarded; the returned slice holds only new trophies.
func (s *TrophyService) ComputeTrophies(ctx context.Context, rr *models.ReviewRequest, user *models.User) ([]models.Trophy, error) {
	if rr == nil || rr.ID <= 0 {
		return nil, ErrInvalidReviewRequest
	}
	if user == nil || user.ID <= 0 {
		return nil, ErrInvalidUser
	}

	var awarded []models.Trophy
	for _, kind := range s.Registry.Qualifying(rr.ID) {
		trophy := models.Trophy{
			TrophyType:      kind.ID,
			ReviewRequestID: rr.ID,
			UserID:          user.ID,
		}
		res := s.DB.WithContext(ctx).
			Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "review_request_id"}, {Name: "trophy_type"}},
				DoNothing: true,
			}).
			Create(&trophy)
		if res.Error != nil {
			trophyComputeErrors.Inc()
			return awarded, fmt.Errorf("save %s trophy for review request %d: %w", kind.ID, rr.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			s.Log.Debug("trophy already awarded",
				zap.String("trophy_type", kind.ID),
				zap.Int64("review_request_id", rr.ID))
			continue
		}

		trophiesAwarded.WithLabelValues(kind.ID).Inc()
		awarded = append(awarded, trophy)
		s.Log.Info("🏆 Trophy awarded",
			zap.String("trophy", kind.Title),
			zap.Int64("review_request_id", rr.ID),
			zap.Int64("user_id", user.ID))
	}
	return awarded, nil
}

// TrophiesForReviewRequest returns the trophies of a review request, oldest first.
func (s *TrophyService) TrophiesForReviewRequest(ctx context.Context, reviewRequestID int64) ([]models.Trophy, error) {
	var trophies []models.Trophy
	err := s.DB.WithContext(ctx).
		Where("review_request_id = ?", reviewRequestID).
		Order("id ASC").
		Find(&trophies).Error
	return trophies, err
}

// TrophiesForUser returns every trophy earned by a user, oldest first.
func (s *TrophyService) TrophiesForUser(ctx context.Context, userID int64) ([]models.Trophy, error) {
	var trophies []models.Trophy
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&trophies).Error
	return trophies, err
}

// GetReviewRequest loads a mirrored review request with its submitter.
func (s *TrophyService) GetReviewRequest(ctx context.Context, id int64) (*models.ReviewRequest, error) {
	var rr models.ReviewRequest
	if err := s.DB.WithContext(ctx).Preload("Submitter").First(&rr, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rr, nil
}

func (s *TrophyService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}
