package repositories

import (
	"context"
	"errors"
	"fmt"

	"dailydiet/common"
	"dailydiet/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepository struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) *SessionRepository { return &SessionRepository{db: db} }

// Ensure inserts the session unless a row with the same id exists, then
// returns the stored row. created is true only when this call inserted it.
func (r *SessionRepository) Ensure(ctx context.Context, s *models.Session) (*models.Session, bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(s)
	if res.Error != nil {
		return nil, false, fmt.Errorf("ensure session: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return s, true, nil
	}

	existing, err := r.Find(ctx, s.ID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *SessionRepository) Find(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return &s, nil
}

func (r *SessionRepository) List(ctx context.Context) ([]models.Session, error) {
	sessions := []models.Session{}
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}
