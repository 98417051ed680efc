package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dailydiet/common"
	"dailydiet/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MealRepository persists meals in Postgres through gorm.
type MealRepository struct{ db *gorm.DB }

func NewMealRepository(db *gorm.DB) *MealRepository { return &MealRepository{db: db} }

// ListBySession returns the session's meals in insertion order.
func (r *MealRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Meal, error) {
	meals := []models.Meal{}
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("seq ASC").
		Find(&meals).Error
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	return meals, nil
}

func (r *MealRepository) FindByID(ctx context.Context, id string) (*models.Meal, error) {
	var meal models.Meal
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&meal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("find meal: %w", err)
	}
	return &meal, nil
}

// Create inserts the owning session (if it is new) and the meal in one transaction.
func (r *MealRepository) Create(ctx context.Context, meal *models.Meal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session := &models.Session{ID: meal.SessionID, CreatedAt: meal.CreatedAt}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(session).Error; err != nil {
			return fmt.Errorf("ensure session: %w", err)
		}
		if err := tx.Create(meal).Error; err != nil {
			return fmt.Errorf("insert meal: %w", err)
		}
		return nil
	})
}

// Update overwrites the editable columns of the meal identified by meal.ID.
func (r *MealRepository) Update(ctx context.Context, meal *models.Meal) error {
	res := r.db.WithContext(ctx).
		Model(&models.Meal{}).
		Where("id = ?", meal.ID).
		Updates(map[string]any{
			"name":          meal.Name,
			"description":   meal.Description,
			"is_under_diet": meal.IsUnderDiet,
			"updated_at":    meal.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("update meal: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// Delete removes the meal if it exists and reports whether a row was removed.
func (r *MealRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Meal{})
	if res.Error != nil {
		return false, fmt.Errorf("delete meal: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Ping checks that the database answers within a short deadline.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
