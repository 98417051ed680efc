// services/meal_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"dailydiet/common"
	"dailydiet/models"
	"dailydiet/utils"
)

type MealRepository interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.Meal, error)
	FindByID(ctx context.Context, id string) (*models.Meal, error)
	Create(ctx context.Context, meal *models.Meal) error
	Update(ctx context.Context, meal *models.Meal) error
	Delete(ctx context.Context, id string) (bool, error)
}

// MealInput is the client-editable part of a meal.
type MealInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsUnderDiet *bool  `json:"isUnderDiet"`
}

// Validate reports every missing field at once, in a stable order.
func (in MealInput) Validate() error {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if in.IsUnderDiet == nil {
		missing = append(missing, "isUnderDiet")
	}
	if len(missing) > 0 {
		return &common.ValidationError{Fields: missing}
	}
	return nil
}

type MealService struct {
	meals    MealRepository
	sessions *SessionService
	now      func() time.Time
}

func NewMealService(meals MealRepository, sessions *SessionService) *MealService {
	return &MealService{meals: meals, sessions: sessions, now: time.Now}
}

// List returns the session's meals in the order they were created.
func (s *MealService) List(ctx context.Context, sessionID string) ([]models.Meal, error) {
	return s.meals.ListBySession(ctx, sessionID)
}

// Get looks a meal up by id without checking which session owns it.
func (s *MealService) Get(ctx context.Context, id string) (*models.Meal, error) {
	id, ok := utils.CanonicalToken(id)
	if !ok {
		return nil, common.ErrNotFound
	}
	return s.meals.FindByID(ctx, id)
}

// Create stores a new meal for the presented session, enrolling a new session
// when none was presented. The returned token must reach the client when issued is true.
func (s *MealService) Create(ctx context.Context, sessionID string, in MealInput) (meal *models.Meal, token string, issued bool, err error) {
	if err := in.Validate(); err != nil {
		return nil, "", false, err
	}

	token, issued = s.sessions.Resolve(sessionID)
	now := s.now()
	meal = &models.Meal{
		ID:          utils.NewToken(),
		SessionID:   token,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		IsUnderDiet: *in.IsUnderDiet,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.meals.Create(ctx, meal); err != nil {
		return nil, "", false, err
	}
	return meal, token, issued, nil
}

// Update replaces name, description and diet flag of an existing meal.
func (s *MealService) Update(ctx context.Context, id string, in MealInput) (*models.Meal, error) {
	id, ok := utils.CanonicalToken(id)
	if !ok {
		return nil, common.ErrNotFound
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	meal, err := s.meals.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	meal.Name = strings.TrimSpace(in.Name)
	meal.Description = strings.TrimSpace(in.Description)
	meal.IsUnderDiet = *in.IsUnderDiet
	meal.UpdatedAt = s.now()

	if err := s.meals.Update(ctx, meal); err != nil {
		return nil, err
	}
	return meal, nil
}

// Delete removes the meal if it exists. Deleting an unknown id is not an error.
func (s *MealService) Delete(ctx context.Context, id string) error {
	id, ok := utils.CanonicalToken(id)
	if !ok {
		return nil
	}
	if _, err := s.meals.Delete(ctx, id); err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}
	return nil
}

// Metrics computes the adherence snapshot over the session's meals.
func (s *MealService) Metrics(ctx context.Context, sessionID string) (Metrics, error) {
	meals, err := s.meals.ListBySession(ctx, sessionID)
	if err != nil {
		return Metrics{}, err
	}
	return ComputeMetrics(meals), nil
}
