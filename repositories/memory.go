package repositories

import (
	"context"
	"sort"
	"sync"

	"dailydiet/common"
	"dailydiet/models"
)

// Memory keeps sessions and meals in process memory. It satisfies the same
// contracts as the gorm repositories and backs tests and development runs
// started without DATABASE_URL.
type Memory struct {
	mu       sync.RWMutex
	seq      int64
	meals    map[string]models.Meal
	sessions map[string]models.Session
}

func NewMemory() *Memory {
	return &Memory{
		meals:    make(map[string]models.Meal),
		sessions: make(map[string]models.Session),
	}
}

func (m *Memory) ListBySession(_ context.Context, sessionID string) ([]models.Meal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Meal{}
	for _, meal := range m.meals {
		if meal.SessionID == sessionID {
			out = append(out, meal)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (m *Memory) FindByID(_ context.Context, id string) (*models.Meal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	meal, ok := m.meals[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &meal, nil
}

func (m *Memory) Create(_ context.Context, meal *models.Meal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[meal.SessionID]; !ok {
		m.sessions[meal.SessionID] = models.Session{ID: meal.SessionID, CreatedAt: meal.CreatedAt}
	}
	m.seq++
	meal.Seq = m.seq
	m.meals[meal.ID] = *meal
	return nil
}

func (m *Memory) Update(_ context.Context, meal *models.Meal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.meals[meal.ID]
	if !ok {
		return common.ErrNotFound
	}
	stored.Name = meal.Name
	stored.Description = meal.Description
	stored.IsUnderDiet = meal.IsUnderDiet
	stored.UpdatedAt = meal.UpdatedAt
	m.meals[meal.ID] = stored
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.meals[id]; !ok {
		return false, nil
	}
	delete(m.meals, id)
	return true, nil
}

func (m *Memory) Ensure(_ context.Context, s *models.Session) (*models.Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.sessions[s.ID]; ok {
		return &existing, false, nil
	}
	m.sessions[s.ID] = *s
	return s, true, nil
}

func (m *Memory) Find(_ context.Context, id string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &s, nil
}

func (m *Memory) List(_ context.Context) ([]models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// MealCount is a test helper.
func (m *Memory) MealCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.meals)
}
