package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dailydiet/common"
	"dailydiet/models"
)

// ObjectUploader stores a document and returns where it can be fetched.
type ObjectUploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type ExportDocument struct {
	SessionID  string        `json:"sessionId"`
	ExportedAt time.Time     `json:"exportedAt"`
	Metrics    Metrics       `json:"metrics"`
	Meals      []models.Meal `json:"meals"`
}

type ExportResult struct {
	Key   string `json:"key"`
	URL   string `json:"url"`
	Meals int    `json:"meals"`
}

// ExportService snapshots a session's meals and metrics to object storage.
type ExportService struct {
	meals    *MealService
	uploader ObjectUploader
	now      func() time.Time
}

// NewExportService accepts a nil uploader; Export then fails with common.ErrExportDisabled.
func NewExportService(meals *MealService, uploader ObjectUploader) *ExportService {
	return &ExportService{meals: meals, uploader: uploader, now: time.Now}
}

func (s *ExportService) Enabled() bool { return s.uploader != nil }

func (s *ExportService) Export(ctx context.Context, sessionID string) (*ExportResult, error) {
	if !s.Enabled() {
		return nil, common.ErrExportDisabled
	}

	meals, err := s.meals.List(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	doc := ExportDocument{
		SessionID:  sessionID,
		ExportedAt: now,
		Metrics:    ComputeMetrics(meals),
		Meals:      meals,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%d.json", sessionID, now.UnixNano())
	url, err := s.uploader.Upload(ctx, key, body, "application/json")
	if err != nil {
		return nil, err
	}
	return &ExportResult{Key: key, URL: url, Meals: len(meals)}, nil
}
