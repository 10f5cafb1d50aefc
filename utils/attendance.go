package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"sefy/config"
	courseModels "sefy/models/course"
	"sefy/scan"

	"github.com/go-resty/resty/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AttendanceClient records attendance events produced by QR scans: it
// forwards them to the configured attendance API and persists a local record.
type AttendanceClient struct {
	db      *gorm.DB
	client  *resty.Client
	baseURL string
	apiKey  string
}

func NewAttendanceClient(db *gorm.DB) *AttendanceClient {
	return &AttendanceClient{
		db:      db,
		client:  resty.New().SetTimeout(10 * time.Second),
		baseURL: config.AppConfig.AttendanceApiURL,
		apiKey:  config.AppConfig.AttendanceApiKey,
	}
}

// RecordAttendance books one attendance event. Called exactly once per
// successful attendance scan; any failure surfaces to the session.
func (a *AttendanceClient) RecordAttendance(ctx context.Context, userID uint, result scan.ScanResult) error {
	if a.baseURL != "" {
		resp, err := a.client.R().
			SetContext(ctx).
			SetHeader("Authorization", "Bearer "+a.apiKey).
			SetBody(map[string]any{
				"user_id":    userID,
				"session_id": result.ID,
				"timestamp":  result.Timestamp,
				"metadata":   result.Metadata,
			}).
			Post(a.baseURL + "/attendance")
		if err != nil {
			return fmt.Errorf("attendance api: %w", err)
		}
		if resp.StatusCode() >= 300 {
			return fmt.Errorf("attendance api: status %d: %s", resp.StatusCode(), resp.String())
		}
	}

	metadata := datatypes.JSON("{}")
	if len(result.Metadata) > 0 {
		if raw, err := json.Marshal(result.Metadata); err == nil {
			metadata = datatypes.JSON(raw)
		}
	}

	record := courseModels.AttendanceRecord{
		UserID:     userID,
		SessionID:  result.ID,
		RecordedAt: time.Now(),
		Metadata:   metadata,
	}
	if err := a.db.Create(&record).Error; err != nil {
		return fmt.Errorf("persist attendance: %w", err)
	}

	log.Printf("[ATTENDANCE] recorded session %s for user %d", result.ID, userID)
	return nil
}
