package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AttendanceRecord stores one attendance event produced by a QR scan
type AttendanceRecord struct {
	gorm.Model
	UserID     uint           `json:"user_id" gorm:"index;not null"`
	SessionID  string         `json:"session_id" gorm:"index;not null"` // id carried by the scanned payload
	RecordedAt time.Time      `json:"recorded_at"`
	Metadata   datatypes.JSON `json:"metadata"` // raw payload metadata, as scanned
	IsDeleted  bool           `gorm:"default:false"`
}
