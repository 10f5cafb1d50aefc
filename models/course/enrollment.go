package course

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment status values
const (
	EnrollmentActive    = "ACTIVE"
	EnrollmentCompleted = "COMPLETED"
	EnrollmentCancelled = "CANCELLED"
)

// Enrollment tracks a user's enrollment in a course with progress
type Enrollment struct {
	gorm.Model
	UserID            uint       `json:"user_id" gorm:"index;not null"`
	CourseID          uint       `json:"course_id" gorm:"index;not null"`
	Status            string     `json:"status" gorm:"default:'ACTIVE'"`          // ACTIVE, COMPLETED, CANCELLED
	ProgressPercent   int        `json:"progress_percent" gorm:"default:0"`       // 0..100, never decreases
	CompletedLectures int        `json:"completed_lectures" gorm:"default:0"`
	TotalLectures     int        `json:"total_lectures" gorm:"default:0"`
	EnrolledAt        time.Time  `json:"enrolled_at"`
	LastAccessedAt    time.Time  `json:"last_accessed_at"`
	CompletedAt       *time.Time `json:"completed_at"` // set once, on the transition into COMPLETED
	IsDeleted         bool       `gorm:"default:false"`
}

// LectureCompletion records that a user finished one lecture of a course.
// The set of rows per enrollment is the completed-lecture set.
type LectureCompletion struct {
	gorm.Model
	EnrollmentID uint   `json:"enrollment_id" gorm:"index;not null"`
	UserID       uint   `json:"user_id" gorm:"index;not null"`
	CourseID     uint   `json:"course_id" gorm:"index;not null"`
	LectureID    uint   `json:"lecture_id" gorm:"index;not null"`
	Status       string `json:"status" gorm:"default:'COMPLETED'"`
	IsDeleted    bool   `gorm:"default:false"`
}

// LectureProgress keeps per-lecture watch state below the completion threshold
type LectureProgress struct {
	gorm.Model
	EnrollmentID   uint `json:"enrollment_id" gorm:"index;not null"`
	LectureID      uint `json:"lecture_id" gorm:"index;not null"`
	WatchedSeconds int  `json:"watched_seconds" gorm:"default:0"`
	TotalSeconds   int  `json:"total_seconds" gorm:"default:0"`
	IsDeleted      bool `gorm:"default:false"`
}
