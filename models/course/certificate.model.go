package course

import (
	"time"

	"gorm.io/gorm"
)

// Certificate status values
const (
	CertificatePending = "PENDING"
	CertificateIssued  = "ISSUED"
	CertificateRevoked = "REVOKED"
)

// Certificate represents an issued certificate for course completion.
// At most one non-revoked certificate exists per (user, course) pair.
type Certificate struct {
	gorm.Model
	UserID            uint      `json:"user_id" gorm:"index;not null"`
	CourseID          uint      `json:"course_id" gorm:"index;not null"`
	EnrollmentID      uint      `json:"enrollment_id" gorm:"index;not null"`
	CertificateNumber string    `json:"certificate_number" gorm:"unique"` // CERT-<year>-<5 digit>
	VerificationCode  string    `json:"verification_code" gorm:"unique"`  // 9-char uppercase token
	Status            string    `json:"status" gorm:"default:'ISSUED'"`   // PENDING, ISSUED, REVOKED
	IssuedAt          time.Time `json:"issued_at"`
	IsDeleted         bool      `gorm:"default:false"`
}
