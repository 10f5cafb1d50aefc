package services

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"sefy/models/course"

	"gorm.io/gorm"
)

// Ambiguous characters (0/O, 1/I) are excluded so the code survives being
// read out loud or typed from a printed certificate.
const verificationAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	verificationCodeLen = 9
	maxGenerateAttempts = 5
)

// CertificateIssuer creates completion certificates with globally-unique,
// human-verifiable numbers. At most one non-revoked certificate exists per
// (user, course) pair.
type CertificateIssuer struct {
	db *gorm.DB

	// Notify, when set, is called after successful issuance with the
	// certificate and its enrollment. Wired to the certificate email in
	// production, left nil in tests.
	Notify func(certificate *course.Certificate, enrollment *course.Enrollment)
}

func NewCertificateIssuer(db *gorm.DB) *CertificateIssuer {
	return &CertificateIssuer{db: db}
}

// Issue creates the certificate for a completed enrollment. If a non-revoked
// certificate already exists for the (user, course) pair, that record is
// returned and nothing new is created, which makes retries and duplicate
// completion events safe.
func (i *CertificateIssuer) Issue(enrollment *course.Enrollment) (*course.Certificate, error) {
	var existing course.Certificate
	err := i.db.Where("user_id = ? AND course_id = ? AND status <> ? AND is_deleted = ?",
		enrollment.UserID, enrollment.CourseID, course.CertificateRevoked, false).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}

	number, code, err := i.generateUnique()
	if err != nil {
		return nil, err
	}

	certificate := course.Certificate{
		UserID:            enrollment.UserID,
		CourseID:          enrollment.CourseID,
		EnrollmentID:      enrollment.ID,
		CertificateNumber: number,
		VerificationCode:  code,
		Status:            course.CertificateIssued,
		IssuedAt:          time.Now(),
	}
	if err := i.db.Create(&certificate).Error; err != nil {
		return nil, fmt.Errorf("persist certificate: %w", err)
	}

	log.Printf("[CERTIFICATE] issued %s for user %d course %d", number, enrollment.UserID, enrollment.CourseID)

	if i.Notify != nil {
		go i.Notify(&certificate, enrollment)
	}
	return &certificate, nil
}

// Verify looks a certificate up by its verification code. The code is
// case-normalized before matching.
func (i *CertificateIssuer) Verify(code string) (*course.Certificate, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var certificate course.Certificate
	err := i.db.Where("verification_code = ? AND status <> ? AND is_deleted = ?",
		code, course.CertificateRevoked, false).
		First(&certificate).Error
	if err != nil {
		return nil, ErrCertificateNotFound
	}
	return &certificate, nil
}

// generateUnique produces a certificate number and verification code that do
// not exist in the store yet. Random collisions are close to impossible, but
// the store is still consulted before commit; the unique columns catch any
// race that slips through.
func (i *CertificateIssuer) generateUnique() (string, string, error) {
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		number, err := generateCertificateNumber(time.Now().Year())
		if err != nil {
			return "", "", err
		}
		code, err := generateVerificationCode()
		if err != nil {
			return "", "", err
		}

		var count int64
		i.db.Model(&course.Certificate{}).
			Where("certificate_number = ? OR verification_code = ?", number, code).
			Count(&count)
		if count == 0 {
			return number, code, nil
		}
	}
	return "", "", fmt.Errorf("could not generate a unique certificate number after %d attempts", maxGenerateAttempts)
}

// generateCertificateNumber builds a CERT-<year>-<5 digit> number.
func generateCertificateNumber(year int) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(100000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CERT-%d-%05d", year, n.Int64()), nil
}

// generateVerificationCode builds a 9-character uppercase token.
func generateVerificationCode() (string, error) {
	var sb strings.Builder
	alphabetLen := big.NewInt(int64(len(verificationAlphabet)))
	for j := 0; j < verificationCodeLen; j++ {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		sb.WriteByte(verificationAlphabet[n.Int64()])
	}
	return sb.String(), nil
}
