package services

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"sefy/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	certNumberPattern = regexp.MustCompile(`^CERT-\d{4}-\d{5}$`)
	verifyCodePattern = regexp.MustCompile(`^[A-HJ-NP-Z2-9]{9}$`)
)

func TestIssueFormatsNumberAndCode(t *testing.T) {
	db := openTestDB(t)
	issuer := NewCertificateIssuer(db)

	enrollment := course.Enrollment{UserID: 1, CourseID: 2, Status: course.EnrollmentCompleted}
	require.NoError(t, db.Create(&enrollment).Error)

	cert, err := issuer.Issue(&enrollment)
	require.NoError(t, err)

	assert.Regexp(t, certNumberPattern, cert.CertificateNumber)
	assert.Contains(t, cert.CertificateNumber, fmt.Sprintf("CERT-%d-", time.Now().Year()))
	assert.Regexp(t, verifyCodePattern, cert.VerificationCode)
	assert.NotContains(t, cert.VerificationCode, "0")
	assert.NotContains(t, cert.VerificationCode, "O")
	assert.NotContains(t, cert.VerificationCode, "1")
	assert.NotContains(t, cert.VerificationCode, "I")
	assert.Equal(t, course.CertificateIssued, cert.Status)
	assert.Equal(t, enrollment.ID, cert.EnrollmentID)
}

func TestIssueReturnsExistingCertificate(t *testing.T) {
	db := openTestDB(t)
	issuer := NewCertificateIssuer(db)

	enrollment := course.Enrollment{UserID: 1, CourseID: 2, Status: course.EnrollmentCompleted}
	require.NoError(t, db.Create(&enrollment).Error)

	first, err := issuer.Issue(&enrollment)
	require.NoError(t, err)
	second, err := issuer.Issue(&enrollment)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CertificateNumber, second.CertificateNumber)

	var count int64
	db.Model(&course.Certificate{}).Where("user_id = ? AND course_id = ?", 1, 2).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestIssueReplacesRevokedCertificate(t *testing.T) {
	db := openTestDB(t)
	issuer := NewCertificateIssuer(db)

	enrollment := course.Enrollment{UserID: 1, CourseID: 2, Status: course.EnrollmentCompleted}
	require.NoError(t, db.Create(&enrollment).Error)

	first, err := issuer.Issue(&enrollment)
	require.NoError(t, err)
	require.NoError(t, db.Model(&course.Certificate{}).Where("id = ?", first.ID).Update("status", course.CertificateRevoked).Error)

	second, err := issuer.Issue(&enrollment)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID, "a revoked certificate does not block reissue")
}

func TestVerifyNormalizesCase(t *testing.T) {
	db := openTestDB(t)
	issuer := NewCertificateIssuer(db)

	enrollment := course.Enrollment{UserID: 3, CourseID: 4, Status: course.EnrollmentCompleted}
	require.NoError(t, db.Create(&enrollment).Error)
	cert, err := issuer.Issue(&enrollment)
	require.NoError(t, err)

	found, err := issuer.Verify("  " + strings.ToLower(cert.VerificationCode) + " ")
	require.NoError(t, err)
	assert.Equal(t, cert.ID, found.ID)
}

func TestVerifyUnknownCode(t *testing.T) {
	db := openTestDB(t)
	issuer := NewCertificateIssuer(db)

	_, err := issuer.Verify("ZZZZZZZZZ")
	assert.ErrorIs(t, err, ErrCertificateNotFound)
}

func TestVerifyRejectsRevoked(t *testing.T) {
	db := openTestDB(t)
	issuer := NewCertificateIssuer(db)

	enrollment := course.Enrollment{UserID: 5, CourseID: 6, Status: course.EnrollmentCompleted}
	require.NoError(t, db.Create(&enrollment).Error)
	cert, err := issuer.Issue(&enrollment)
	require.NoError(t, err)

	require.NoError(t, db.Model(&course.Certificate{}).Where("id = ?", cert.ID).Update("status", course.CertificateRevoked).Error)

	_, err = issuer.Verify(cert.VerificationCode)
	assert.ErrorIs(t, err, ErrCertificateNotFound)
}

func TestGenerateVerificationCodeAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateVerificationCode()
		require.NoError(t, err)
		assert.Regexp(t, verifyCodePattern, code)
	}
}

func TestGenerateCertificateNumberPadding(t *testing.T) {
	for i := 0; i < 50; i++ {
		number, err := generateCertificateNumber(2026)
		require.NoError(t, err)
		assert.Regexp(t, `^CERT-2026-\d{5}$`, number)
	}
}
