package controllers

import (
	"errors"
	"fmt"

	"sefy/database"
	"sefy/middleware"
	"sefy/models"
	courseModels "sefy/models/course"
	"sefy/services"

	"github.com/gofiber/fiber/v2"
	"github.com/skip2/go-qrcode"
)

var issuer *services.CertificateIssuer

// SetupCertificateIssuer injects the shared certificate issuer
func SetupCertificateIssuer(i *services.CertificateIssuer) {
	issuer = i
}

// GetUserCertificates gets all certificates for the current user
func GetUserCertificates(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	type CertificateWithCourse struct {
		courseModels.Certificate
		CourseName string `json:"course_name"`
	}

	var certificates []courseModels.Certificate
	if err := database.Database.Db.Where("user_id = ? AND is_deleted = ?", userID, false).Order("issued_at desc").Find(&certificates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	result := make([]CertificateWithCourse, len(certificates))
	for i, cert := range certificates {
		var course courseModels.Course
		database.Database.Db.Where("id = ?", cert.CourseID).First(&course)
		result[i] = CertificateWithCourse{
			Certificate: cert,
			CourseName:  course.Title,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates": result,
		"total":        len(result),
	})
}

// VerifyCertificate resolves a certificate by its verification code. Public.
func VerifyCertificate(c *fiber.Ctx) error {
	code := c.Locals("verificationCode").(string)

	certificate, err := issuer.Verify(code)
	if err != nil {
		if errors.Is(err, services.ErrCertificateNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to verify certificate!", nil)
	}

	var course courseModels.Course
	database.Database.Db.Where("id = ?", certificate.CourseID).First(&course)

	var user models.User
	database.Database.Db.Select("name").Where("id = ?", certificate.UserID).First(&user)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate is valid!", fiber.Map{
		"certificate": certificate,
		"course_name": course.Title,
		"holder_name": user.Name,
	})
}

// GetCertificateQR renders the verification QR for one of the user's certificates
func GetCertificateQR(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	certificateID := c.Locals("certificateID").(int)

	var certificate courseModels.Certificate
	if err := database.Database.Db.Where("id = ? AND user_id = ? AND is_deleted = ?", certificateID, userID, false).First(&certificate).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", nil)
	}

	payload := fmt.Sprintf(`{"type":"certificate","id":"%d","metadata":{"code":"%s"}}`, certificate.ID, certificate.VerificationCode)
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to render QR code!", nil)
	}

	c.Set("Content-Type", "image/png")
	return c.Send(png)
}
