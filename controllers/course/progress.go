package controllers

import (
	"errors"

	"sefy/database"
	"sefy/middleware"
	"sefy/models"
	courseModels "sefy/models/course"
	"sefy/services"

	"github.com/gofiber/fiber/v2"
)

// engine is wired once at startup; handlers delegate all progress math to it.
var engine *services.ProgressEngine

// SetupProgressEngine injects the shared progress engine
func SetupProgressEngine(e *services.ProgressEngine) {
	engine = e
}

// enrollmentFor resolves the caller's enrollment for a course
func enrollmentFor(userID uint, courseID int) (*courseModels.Enrollment, error) {
	var enrollment courseModels.Enrollment
	err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// MarkLectureComplete records one finished lecture for the caller
func MarkLectureComplete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)
	lectureID := c.Locals("lectureID").(int)

	enrollment, err := enrollmentFor(userID, courseID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	updated, err := engine.RecordLectureComplete(enrollment.ID, uint(lectureID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLectureNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lecture not found!", nil)
		case errors.Is(err, services.ErrEnrollmentNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
		default:
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record completion!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lecture marked as completed successfully!", updated)
}

// UpdateWatchProgress reports playback position for a lecture
func UpdateWatchProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)
	lectureID := c.Locals("lectureID").(int)
	reqData := c.Locals("validatedWatch").(*struct {
		WatchedSeconds int `json:"watched_seconds" validate:"min=0"`
		TotalSeconds   int `json:"total_seconds" validate:"min=0"`
	})

	enrollment, err := enrollmentFor(userID, courseID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	updated, err := engine.UpdateWatchProgress(enrollment.ID, uint(lectureID), reqData.WatchedSeconds, reqData.TotalSeconds)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLectureNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lecture not found!", nil)
		default:
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update watch progress!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Watch progress updated successfully!", updated)
}

// EndStudySession evicts the caller's cached watch state for an enrollment
func EndStudySession(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	enrollment, err := enrollmentFor(userID, courseID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	engine.EndSession(enrollment.ID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Study session closed.", nil)
}
