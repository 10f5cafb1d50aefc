package courseValidator

import (
	"strconv"
	"strings"

	"sefy/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// paramID validates a positive integer route parameter into Locals
func paramID(c *fiber.Ctx, param, local, label string) (bool, error) {
	raw := strings.TrimSpace(c.Params(param))
	if raw == "" {
		return false, middleware.JsonResponse(c, fiber.StatusBadRequest, false, label+" is required!", nil)
	}

	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return false, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+label+"!", nil)
	}

	c.Locals(local, id)
	return true, nil
}

func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  *int `json:"page"`
			Limit *int `json:"limit"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)

		// Validate Page
		if reqData.Page == nil || *reqData.Page < 1 {
			errors["page"] = "Page must be greater than 0!"
		}

		// Validate Limit
		if reqData.Limit == nil || *reqData.Limit < 1 {
			errors["limit"] = "Limit must be greater than 0!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedList", reqData)
		return c.Next()
	}
}

func GetCourseDetail() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := paramID(c, "id", "courseID", "Course ID"); !ok {
			return err
		}
		return c.Next()
	}
}

func EnrollCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := paramID(c, "id", "courseID", "Course ID"); !ok {
			return err
		}
		return c.Next()
	}
}

func GetCourseProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := paramID(c, "id", "courseID", "Course ID"); !ok {
			return err
		}
		return c.Next()
	}
}

func MarkLectureComplete() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := paramID(c, "course_id", "courseID", "Course ID"); !ok {
			return err
		}
		if ok, err := paramID(c, "lecture_id", "lectureID", "Lecture ID"); !ok {
			return err
		}
		return c.Next()
	}
}

func WatchProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := paramID(c, "course_id", "courseID", "Course ID"); !ok {
			return err
		}
		if ok, err := paramID(c, "lecture_id", "lectureID", "Lecture ID"); !ok {
			return err
		}

		reqData := new(struct {
			WatchedSeconds int `json:"watched_seconds" validate:"min=0"`
			TotalSeconds   int `json:"total_seconds" validate:"min=0"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			for _, fieldErr := range err.(validator.ValidationErrors) {
				errors[fieldErr.Field()] = "Must be zero or greater!"
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedWatch", reqData)
		return c.Next()
	}
}

func VerifyCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := strings.TrimSpace(c.Params("code"))
		if code == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Verification code is required!", nil)
		}
		if len(code) != 9 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid verification code!", nil)
		}

		c.Locals("verificationCode", code)
		return c.Next()
	}
}

func GetCertificateQR() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := paramID(c, "id", "certificateID", "Certificate ID"); !ok {
			return err
		}
		return c.Next()
	}
}

func EndStudySession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := paramID(c, "id", "courseID", "Course ID"); !ok {
			return err
		}
		return c.Next()
	}
}
