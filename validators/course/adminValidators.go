package courseValidator

import (
	"strings"

	"sefy/middleware"

	"github.com/gofiber/fiber/v2"
)

func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Author      string `json:"author"`
			Category    string `json:"category"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		// Validate Title
		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		} else if len(strings.TrimSpace(reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		// Validate Description
		if strings.TrimSpace(reqData.Description) == "" {
			errors["description"] = "Description is required!"
		} else if len(strings.TrimSpace(reqData.Description)) < 5 {
			errors["description"] = "Description must be at least 5 characters long!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

func CreateLecture() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := paramID(c, "id", "courseID", "Course ID"); !ok {
			return err
		}

		reqData := new(struct {
			Title           string `json:"title"`
			Description     string `json:"description"`
			VideoURL        string `json:"video_url"`
			TotalSeconds    int    `json:"total_seconds"`
			RequiredSeconds int    `json:"required_seconds"`
			OrderIndex      int    `json:"order_index"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		}
		if reqData.TotalSeconds < 0 {
			errors["total_seconds"] = "Total seconds must be zero or greater!"
		}
		if reqData.RequiredSeconds < 0 {
			errors["required_seconds"] = "Required seconds must be zero or greater!"
		}
		if reqData.RequiredSeconds > reqData.TotalSeconds && reqData.TotalSeconds > 0 {
			errors["required_seconds"] = "Required seconds cannot exceed total seconds!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLecture", reqData)
		return c.Next()
	}
}

func PublishCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := paramID(c, "id", "courseID", "Course ID"); !ok {
			return err
		}
		return c.Next()
	}
}
