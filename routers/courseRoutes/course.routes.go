package courseRoutes

import (
	controllers "sefy/controllers/course"
	"sefy/middleware"
	validators "sefy/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all user-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	userGroup := app.Group("/course")

	// Course listing and details (published courses)
	userGroup.Get("/list", middleware.JWTMiddleware, validators.CourseList(), controllers.GetAllCourses)
	userGroup.Get("/:id", middleware.JWTMiddleware, validators.GetCourseDetail(), controllers.GetCourseDetails)

	// Enrollment
	userGroup.Post("/:id/enroll", middleware.JWTMiddleware, validators.EnrollCourse(), controllers.EnrollInCourse)

	// Lectures (for enrolled users)
	userGroup.Get("/:id/lectures", middleware.JWTMiddleware, validators.GetCourseDetail(), controllers.GetCourseLectures)

	// Lecture completion and watch progress
	userGroup.Post("/:course_id/lecture/:lecture_id/complete", middleware.JWTMiddleware, validators.MarkLectureComplete(), controllers.MarkLectureComplete)
	userGroup.Post("/:course_id/lecture/:lecture_id/watch", middleware.JWTMiddleware, validators.WatchProgress(), controllers.UpdateWatchProgress)
	userGroup.Post("/:id/session/end", middleware.JWTMiddleware, validators.EndStudySession(), controllers.EndStudySession)

	// Progress tracking
	userGroup.Get("/:id/progress", middleware.JWTMiddleware, validators.GetCourseProgress(), controllers.GetUserProgress)

	// User enrollments and certificates
	userEnrollGroup := app.Group("/user")
	userEnrollGroup.Get("/enrollments", middleware.JWTMiddleware, controllers.GetUserEnrollmentsList)
	userEnrollGroup.Get("/certificates", middleware.JWTMiddleware, controllers.GetUserCertificates)

	// Certificate verification (public) and QR rendering
	certGroup := app.Group("/certificate")
	certGroup.Get("/verify/:code", validators.VerifyCertificate(), controllers.VerifyCertificate)
	certGroup.Get("/:id/qr", middleware.JWTMiddleware, validators.GetCertificateQR(), controllers.GetCertificateQR)
}

// SetupAdminCourseRoutes sets up course management routes
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/course")

	adminGroup.Post("/create", middleware.JWTMiddleware, middleware.RequireRole("ADMIN"), validators.CreateCourse(), controllers.CreateCourse)
	adminGroup.Post("/:id/lecture", middleware.JWTMiddleware, middleware.RequireRole("ADMIN"), validators.CreateLecture(), controllers.CreateLecture)
	adminGroup.Patch("/:id/publish", middleware.JWTMiddleware, middleware.RequireRole("ADMIN"), validators.PublishCourse(), controllers.PublishCourse)
}
