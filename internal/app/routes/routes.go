package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/altklausuren/internal/app/controllers"
	"github.com/yigit/altklausuren/internal/middleware"
)

// multipartOverhead leaves room for form fields and part headers around the
// two file parts of an upload.
const multipartOverhead = 1 << 20

// UploadBodyLimit is the largest request body accepted by the upload route
func UploadBodyLimit(maxFileSize int64) int64 {
	return 2*maxFileSize + multipartOverhead
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	examController *controllers.ExamController,
	authController *controllers.AuthController,
	uploadController *controllers.UploadController,
	healthController *controllers.HealthController,
	sessionMiddleware *middleware.SessionMiddleware,
	maxFileSize int64,
) {
	router.GET("/ping", healthController.Ping)

	// PDF downloads
	router.GET("/klausuren/:id/pdf", examController.DownloadExamPDF)
	router.GET("/loesungen/:id/pdf", examController.DownloadSolutionPDF)

	api := router.Group("/api")
	{
		api.GET("/health", healthController.Health)
		api.GET("/exams/:semester", examController.ListExams)
		api.GET("/solutions/:semester", examController.ListSolutions)

		api.POST("/login", authController.Login)
		api.POST("/logout", authController.Logout)
		api.GET("/auth/status", authController.Status)

		// Uploads require a logged-in session
		api.POST("/upload",
			sessionMiddleware.RequireSession(),
			middleware.BodyLimit(UploadBodyLimit(maxFileSize)),
			uploadController.Upload,
		)
	}
}
