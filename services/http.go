package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	log "github.com/sirupsen/logrus"

	"github.com/inkwell-cms/inkwell_api/services/handlers"
	"github.com/inkwell-cms/inkwell_api/shared"
)

type HttpService struct {
	appContext.DefaultService

	authSvc       *AuthService
	userSvc       *UserService
	articleSvc    *ArticleService
	commentSvc    *CommentService
	resumeSvc     *ResumeService
	translateSvc  *TranslationService
	mediaSvc      *MediaService
	cacheSvc      *CacheService
	auditSvc      *AuditService
	rateLimitSvc  *RateLimitService
	monitoringSvc *MonitoringService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *appContext.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_SVC).(*AuthService)
	svc.userSvc = svc.Service(USER_SVC).(*UserService)
	svc.articleSvc = svc.Service(ARTICLE_SVC).(*ArticleService)
	svc.commentSvc = svc.Service(COMMENT_SVC).(*CommentService)
	svc.resumeSvc = svc.Service(RESUME_SVC).(*ResumeService)
	svc.translateSvc = svc.Service(TRANSLATION_SVC).(*TranslationService)
	svc.mediaSvc = svc.Service(MEDIA_SVC).(*MediaService)
	svc.cacheSvc = svc.Service(CACHE_SVC).(*CacheService)
	svc.auditSvc = svc.Service(AUDIT_SVC).(*AuditService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	app := fiber.New(fiber.Config{
		AppName:      "Inkwell API",
		ErrorHandler: svc.handleError,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    25 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(MonitoringMiddleware(svc.monitoringSvc))

	app.Get("/ping", svc.ping)
	app.Get("/swagger/*", swagger.HandlerDefault)

	svc.registerRoutes(app)

	app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseNotFound(c)
	})

	svc.server = app
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) registerRoutes(app *fiber.App) {
	authHandler := handlers.NewAuthHandler(svc.authSvc)
	userHandler := handlers.NewUserHandler(svc.userSvc)
	articleHandler := handlers.NewArticleHandler(svc.articleSvc, svc.commentSvc, svc.translateSvc, svc.mediaSvc)
	commentHandler := handlers.NewCommentHandler(svc.commentSvc)
	resumeHandler := handlers.NewResumeHandler(svc.resumeSvc)
	adminHandler := handlers.NewAdminHandler(svc.userSvc, svc.cacheSvc, svc.auditSvc, svc.rateLimitSvc, svc.mediaSvc)

	v1 := app.Group("/api/v1")

	// Public auth surface
	v1.Post("/register", authHandler.Register)
	v1.Post("/login", authHandler.Login)
	v1.Post("/refresh", authHandler.RefreshToken)
	v1.Post("/verify-email", authHandler.VerifyEmail)
	v1.Post("/resend-verification", authHandler.ResendVerification)
	v1.Post("/forgot-password", authHandler.ForgotPassword)
	v1.Post("/reset-password", authHandler.ResetPassword)
	v1.Get("/lockout-status", authHandler.LockoutStatus)

	// Public content surface
	v1.Get("/articles", articleHandler.List)
	v1.Get("/articles/mine", svc.authSvc.RequiredAuth(), articleHandler.Mine)
	v1.Get("/articles/:slug", articleHandler.Get)
	v1.Post("/articles/:slug/view", articleHandler.View)
	v1.Post("/articles/:slug/like", articleHandler.Like)
	v1.Post("/articles/:slug/translate", articleHandler.Translate)
	v1.Get("/articles/:slug/comments", commentHandler.List)
	v1.Post("/articles/:slug/comments", commentHandler.Create)
	v1.Get("/articles/:slug/media", articleHandler.ListMedia)
	v1.Get("/search", articleHandler.Search)
	v1.Get("/tags", articleHandler.Tags)
	v1.Get("/feed", articleHandler.Feed)

	// Authenticated surface
	auth := v1.Group("", svc.authSvc.RequiredAuth())
	auth.Post("/logout", authHandler.Logout)
	auth.Post("/logout-all", authHandler.LogoutAll)
	auth.Post("/change-password", authHandler.ChangePassword)
	auth.Get("/profile", userHandler.GetProfile)
	auth.Put("/profile", userHandler.UpdateProfile)

	auth.Get("/resume", resumeHandler.Get)
	auth.Put("/resume", resumeHandler.UpsertProfile)
	auth.Post("/resume/sections", resumeHandler.CreateSection)
	auth.Put("/resume/sections/:id", resumeHandler.UpdateSection)
	auth.Delete("/resume/sections/:id", resumeHandler.DeleteSection)
	auth.Get("/resume/export", resumeHandler.Export)

	// Author surface
	author := auth.Group("", svc.authSvc.RequireRole(shared.RoleAuthor))
	author.Post("/articles", articleHandler.Create)
	author.Put("/articles/:slug", articleHandler.Update)
	author.Delete("/articles/:slug", articleHandler.Delete)
	author.Post("/articles/:slug/cover", articleHandler.UploadCover)
	author.Post("/articles/:slug/attachments", articleHandler.UploadAttachment)

	// Admin surface
	admin := auth.Group("/admin", svc.authSvc.RequireRole(shared.RoleAdmin))
	admin.Get("/users", adminHandler.ListUsers)
	admin.Put("/users/:id", adminHandler.UpdateUser)
	admin.Get("/audit", adminHandler.AuditLogs)
	admin.Get("/cache/stats", adminHandler.CacheStats)
	admin.Delete("/cache/:namespace", adminHandler.InvalidateCache)
	admin.Delete("/rate-limit/:email", adminHandler.ResetRateLimit)
	admin.Delete("/media/:id", adminHandler.DeleteMedia)
	admin.Get("/comments/pending", commentHandler.Pending)
	admin.Post("/comments/:id/approve", commentHandler.Approve)
	admin.Delete("/comments/:id", commentHandler.Delete)
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")
	return shared.ResponseOK(c, "pong")
}

func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	log.WithError(err).WithField("path", c.Path()).Error("Unhandled request error")
	return shared.ResponseInternalError(c, err)
}
