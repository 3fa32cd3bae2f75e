package main

import (
	"github.com/inkwell-cms/inkwell_api/services"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Msg("No .env file found, using system environment variables")
	}

	ctx, err := context.NewCtx(
		&services.RedisService{},
		&services.PostgresService{},
		&services.GeolocationService{},
		&services.AuditService{},
		&services.CacheService{},
		&services.EmailService{},
		&services.RateLimitService{},
		&services.LoginAttemptService{},
		&services.InteractionService{},
		&services.JWTService{},
		&services.RefreshTokenService{},
		&services.AuthService{},
		&services.UserService{},
		&services.MinIOService{},
		&services.MediaService{},
		&services.ArticleService{},
		&services.CommentService{},
		&services.ResumeService{},
		&services.TranslationService{},
		&services.MonitoringService{},

		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build service context")
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err).Msg("Service context exited")
		return
	}
}
