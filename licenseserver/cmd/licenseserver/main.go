package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	apiHandler "licensegate/licenseserver/internal/handler/api"
	"licensegate/licenseserver/internal/config"
	"licensegate/licenseserver/internal/infra"
	"licensegate/licenseserver/internal/metrics"
	"licensegate/licenseserver/internal/repository"
	"licensegate/licenseserver/internal/server"
	"licensegate/licenseserver/internal/service"
)

func main() {
	_ = godotenv.Load("licenseserver/.env")
	_ = godotenv.Load(".env")

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	env, err := config.LoadEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log = log.Level(env.LogLevel)

	db, err := infra.OpenDB(env.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", env.DBPath).Msg("open database")
	}
	if err := infra.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	repo := repository.NewGormRepository(db)
	svc, err := service.New(repo, service.Options{
		JWTSecret:     env.JWTSecret,
		LicenseLength: env.LicenseLength,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init service")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if env.HasAdmin() {
		created, err := svc.EnsureAdmin(ctx, env.AdminUsername, env.AdminEmail, env.AdminPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("bootstrap admin")
		}
		if created {
			log.Info().Str("username", env.AdminUsername).Msg("admin account created")
		}
	}

	m := metrics.New()
	api := apiHandler.NewHandler(svc, m, log)
	router := server.NewRouter(api, m, log)

	if err := server.Run(ctx, env.ListenAddr, router, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
