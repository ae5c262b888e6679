package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/vetdesk/vetdesk-api/internal/config"
	appointmentHandler "github.com/vetdesk/vetdesk-api/internal/handler/appointment"
	clinicHandler "github.com/vetdesk/vetdesk-api/internal/handler/clinic"
	encounterHandler "github.com/vetdesk/vetdesk-api/internal/handler/encounter"
	healthHandler "github.com/vetdesk/vetdesk-api/internal/handler/health"
	membershipHandler "github.com/vetdesk/vetdesk-api/internal/handler/membership"
	ownerHandler "github.com/vetdesk/vetdesk-api/internal/handler/owner"
	patientHandler "github.com/vetdesk/vetdesk-api/internal/handler/patient"
	prescriptionHandler "github.com/vetdesk/vetdesk-api/internal/handler/prescription"
	userHandler "github.com/vetdesk/vetdesk-api/internal/handler/user"
	"github.com/vetdesk/vetdesk-api/internal/email"
	"github.com/vetdesk/vetdesk-api/internal/middleware"
	"github.com/vetdesk/vetdesk-api/internal/repository/postgres"
	"github.com/vetdesk/vetdesk-api/internal/router"
	appointmentService "github.com/vetdesk/vetdesk-api/internal/service/appointment"
	authzService "github.com/vetdesk/vetdesk-api/internal/service/authz"
	clinicService "github.com/vetdesk/vetdesk-api/internal/service/clinic"
	encounterService "github.com/vetdesk/vetdesk-api/internal/service/encounter"
	membershipService "github.com/vetdesk/vetdesk-api/internal/service/membership"
	ownerService "github.com/vetdesk/vetdesk-api/internal/service/owner"
	patientService "github.com/vetdesk/vetdesk-api/internal/service/patient"
	prescriptionService "github.com/vetdesk/vetdesk-api/internal/service/prescription"
	userService "github.com/vetdesk/vetdesk-api/internal/service/user"
	"github.com/vetdesk/vetdesk-api/pkg/auth"
	"github.com/vetdesk/vetdesk-api/pkg/logger"
	"github.com/vetdesk/vetdesk-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logger.InfoLevel
	}
	appLogger := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Pretty:     cfg.Log.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	clinicRepo := postgres.NewClinicRepository(db)
	membershipRepo := postgres.NewMembershipRepository(db)
	ownerRepo := postgres.NewOwnerRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	encounterRepo := postgres.NewEncounterRepository(db)
	prescriptionRepo := postgres.NewPrescriptionRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Services
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)
	emailSvc := email.NewSMTPService(cfg.SMTP)
	authzSvc := authzService.NewService(membershipRepo)
	userSvc := userService.NewService(userRepo, membershipRepo)
	clinicSvc := clinicService.NewService(clinicRepo, hasher)
	membershipSvc := membershipService.NewService(membershipRepo, userRepo, clinicRepo, outboxRepo, emailSvc, authzSvc, appLogger)
	ownerSvc := ownerService.NewService(ownerRepo, patientRepo)
	patientSvc := patientService.NewService(patientRepo, ownerRepo, appointmentRepo, encounterRepo)
	appointmentSvc := appointmentService.NewService(appointmentRepo, patientRepo, encounterRepo, outboxRepo, appLogger)
	encounterSvc := encounterService.NewService(encounterRepo, patientRepo, appointmentRepo, outboxRepo, appLogger)
	prescriptionSvc := prescriptionService.NewService(prescriptionRepo, encounterRepo, clinicRepo, outboxRepo, hasher, appLogger)

	verifier := auth.NewTokenService(auth.Config{
		Secret: cfg.Auth.Secret,
		Issuer: cfg.Auth.Issuer,
	})
	authMiddleware := middleware.NewAuthMiddleware(verifier, userSvc, authzSvc)

	handlers := router.Handlers{
		Health:       healthHandler.NewHandler(db),
		User:         userHandler.NewHandler(userSvc),
		Clinic:       clinicHandler.NewHandler(clinicSvc),
		Membership:   membershipHandler.NewHandler(membershipSvc),
		Owner:        ownerHandler.NewHandler(ownerSvc),
		Patient:      patientHandler.NewHandler(patientSvc),
		Appointment:  appointmentHandler.NewHandler(appointmentSvc),
		Encounter:    encounterHandler.NewHandler(encounterSvc),
		Prescription: prescriptionHandler.NewHandler(prescriptionSvc),
	}

	r := router.NewRouter(authMiddleware, handlers, router.Config{
		RateLimitRPS:   cfg.RateLimit.RequestsPerSecond,
		RateLimitBurst: cfg.RateLimit.Burst,
		Timeout:        time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		CORSConfig:     middleware.DefaultCORSConfig(),
		MetricsPrefix:  "vetdesk_api",
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		appLogger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
}
