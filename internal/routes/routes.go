package routes

import (
	"context"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/config"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/email"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/events"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/handlers"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/middleware"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/models"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/repository"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/services"
	schedulews "github.com/liangzixuan/ai-assisted-coding-kahunas/internal/websocket"
)

// Dependencies are the long-lived collaborators built in main.
type Dependencies struct {
	Hub       *schedulews.Hub
	Publisher events.Publisher
	Mailer    email.Sender
	Storage   services.StorageService
}

func RegisterRoutes(ctx context.Context, app *fiber.App, cfg *config.Config, db *pgxpool.Pool, deps Dependencies) error {
	userRepo := repository.NewUserRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	timeBlockRepo := repository.NewTimeBlockRepository(db)
	relationshipRepo := repository.NewClientRelationshipRepository(db)

	appointmentService := services.NewAppointmentService(db, appointmentRepo, deps.Publisher)
	timeBlockService := services.NewTimeBlockService(db, timeBlockRepo, deps.Publisher)
	scheduleService := services.NewScheduleService(db, appointmentRepo, timeBlockRepo)
	clientService := services.NewClientService(db, relationshipRepo, userRepo, deps.Mailer, services.InviteSettings{
		From: cfg.EmailFrom,
		Link: cfg.InviteLink,
	}, deps.Publisher)
	profileService := services.NewProfileService(userRepo)

	authHandler := handlers.NewAuthHandler(userRepo, relationshipRepo, cfg.JWTSecret)
	profileHandler := handlers.NewProfileHandler(profileService, deps.Storage)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService)
	timeBlockHandler := handlers.NewTimeBlockHandler(timeBlockService)
	availabilityHandler := handlers.NewAvailabilityHandler(scheduleService)
	clientHandler := handlers.NewClientHandler(clientService)

	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst)
	go authLimiter.Cleanup(ctx)

	if err := registerDocsRoutes(app, cfg); err != nil {
		return err
	}

	api := app.Group("/api")
	authRequired := middleware.AuthRequired(cfg.JWTSecret)

	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(authLimiter), authHandler.Register)
	auth.Post("/login", middleware.RateLimit(authLimiter), authHandler.Login)
	auth.Get("/me", authRequired, authHandler.Me)
	auth.Post("/update-role", authRequired, authHandler.UpdateRole)

	profile := api.Group("/profile", authRequired)
	profile.Put("", profileHandler.UpdateProfile)
	profile.Post("/avatar", profileHandler.UploadAvatar)

	coach := api.Group("/coach", authRequired, middleware.RequireRole(userRepo, models.RoleCoach))
	coach.Get("/appointments", appointmentHandler.ListAppointments)
	coach.Post("/appointments", appointmentHandler.CreateAppointment)
	coach.Get("/appointments/:id", appointmentHandler.GetAppointment)
	coach.Put("/appointments/:id", appointmentHandler.UpdateAppointment)
	coach.Delete("/appointments/:id", appointmentHandler.DeleteAppointment)

	coach.Get("/time-blocks", timeBlockHandler.ListTimeBlocks)
	coach.Post("/time-blocks", timeBlockHandler.CreateTimeBlock)
	coach.Get("/time-blocks/:id", timeBlockHandler.GetTimeBlock)
	coach.Put("/time-blocks/:id", timeBlockHandler.UpdateTimeBlock)
	coach.Delete("/time-blocks/:id", timeBlockHandler.DeleteTimeBlock)

	coach.Get("/availability", availabilityHandler.DayAvailability)
	coach.Get("/availability/check", availabilityHandler.CheckAvailability)

	coach.Get("/clients", clientHandler.ListClients)
	coach.Put("/clients/:clientId/status", clientHandler.UpdateClientStatus)
	coach.Post("/invite-client", clientHandler.InviteClient)

	client := api.Group("/client", authRequired, middleware.RequireRole(userRepo, models.RoleClient))
	client.Get("/appointments", appointmentHandler.ListClientAppointments)
	client.Post("/invitations/:token/accept", clientHandler.AcceptInvitation)

	if deps.Hub != nil {
		socketHandler := handlers.NewScheduleSocketHandler(deps.Hub, cfg.JWTSecret)
		api.Use("/ws", socketHandler.WebSocketAuth)
		api.Get("/ws", websocket.New(socketHandler.HandleWebSocket))
	}

	return nil
}
