package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"

	"github.com/mpavlov/courtbook-api/internal/config"
	"github.com/mpavlov/courtbook-api/internal/database"
	"github.com/mpavlov/courtbook-api/internal/handlers"
	authmw "github.com/mpavlov/courtbook-api/internal/middleware"
	"github.com/mpavlov/courtbook-api/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	tokenService := services.NewTokenService(db)
	emailService := services.NewEmailService(cfg.SMTP)
	auditService := services.NewAuditService(db)
	groupService := services.NewGroupService(db, auditService)
	userService := services.NewUserService(db, groupService)
	reservationService := services.NewReservationService(db, groupService, auditService)
	inviteService := services.NewInviteService(db, groupService, reservationService, emailService, cfg.BaseURL, cfg.InviteTTL)
	listingService := services.NewListingService(db, groupService, auditService)

	authHandler := handlers.NewAuthHandler(cfg, userService, tokenService, jwtService)
	userHandler := handlers.NewUserHandler(userService)
	groupHandler := handlers.NewGroupHandler(groupService, listingService)
	reservationHandler := handlers.NewReservationHandler(reservationService, listingService, userService)
	inviteHandler := handlers.NewInviteHandler(inviteService, cfg.BaseURL)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Get("/:provider/consent", authHandler.GetConsentURL)
	auth.Get("/:provider/callback", authHandler.Callback)
	auth.Post("/exchange", authHandler.ExchangeCode)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Post("/auth/logout-all", authHandler.LogoutAll)

	protected.Get("/users/me", userHandler.GetMe)
	protected.Patch("/users/me", userHandler.UpdateMe)

	protected.Get("/groups", groupHandler.List)
	protected.Post("/groups", groupHandler.Create)
	protected.Get("/groups/:id", groupHandler.Get)
	protected.Patch("/groups/:id", groupHandler.Rename)
	protected.Delete("/groups/:id", groupHandler.Delete)
	protected.Put("/groups/:id/members/:memberId/admin", groupHandler.SetAdmin)
	protected.Delete("/groups/:id/members/:memberId", groupHandler.RemoveMember)
	protected.Put("/groups/:id/display-name", groupHandler.SetDisplayName)
	protected.Get("/groups/:id/audit", groupHandler.ListAudit)
	protected.Post("/groups/:id/invites", inviteHandler.CreateGroupInvite)

	protected.Get("/reservations", reservationHandler.List)
	protected.Post("/reservations", reservationHandler.Create)
	protected.Get("/reservations/:id", reservationHandler.Get)
	protected.Patch("/reservations/:id", reservationHandler.Update)
	protected.Post("/reservations/:id/cancel", reservationHandler.Cancel)
	protected.Put("/reservations/:id/attendance", reservationHandler.SetAttendance)
	protected.Post("/reservations/:id/reassign", reservationHandler.ReassignOwner)
	protected.Post("/reservations/:id/invites", inviteHandler.CreateReservationInvite)

	protected.Post("/invites/:token/accept", inviteHandler.Accept)
	protected.Delete("/invites/:token", inviteHandler.Revoke)

	// Invite preview is public: the token is the capability.
	api.Get("/invites/:token", inviteHandler.Get)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			_ = tokenService.CleanupExpired(context.Background())
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Server starting on %s", addr)
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}
