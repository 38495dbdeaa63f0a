package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dimitrije/tandem-api/internal/config"
	"github.com/dimitrije/tandem-api/internal/cron"
	"github.com/dimitrije/tandem-api/internal/database"
	"github.com/dimitrije/tandem-api/internal/handlers"
	"github.com/dimitrije/tandem-api/internal/logger"
	"github.com/dimitrije/tandem-api/internal/metrics"
	authmw "github.com/dimitrije/tandem-api/internal/middleware"
	"github.com/dimitrije/tandem-api/internal/oauth"
	"github.com/dimitrije/tandem-api/internal/services"
	"github.com/dimitrije/tandem-api/internal/sse"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("tandem-api", cfg.IsProduction(), cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal("failed to run migrations", "error", err)
	}

	tokens := services.NewSessionTokenService(cfg.SessionSecret, cfg.SessionExpiry)
	userService := services.NewUserService(db)
	sessionService := services.NewSessionService(db)
	orgService := services.NewOrganizationService(db)
	teamService := services.NewTeamService(db)
	sprintService := services.NewSprintService(db)
	ticketService := services.NewTicketService(db)
	wikiService := services.NewWikiService(db)
	wikiRenderer := services.NewWikiRenderer(cfg.WikiCacheSize)
	dashboardService := services.NewDashboardService(db)
	emailService := services.NewEmailService(cfg.SMTP)
	inviteService := services.NewInviteService(db, emailService, cfg.FrontendURL+"/invites")

	if !emailService.IsConfigured() {
		log.Warn("SMTP is not configured; invites will be stored without sending email")
	}

	states := oauth.NewStateStore(oauth.StateTTL)

	hub := sse.NewHub()
	go hub.Run(ctx)

	scheduler := cron.NewScheduler(log)
	if _, err := scheduler.AddFunc(cfg.SessionCleanupSchedule, cron.CleanupJob(sessionService, states, log.Named("cleanup"))); err != nil {
		log.Fatal("invalid session cleanup schedule", "schedule", cfg.SessionCleanupSchedule, "error", err)
	}
	scheduler.Start()
	defer scheduler.Shutdown()

	metricsServer := metrics.NewServer(cfg.MetricsAddr)
	go func() {
		log.Info("metrics server starting", "addr", cfg.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()

	authHandler := handlers.NewAuthHandler(cfg, states, userService, sessionService, tokens, log.Named("auth"))
	userHandler := handlers.NewUserHandler(userService, log)
	orgHandler := handlers.NewOrganizationHandler(orgService, log)
	teamHandler := handlers.NewTeamHandler(teamService, hub, log)
	sprintHandler := handlers.NewSprintHandler(sprintService, teamService, hub, log.Named("sprint"))
	ticketHandler := handlers.NewTicketHandler(ticketService, teamService, hub, log)
	inviteHandler := handlers.NewInviteHandler(inviteService, teamService, userService, hub, log.Named("invite"))
	wikiHandler := handlers.NewWikiHandler(wikiService, wikiRenderer, teamService, log)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, teamService, log)
	eventsHandler := handlers.NewEventsHandler(hub, teamService, userService, log.Named("events"))

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api")

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	auth := api.Group("/auth")
	auth.Get("/:provider/consent", authHandler.GetConsentURL)
	auth.Get("/:provider/callback", authHandler.Callback)

	protected := api.Group("")
	protected.Use(authmw.Auth(tokens, sessionService, cfg.SessionCookieName))

	protected.Post("/auth/logout", authHandler.Logout)
	protected.Post("/auth/logout-all", authHandler.LogoutAll)

	protected.Get("/users/me", userHandler.GetMe)
	protected.Patch("/users/me", userHandler.UpdateMe)

	protected.Get("/organization", orgHandler.List)
	protected.Post("/organization", orgHandler.Create)
	protected.Get("/organization/:orgId", orgHandler.Get)
	protected.Put("/organization/:orgId", orgHandler.Update)
	protected.Delete("/organization/:orgId", orgHandler.Delete)

	protected.Get("/team", teamHandler.List)
	protected.Post("/team", teamHandler.Create)
	protected.Get("/team/:teamId", teamHandler.Get)
	protected.Put("/team/:teamId", teamHandler.Update)
	protected.Delete("/team/:teamId", teamHandler.Delete)
	protected.Get("/team/:teamId/members", teamHandler.GetMembers)
	protected.Delete("/team/:teamId/members/:userId", teamHandler.RemoveMember)
	protected.Post("/team/:teamId/leave", teamHandler.Leave)
	protected.Get("/team/:teamId/invites", inviteHandler.ListForTeam)
	protected.Delete("/team/:teamId/invites/:inviteId", inviteHandler.Cancel)

	protected.Get("/sprint/:teamId", sprintHandler.GetCurrent)
	protected.Post("/sprint/:teamId", sprintHandler.Create)
	protected.Put("/sprint/:teamId", sprintHandler.Transition)
	protected.Get("/sprint/:teamId/history", sprintHandler.History)
	protected.Get("/sprint/:teamId/history/:sprintId", sprintHandler.Get)

	protected.Get("/tickets/:teamId", ticketHandler.List)
	protected.Post("/tickets/:teamId", ticketHandler.Create)
	protected.Get("/tickets/:teamId/:ticketId", ticketHandler.Get)
	protected.Put("/tickets/:teamId/:ticketId", ticketHandler.Update)
	protected.Delete("/tickets/:teamId/:ticketId", ticketHandler.Delete)

	protected.Get("/invite", inviteHandler.ListMine)
	protected.Post("/invite/send/:teamId", inviteHandler.Send)
	protected.Post("/invite/resend/:inviteId", inviteHandler.Resend)
	protected.Delete("/invite/accept", inviteHandler.Accept)
	protected.Delete("/invite/decline", inviteHandler.Decline)

	protected.Get("/wiki/:teamId", wikiHandler.List)
	protected.Post("/wiki/:teamId", wikiHandler.Create)
	protected.Get("/wiki/:teamId/:pageId", wikiHandler.Get)
	protected.Put("/wiki/:teamId/:pageId", wikiHandler.Update)
	protected.Delete("/wiki/:teamId/:pageId", wikiHandler.Delete)

	protected.Get("/dashboard/:teamId", dashboardHandler.Get)
	protected.Get("/events/:teamId", eventsHandler.Stream)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           authmw.Instrument(app, log.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics server shutdown failed", "error", err)
	}
}
