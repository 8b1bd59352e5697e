package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"mailview/auth"
	"mailview/config"
	"mailview/handlers/api"
	"mailview/log"
	"mailview/mailbox"
	"mailview/middleware"
	"mailview/storage"
	"mailview/syncer"
)

func main() {
	cfg, err := config.LoadConfig("config.toml")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := storage.OpenDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	accounts := storage.NewAccountStore(db)
	emails := storage.NewEmailStore(db)
	prefs := storage.NewPreferenceStore(db)

	google := auth.NewGoogleAuth(cfg)
	dialer := &mailbox.Dialer{
		Server: cfg.IMAP.Server,
		Port:   cfg.IMAP.Port,
	}

	sync := syncer.New(accounts, emails,
		func(email, accessToken string) (syncer.Mailbox, error) {
			return dialer.Connect(email, accessToken)
		},
		google)

	authHandler := api.NewAuthHandler(cfg, google, accounts, prefs)
	emailHandler := api.NewEmailHandler(emails, sync)
	userHandler := api.NewUserHandler(accounts, emails, prefs)

	app := fiber.New(fiber.Config{
		AppName:      "mailview",
		ErrorHandler: api.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(compress.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.FrontendURL,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	apiRoutes := app.Group("/api",
		middleware.RateLimiter(cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.WindowSeconds)*time.Second))

	authRoutes := apiRoutes.Group("/auth")
	authRoutes.Get("/google", authHandler.GoogleLogin)
	authRoutes.Get("/google/callback", authHandler.GoogleCallback)

	authenticated := middleware.Authenticate(cfg.JWT.Secret, accounts)

	authRoutes.Get("/me", authenticated, authHandler.Me)
	authRoutes.Post("/logout", authenticated, authHandler.Logout)
	authRoutes.Post("/refresh", authenticated, authHandler.RefreshToken)

	emailRoutes := apiRoutes.Group("/emails", authenticated)
	emailRoutes.Post("/sync", emailHandler.Sync)
	emailRoutes.Get("/", emailHandler.List)
	emailRoutes.Get("/search", emailHandler.Search)
	emailRoutes.Get("/folders", emailHandler.Folders)
	emailRoutes.Get("/stats", emailHandler.Stats)
	emailRoutes.Get("/:id", emailHandler.GetByID)
	emailRoutes.Get("/:id/fresh", emailHandler.Fresh)
	emailRoutes.Patch("/:id/read", emailHandler.MarkRead)
	emailRoutes.Patch("/:id/star", emailHandler.ToggleStar)

	userRoutes := apiRoutes.Group("/users", authenticated)
	userRoutes.Get("/profile", userHandler.Profile)
	userRoutes.Get("/preferences", userHandler.GetPreferences)
	userRoutes.Put("/preferences", userHandler.UpdatePreferences)
	userRoutes.Get("/stats", userHandler.Stats)
	userRoutes.Delete("/account", userHandler.DeleteAccount)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "Route not found",
		})
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		log.Info().Str("addr", addr).Msg("starting server")

		if err := app.Listen(addr); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
