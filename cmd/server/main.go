package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"uhe-console/internal/api"
	"uhe-console/internal/backend"
	"uhe-console/internal/config"
	"uhe-console/internal/domain"
	"uhe-console/internal/middleware"
	"uhe-console/internal/service/catalog"
	"uhe-console/internal/service/governance"
	"uhe-console/internal/service/openflow"
	"uhe-console/internal/service/wizard"
	"uhe-console/internal/ui"
)

func main() {
	// Load .env file (if present)
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	// Backend client for the engine API
	client := backend.New(cfg.APIBaseURL, cfg.RequestTimeout, logger)

	// Services
	wizardSvc := wizard.NewService(client, logger)
	catalogSvc := catalog.NewService(client, logger)
	governanceSvc := governance.NewService(client, logger)
	openflowSvc := openflow.NewService(client, logger)

	// When a deployment stream finishes, fold the outcome back into the
	// catalog so the models page reflects it before the backend catches up.
	wizardSvc.OnComplete(func(ev *domain.CompleteEvent) {
		catalogSvc.MarkDeployed(ev.Successful)
	})

	apiHandler := api.NewHandler(wizardSvc, catalogSvc, governanceSvc, openflowSvc, logger)
	uiHandler := ui.NewHandler(wizardSvc, catalogSvc, governanceSvc, openflowSvc, cfg.IsProduction())

	// Setup Chi router
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	r.Mount("/v1", apiHandler.Routes())
	r.Route("/ui", func(r chi.Router) {
		ui.MountRoutes(r, uiHandler)
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui", http.StatusSeeOther)
	})

	// Start server
	log.Printf("Console listening on %s (engine backend %s)", cfg.ListenAddr, cfg.APIBaseURL)
	if err := http.ListenAndServe(cfg.ListenAddr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
