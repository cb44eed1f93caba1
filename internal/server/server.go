package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/scorm-packager/internal/config"
	"github.com/jonathan/scorm-packager/internal/db"
	"github.com/jonathan/scorm-packager/internal/llm"
	"github.com/jonathan/scorm-packager/internal/pipeline"
	"github.com/jonathan/scorm-packager/internal/server/middleware"
	"github.com/jonathan/scorm-packager/internal/server/ratelimit"
	"github.com/jonathan/scorm-packager/internal/types"
)

// RunStore is the run history the server reads and the pipeline writes. *db.DB implements it.
type RunStore interface {
	pipeline.Store
	GetRun(ctx context.Context, runID uuid.UUID) (*db.Run, error)
	ListRuns(ctx context.Context, filters db.RunFilters) ([]db.Run, error)
	ListWarnings(ctx context.Context, runID uuid.UUID) ([]string, error)
	ListRunSteps(ctx context.Context, runID uuid.UUID) ([]db.RunStep, error)
	GetPackage(ctx context.Context, runID uuid.UUID) (*db.PackageRecord, error)
}

// ScenarioDrafter drafts scenarios from a decoded presentation.
type ScenarioDrafter interface {
	Generate(ctx context.Context, presentation *types.Presentation, count int) ([]types.ScenarioItem, error)
}

// Server represents the HTTP server
type Server struct {
	cfg         Config
	httpServer  *http.Server
	handler     http.Handler
	store       RunStore
	tokens      *DownloadTokenService
	drafter     ScenarioDrafter
	rateLimiter *ratelimit.Limiter
	closers     []func()
}

// Config holds server configuration
type Config struct {
	Port                 int
	DatabaseURL          string
	APIKey               string
	TemplatePath         string
	DefaultVersion       string
	DefaultCompletion    string
	MaxUploadBytes       int64
	MaxFallbackScenarios int
	MediaWorkers         int
}

// ConfigFrom builds server configuration from the shared application config.
func ConfigFrom(c config.Config) Config {
	return Config{
		Port:                 c.Port,
		DatabaseURL:          c.DatabaseURL,
		APIKey:               c.APIKey,
		TemplatePath:         c.Template,
		DefaultVersion:       c.Version,
		DefaultCompletion:    c.Completion,
		MaxUploadBytes:       c.MaxUploadBytes,
		MaxFallbackScenarios: c.MaxFallbackScenarios,
		MediaWorkers:         c.MediaWorkers,
	}
}

// dependencies are the optional collaborators; nil disables the features that need them
type dependencies struct {
	store   RunStore
	tokens  *DownloadTokenService
	drafter ScenarioDrafter
	limits  *ratelimit.Config
}

// New creates a server. The database, download tokens and scenario drafting are each
// enabled only when configured.
func New(cfg Config) (*Server, error) {
	ctx := context.Background()
	deps := dependencies{limits: ratelimit.LoadConfig()}
	var closers []func()

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to prepare database schema: %w", err)
		}
		deps.store = database
		closers = append(closers, database.Close)
	} else {
		log.Println("[SERVER] DATABASE_URL not set; run history is disabled")
	}

	if os.Getenv("DOWNLOAD_TOKEN_SECRET") != "" {
		tokenConfig, err := config.NewDownloadTokenConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create download token config: %w", err)
		}
		deps.tokens = NewDownloadTokenService(tokenConfig)
	}

	if cfg.APIKey != "" {
		client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		deps.drafter = llm.NewScenarioGenerator(client, cfg.MaxFallbackScenarios)
		closers = append(closers, func() {
			if err := client.Close(); err != nil {
				log.Printf("[SERVER] Warning: failed to close LLM client: %v", err)
			}
		})
	}

	s := newServer(cfg, deps)
	s.closers = closers
	return s, nil
}

func newServer(cfg Config, deps dependencies) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = config.DefaultMaxUploadBytes
	}

	s := &Server{
		cfg:         cfg,
		store:       deps.store,
		tokens:      deps.tokens,
		drafter:     deps.drafter,
		rateLimiter: ratelimit.NewLimiter(deps.limits),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /convert/presentation", s.handleConvertPresentation)
	mux.HandleFunc("POST /convert/presentation/stream", s.handleConvertPresentationStream)
	mux.HandleFunc("POST /convert/scenarios", s.handleConvertScenarios)
	mux.HandleFunc("POST /extract", s.handleExtract)
	mux.HandleFunc("POST /generate-scenarios", s.handleGenerateScenarios)

	// Run history
	mux.HandleFunc("GET /runs", s.handleListRuns)
	mux.HandleFunc("GET /runs/{id}", s.handleGetRun)
	var download http.Handler = http.HandlerFunc(s.handleRunPackage)
	if s.tokens != nil {
		download = middleware.RequireRunToken(s.tokens.AsTokenValidator(), "id")(download)
	}
	mux.Handle("GET /runs/{id}/package", download)

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 300 * time.Second, // LLM drafting and large decks
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the fully wrapped request handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.Close()
	log.Println("Server stopped")
	return nil
}

// Close releases the rate limiter, database pool and LLM client
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "X-Run-ID, X-Download-Token, X-Warning-Count, Content-Disposition")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth reports which optional features are enabled
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"run_history":     s.store != nil,
		"download_tokens": s.tokens != nil,
		"generation":      s.drafter != nil,
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status; server-side failures are logged and not echoed.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.errorResponse(w, HTTPStatus(err), publicMessage(err))
}

// publicMessage hides the details of unexpected failures from clients and logs them instead
func publicMessage(err error) string {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		log.Printf("[SERVER] Error: %v", err)
		return "internal server error"
	}
	return err.Error()
}

// extractClientID uses the IP from RemoteAddr.
// X-Forwarded-For is ignored since no trusted proxy list is configured.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
