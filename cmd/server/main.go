package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/takumi/banter/internal/ai"
	"github.com/takumi/banter/internal/config"
	"github.com/takumi/banter/internal/database"
	"github.com/takumi/banter/internal/metrics"
	postgresrepo "github.com/takumi/banter/internal/repository/postgres"
	"github.com/takumi/banter/internal/service"
	"github.com/takumi/banter/internal/transport/http/handlers"
	"github.com/takumi/banter/internal/transport/http/middleware"
)

func main() {
	cfg := config.Load()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	log.Println("Connected to database")

	if err := database.RunMigrations(database.DSN(cfg)); err != nil {
		log.Fatal(err)
	}
	log.Println("Migrations applied")

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	channelRepo := postgresrepo.NewChannelRepo(pool)
	messageRepo := postgresrepo.NewMessageRepo(pool)
	usageRepo := postgresrepo.NewAIUsageRepo(pool)

	// Assistant backend
	openaiClient := ai.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel)
	if !openaiClient.IsConfigured() {
		log.Println("WARN OPENAI_API_KEY not set, assistant requests will fail")
	}

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	channelService := service.NewChannelService(channelRepo, userRepo)
	messageService := service.NewMessageService(messageRepo, channelRepo, userRepo)
	assistantService := service.NewAssistantService(usageRepo, openaiClient)

	// Metrics
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	messageService.SetMetrics(collector)
	assistantService.SetMetrics(collector)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userRepo, messageService)
	channelHandler := handlers.NewChannelHandler(channelService)
	messageHandler := handlers.NewMessageHandler(messageService)
	assistantHandler := handlers.NewAssistantHandler(assistantService)

	// Middleware
	auth := middleware.Auth(cfg.JWTSecret, authService)
	limiter := middleware.NewRateLimiter(cfg.AssistantRatePerMinute, cfg.AssistantRatePerMinute)
	defer limiter.Stop()
	limited := limiter.Middleware()

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.Handle("GET /metrics", metrics.Handler(registry))
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	// Protected - Users
	mux.Handle("GET /api/v1/users", auth(http.HandlerFunc(userHandler.List)))
	mux.Handle("GET /api/v1/users/me", auth(http.HandlerFunc(userHandler.Me)))
	mux.Handle("GET /api/v1/users/me/messages", auth(http.HandlerFunc(userHandler.MyMessages)))

	// Protected - Channels
	mux.Handle("POST /api/v1/channels", auth(http.HandlerFunc(channelHandler.Create)))
	mux.Handle("GET /api/v1/channels", auth(http.HandlerFunc(channelHandler.List)))
	mux.Handle("GET /api/v1/channels/{id}", auth(http.HandlerFunc(channelHandler.Get)))
	mux.Handle("POST /api/v1/channels/{id}/members", auth(http.HandlerFunc(channelHandler.Join)))
	mux.Handle("POST /api/v1/channels/dm", auth(http.HandlerFunc(channelHandler.CreateDirectMessage)))

	// Protected - Messages
	mux.Handle("POST /api/v1/channels/{id}/messages", auth(http.HandlerFunc(messageHandler.Send)))
	mux.Handle("GET /api/v1/channels/{id}/messages", auth(http.HandlerFunc(messageHandler.List)))
	mux.Handle("PATCH /api/v1/messages/{id}", auth(http.HandlerFunc(messageHandler.Edit)))
	mux.Handle("DELETE /api/v1/messages/{id}", auth(http.HandlerFunc(messageHandler.Delete)))

	// Protected - Assistant (rate limited on top of the daily quota)
	mux.Handle("POST /api/v1/assistant/chat", auth(limited(http.HandlerFunc(assistantHandler.Chat))))
	mux.Handle("GET /api/v1/assistant/quota", auth(http.HandlerFunc(assistantHandler.Quota)))
	mux.Handle("GET /api/v1/assistant/history", auth(http.HandlerFunc(assistantHandler.History)))

	// Start server with CORS
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("Starting server on %s", addr)
	log.Fatal(http.ListenAndServe(addr, middleware.CORS(mux)))
}
