package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/callsight/server/adapters/llm"
	"github.com/callsight/server/adapters/mongo"
	"github.com/callsight/server/domain/repositories"
	"github.com/callsight/server/internal/api"
	"github.com/callsight/server/internal/websocket"
	"github.com/callsight/server/usecase"
)

func main() {
	godotenv.Load()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize the inference collaborator
	analyzer := newAnalyzer(logger)

	// Persistence is optional: without a reachable MongoDB the engine still
	// analyzes, it just stops recording agent-side results.
	conversations := newConversationRepository(logger)

	service := usecase.NewAnalysisService(analyzer, conversations, logger)

	// Initialize WebSocket hub
	hub := websocket.NewHub(logger)
	go hub.Run()

	// Initialize API routes
	api.InitRoutes(e, hub, service, logger)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("port", port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// newAnalyzer selects the inference backend from ANALYSIS_PROVIDER:
// "openai" (default, any OpenAI-compatible endpoint), "gemini", or "mock"
func newAnalyzer(logger *zap.Logger) repositories.ConversationAnalyzer {
	switch os.Getenv("ANALYSIS_PROVIDER") {
	case "gemini":
		analyzer, err := llm.NewGeminiAnalyzer(logger)
		if err != nil {
			logger.Fatal("Failed to initialize Gemini analyzer", zap.Error(err))
		}
		return analyzer

	case "mock":
		logger.Warn("Using mock analyzer; set ANALYSIS_PROVIDER for real inference")
		return llm.NewMockAnalyzer()

	default:
		analyzer, err := llm.NewOpenAIAnalyzer(llm.NewOpenAIConfigFromEnv(), logger)
		if err != nil {
			logger.Fatal("Failed to initialize analyzer", zap.Error(err))
		}
		return analyzer
	}
}

func newConversationRepository(logger *zap.Logger) repositories.ConversationRepository {
	client, err := mongo.NewClient(logger)
	if err != nil {
		logger.Warn("MongoDB unavailable, persistence disabled", zap.Error(err))
		return nil
	}
	return mongo.NewConversationRepository(client.Database)
}
