package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/callsight/server/internal/websocket"
	"github.com/callsight/server/usecase"
)

const serviceVersion = "2.0.0"

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, hub *websocket.Hub, service *usecase.AnalysisService, logger *zap.Logger) {
	// Health check
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthResponse{
			Status:      "online",
			Service:     "callsight-server",
			Version:     serviceVersion,
			WebSocket:   "/ws/{client_id}",
			Connections: hub.ClientCount(),
		})
	})

	e.POST("/api/analyze", func(c echo.Context) error {
		return analyzeConversation(c, service, logger)
	})

	e.GET("/api/stats", func(c echo.Context) error {
		return c.JSON(http.StatusOK, StatsResponse{
			ActiveConnections: hub.ClientCount(),
			ActiveClients:     hub.ActiveClients(),
			Timestamp:         time.Now(),
		})
	})

	// Admin reporting views
	admin := e.Group("/api/admin")
	admin.GET("/conversations", func(c echo.Context) error {
		return listConversations(c, service, logger)
	})
	admin.GET("/database-stats", func(c echo.Context) error {
		return databaseStats(c, service, logger)
	})

	// WebSocket endpoints: legacy single-role clients plus the role-scoped
	// customer/agent pair sharing one transcript
	e.GET("/ws/:clientID", func(c echo.Context) error {
		return websocket.HandleWebSocket(hub, c, websocket.RoleUnscoped, service, logger)
	})
	e.GET("/ws/customer/:clientID", func(c echo.Context) error {
		return websocket.HandleWebSocket(hub, c, websocket.RoleCustomer, service, logger)
	})
	e.GET("/ws/agent/:clientID", func(c echo.Context) error {
		return websocket.HandleWebSocket(hub, c, websocket.RoleAgent, service, logger)
	})
}

// analyzeConversation is the one-shot REST analysis endpoint
func analyzeConversation(c echo.Context, service *usecase.AnalysisService, logger *zap.Logger) error {
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind analyze request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	result, err := service.Analyze(c.Request().Context(), req.Text, req.ConversationID)
	if err != nil {
		if errors.Is(err, usecase.ErrEmptyConversation) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "empty_conversation",
				Message: "Konuşma metni boş olamaz",
			})
		}

		logger.Error("One-shot analysis failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "analysis_failed",
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, result)
}

func listConversations(c echo.Context, service *usecase.AnalysisService, logger *zap.Logger) error {
	limit := queryInt(c, "limit", 50)
	skip := queryInt(c, "skip", 0)
	session := c.QueryParam("session")

	records, err := service.RecentConversations(c.Request().Context(), limit, skip, session)
	if err != nil {
		logger.Error("Failed to list conversations", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to query conversations",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"conversations": records,
		"limit":         limit,
		"skip":          skip,
	})
}

func databaseStats(c echo.Context, service *usecase.AnalysisService, logger *zap.Logger) error {
	stats, err := service.DatabaseStats(c.Request().Context())
	if err != nil {
		logger.Error("Failed to aggregate database stats", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to aggregate database stats",
		})
	}

	return c.JSON(http.StatusOK, stats)
}

func queryInt(c echo.Context, name string, fallback int64) int64 {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
