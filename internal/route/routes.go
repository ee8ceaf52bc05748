package route

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"binwatch/internal/config"
	"binwatch/internal/handler"
	"binwatch/internal/logger"
	"binwatch/internal/metrics"
	"binwatch/internal/middleware"
	"binwatch/internal/service"
	"binwatch/internal/service/auth"
	"binwatch/internal/service/storage"
	"binwatch/internal/service/websocket"
)

var logRoutes = []struct{ path, file string }{
	{"/logs/info", logger.InfoFile},
	{"/logs/warning", logger.WarningFile},
	{"/logs/error", logger.ErrorFile},
}

// SetupRoutes registers API endpoints, log and auth routes, health and
// metrics, and wraps the mux with the authentication and metrics middleware.
func SetupRoutes(cfg *config.Config, logger *logger.Logger, manager *service.Manager, hub *websocket.HubService,
	uploads *storage.UploadService, db handler.Pinger, m *metrics.Metrics, gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	sessions := auth.NewSessionService(cfg.Password, cfg.SessionTTL)

	// API endpoints
	mux.HandleFunc("/api/classify", handler.ClassifyHandler(manager, cfg, logger))
	mux.HandleFunc("/api/classifications", handler.GetClassificationsHandler(manager, logger))
	mux.HandleFunc("/api/classifications/view", handler.ViewClassificationHandler(manager, logger))
	mux.HandleFunc("/api/classifications/delete", handler.DeleteClassificationHandler(manager, logger))
	mux.HandleFunc("/api/classifications/clear", handler.ClearClassificationsHandler(manager, logger))
	mux.HandleFunc("/api/classifications/stats", handler.ClassificationStatsHandler(manager, logger))
	mux.HandleFunc("/api/uploads/view", handler.ViewUploadHandler(uploads))
	mux.HandleFunc("/api/alerts", handler.AlertsWebsocketHandler(hub, logger))

	// Log endpoints
	for _, lr := range logRoutes {
		mux.HandleFunc(lr.path, handler.ShowLogsHandler(logger, lr.file))
		mux.HandleFunc(lr.path+"/clear", handler.ClearLogsHandler(logger, lr.file))
	}

	// Auth endpoints
	mux.HandleFunc("/auth/login", handler.LoginHandler(cfg, sessions, logger))
	mux.HandleFunc("/auth/logout", handler.LogoutHandler(sessions))

	// Operations
	mux.HandleFunc("/healthz", handler.HealthHandler(db, logger))
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Apply middleware
	return middleware.MetricsMiddleware(m, middleware.AuthMiddleware(sessions, mux))
}
