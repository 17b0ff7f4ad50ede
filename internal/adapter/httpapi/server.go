package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github-projects-api/internal/config"
	"github-projects-api/internal/port"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server HTTP 服务
type Server struct {
	cfg    *config.Config
	logger *log.Logger
	server *http.Server
}

// NewServer 创建 HTTP 服务，路由在这里一次性装配好
func NewServer(cfg *config.Config, catalog port.ProjectCatalog, logger *log.Logger) *Server {
	logger = logger.WithPrefix("http")

	s := &Server{cfg: cfg, logger: logger}
	s.server = &http.Server{
		Addr:        cfg.Addr(),
		Handler:     NewRouter(cfg, catalog, logger),
		ReadTimeout: 15 * time.Second,
		// 冷启动时第一次请求要等完整的增强流程，写超时放宽
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// NewRouter 创建路由，测试里直接用它配合 httptest
func NewRouter(cfg *config.Config, catalog port.ProjectCatalog, logger *log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	NewHandler(catalog, cfg.GitHub.Account, logger).RegisterRoutes(r)
	return r
}

// Start 阻塞直到服务关闭
func (s *Server) Start() error {
	s.logger.Infof("🌐 API 已启动: %s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop 优雅关闭
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("🛑 正在关闭 HTTP 服务")
	return s.server.Shutdown(ctx)
}

func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("请求",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"elapsed", time.Since(start).Round(time.Millisecond),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
