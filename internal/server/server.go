package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/kollect-it/catalog/internal/catalog/domain"
	"github.com/kollect-it/catalog/internal/config"
	obslogger "github.com/kollect-it/catalog/internal/observability/logger"
	obsmetrics "github.com/kollect-it/catalog/internal/observability/metrics"
	"github.com/kollect-it/catalog/internal/reference"
	skudomain "github.com/kollect-it/catalog/internal/sku/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *obsmetrics.Metrics) *gin.Engine {
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	db         *gorm.DB
	log        *zap.Logger
	catalog    reference.Catalog
	metrics    *obsmetrics.Metrics
	skuSvc     skudomain.Service
	catalogSvc catalogdomain.Service
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	DB         *gorm.DB
	Log        *zap.Logger
	Catalog    reference.Catalog
	Metrics    *obsmetrics.Metrics
	SKUSvc     skudomain.Service
	CatalogSvc catalogdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		db:         p.DB,
		log:        p.Log.Named("server"),
		catalog:    p.Catalog,
		metrics:    p.Metrics,
		skuSvc:     p.SKUSvc,
		catalogSvc: p.CatalogSvc,
	}

	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/api/admin", s.APIKeyRequired())

	// -------- Products --------
	admin.GET("/products", s.ListProducts)
	admin.POST("/products/service-create", s.ServiceCreate)
	admin.GET("/products/service-create", s.ServiceStatus)
	admin.GET("/products/:sku", s.GetProduct)

	// -------- SKUs --------
	admin.POST("/skus/allocate", s.AllocateSKU)
	admin.GET("/skus/stats", s.GetSKUStats)
	admin.POST("/skus/rebuild", s.RebuildSKUCounters)
}
