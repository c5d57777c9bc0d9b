package server

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/quoteforge/quoteforge/internal/actorcontext"
	"github.com/quoteforge/quoteforge/internal/config"
	"github.com/quoteforge/quoteforge/internal/confighistory"
	historydomain "github.com/quoteforge/quoteforge/internal/confighistory/domain"
	"github.com/quoteforge/quoteforge/internal/industrytemplate"
	industrytemplatedomain "github.com/quoteforge/quoteforge/internal/industrytemplate/domain"
	"github.com/quoteforge/quoteforge/internal/observability/metrics"
	"github.com/quoteforge/quoteforge/internal/pricingconfig"
	pricingconfigdomain "github.com/quoteforge/quoteforge/internal/pricingconfig/domain"
	"github.com/quoteforge/quoteforge/internal/requestoverride"
	requestoverridedomain "github.com/quoteforge/quoteforge/internal/requestoverride/domain"
	"github.com/quoteforge/quoteforge/internal/resolution"
	resolutiondomain "github.com/quoteforge/quoteforge/internal/resolution/domain"
	"github.com/quoteforge/quoteforge/internal/userdefault"
	userdefaultdomain "github.com/quoteforge/quoteforge/internal/userdefault/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	metrics.Module,
	fx.Provide(registerGin),
	confighistory.Module,
	pricingconfig.Module,
	userdefault.Module,
	requestoverride.Module,
	industrytemplate.Module,
	resolution.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, registry *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(actorMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}

func registerGin(log *zap.Logger, registry *prometheus.Registry) *gin.Engine {
	return NewEngine(log, registry)
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// actorMiddleware lifts the caller identity header into the context so
// every audit entry below records who acted.
func actorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor := strings.TrimSpace(c.GetHeader("X-Actor")); actor != "" {
			c.Request = c.Request.WithContext(actorcontext.WithActor(c.Request.Context(), actor))
		}
		c.Next()
	}
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    net.JoinHostPort("", cfg.HTTPPort),
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
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
	engine *gin.Engine

	configSvc      pricingconfigdomain.Service
	resolutionSvc  resolutiondomain.Service
	userDefaultSvc userdefaultdomain.Service
	overrideSvc    requestoverridedomain.Service
	templateSvc    industrytemplatedomain.Service
	historySvc     historydomain.Service
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	ConfigSvc      pricingconfigdomain.Service
	ResolutionSvc  resolutiondomain.Service
	UserDefaultSvc userdefaultdomain.Service
	OverrideSvc    requestoverridedomain.Service
	TemplateSvc    industrytemplatedomain.Service
	HistorySvc     historydomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		configSvc:      p.ConfigSvc,
		resolutionSvc:  p.ResolutionSvc,
		userDefaultSvc: p.UserDefaultSvc,
		overrideSvc:    p.OverrideSvc,
		templateSvc:    p.TemplateSvc,
		historySvc:     p.HistorySvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	requests := v1.Group("/requests/:request_id")
	requests.GET("/pricing-configuration", s.GetPricingConfiguration)
	requests.PUT("/pricing-configuration", s.UpsertPricingConfiguration)
	requests.POST("/pricing-configuration/replace", s.ReplacePricingConfiguration)
	requests.POST("/pricing-configuration/archive", s.ArchivePricingConfiguration)
	requests.GET("/effective-configuration", s.GetEffectiveConfiguration)
	requests.GET("/configuration-override", s.GetConfigurationOverride)
	requests.PUT("/configuration-override", s.SetConfigurationOverride)
	requests.DELETE("/configuration-override", s.ClearConfigurationOverride)

	users := v1.Group("/users/:user_id")
	users.GET("/default-configuration", s.GetUserDefaultConfiguration)
	users.PUT("/default-configuration", s.UpdateUserDefaultConfiguration)

	v1.POST("/pricing/breakdown", s.ComputeBreakdown)
	v1.GET("/industry-templates", s.ListIndustryTemplates)
	v1.GET("/configuration-history", s.ListConfigurationHistory)
}
