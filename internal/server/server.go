package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/orbitcrm/orbitcrm/internal/approval"
	approvaldomain "github.com/orbitcrm/orbitcrm/internal/approval/domain"
	"github.com/orbitcrm/orbitcrm/internal/auth"
	authdomain "github.com/orbitcrm/orbitcrm/internal/auth/domain"
	"github.com/orbitcrm/orbitcrm/internal/client"
	clientdomain "github.com/orbitcrm/orbitcrm/internal/client/domain"
	"github.com/orbitcrm/orbitcrm/internal/company"
	companydomain "github.com/orbitcrm/orbitcrm/internal/company/domain"
	"github.com/orbitcrm/orbitcrm/internal/config"
	obslogger "github.com/orbitcrm/orbitcrm/internal/observability/logger"
	obsmetrics "github.com/orbitcrm/orbitcrm/internal/observability/metrics"
	"github.com/orbitcrm/orbitcrm/internal/opportunity"
	opportunitydomain "github.com/orbitcrm/orbitcrm/internal/opportunity/domain"
	"github.com/orbitcrm/orbitcrm/internal/payment"
	paymentdomain "github.com/orbitcrm/orbitcrm/internal/payment/domain"
	"github.com/orbitcrm/orbitcrm/internal/platform"
	platformdomain "github.com/orbitcrm/orbitcrm/internal/platform/domain"
	"github.com/orbitcrm/orbitcrm/internal/quote"
	quotedomain "github.com/orbitcrm/orbitcrm/internal/quote/domain"
	"github.com/orbitcrm/orbitcrm/internal/seed"
	"github.com/orbitcrm/orbitcrm/internal/tenant"
	"github.com/orbitcrm/orbitcrm/internal/tenant/routing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	auth.Module,
	company.Module,
	client.Module,
	opportunity.Module,
	quote.Module,
	approval.Module,
	payment.Module,
	tenant.Module,
	platform.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)

type EngineParams struct {
	fx.In

	Log      *zap.Logger
	Metrics  *obsmetrics.HTTPMetrics
	Registry *prometheus.Registry
	TenantMW *routing.Middleware
}

func NewEngine(p EngineParams) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(p.Log))
	r.Use(obsmetrics.GinMiddleware(p.Metrics))
	r.Use(p.TenantMW.Handler())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{})))

	return r
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	log        *zap.Logger
	db         *gorm.DB
	platformDB *gorm.DB
	genID      *snowflake.Node

	authsvc     authdomain.Service
	quoteSvc    quotedomain.Service
	approvalSvc approvaldomain.Service
	paymentSvc  paymentdomain.Service
	platformSvc platformdomain.Service

	companyRepo companydomain.Repository
	clientRepo  clientdomain.Repository
	oppRepo     opportunitydomain.Repository
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Log        *zap.Logger
	DB         *gorm.DB
	PlatformDB *gorm.DB `name:"platform"`
	GenID      *snowflake.Node

	Authsvc     authdomain.Service
	QuoteSvc    quotedomain.Service
	ApprovalSvc approvaldomain.Service
	PaymentSvc  paymentdomain.Service
	PlatformSvc platformdomain.Service

	CompanyRepo companydomain.Repository
	ClientRepo  clientdomain.Repository
	OppRepo     opportunitydomain.Repository
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("server"),
		db:          p.DB,
		platformDB:  p.PlatformDB,
		genID:       p.GenID,
		authsvc:     p.Authsvc,
		quoteSvc:    p.QuoteSvc,
		approvalSvc: p.ApprovalSvc,
		paymentSvc:  p.PaymentSvc,
		platformSvc: p.PlatformSvc,
		companyRepo: p.CompanyRepo,
		clientRepo:  p.ClientRepo,
		oppRepo:     p.OppRepo,
	}

	s.registerAuthRoutes()
	s.registerAPIRoutes()
	s.registerPlatformRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	// -------- Masters --------
	api.POST("/companies", s.RequireRole(seed.RoleAdmin), s.CreateCompany)
	api.POST("/companies/:id/branches", s.RequireRole(seed.RoleAdmin), s.CreateCompanyBranch)
	api.POST("/clients", s.CreateClient)
	api.POST("/clients/:id/branches", s.CreateClientBranch)

	// -------- Opportunities --------
	api.POST("/opportunities", s.CreateOpportunity)
	api.GET("/opportunities/:id/quotes", s.ListQuotesByOpportunity)

	// -------- Quotes --------
	api.POST("/quotes", s.CreateQuote)
	api.GET("/quotes/:id", s.GetQuote)
	api.PATCH("/quotes/:id", s.UpdateQuote)
	api.POST("/quotes/:id/versions", s.NewQuoteVersion)
	api.POST("/quotes/:id/send", s.MarkQuoteSent)

	// -------- Approval workflow --------
	api.POST("/quotes/:id/submit", s.RequestApproval)
	api.GET("/quotes/:id/approvals", s.ListQuoteApprovals)
	api.GET("/approvals/inbox", s.ApprovalInbox)
	api.POST("/approvals/:id/act", s.ActOnApproval)

	// -------- Approval rules --------
	rules := api.Group("/approval-rules", s.RequireRole(seed.RoleAdmin, seed.RoleManager))
	rules.GET("", s.ListApprovalRules)
	rules.POST("", s.CreateApprovalRule)
	rules.PATCH("/:id", s.UpdateApprovalRule)
	rules.DELETE("/:id", s.DeleteApprovalRule)

	// -------- Document handoff --------
	api.POST("/quotes/:id/proforma/request", s.RequestProforma)
	api.POST("/quotes/:id/proforma/complete", s.RequireRole(seed.RoleAdmin, seed.RoleFinanceHead), s.CompleteProforma)
	api.POST("/quotes/:id/invoice/request", s.RequestInvoice)
	api.POST("/quotes/:id/invoice/complete", s.RequireRole(seed.RoleAdmin, seed.RoleFinanceHead), s.CompleteInvoice)

	// -------- Payment collections --------
	api.GET("/quotes/:id/collections", s.ListCollections)
	api.POST("/quotes/:id/collections", s.RecordCollection)
	api.GET("/quotes/:id/collections/summary", s.CollectionSummary)
	api.POST("/collections/:id/verify", s.RequireRole(seed.RoleAdmin, seed.RoleFinanceHead), s.VerifyCollection)
}

func (s *Server) registerPlatformRoutes() {
	admin := s.engine.Group("/platform", s.PlatformAuthRequired())

	admin.GET("/tenants", s.ListTenants)
	admin.POST("/tenants", s.CreateTenant)
	admin.POST("/tenants/:id/activate", s.ActivateTenant)
	admin.POST("/tenants/:id/deactivate", s.DeactivateTenant)
}

func RunHTTP(lc fx.Lifecycle, s *Server, log *zap.Logger) {
	srv := &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server", zap.Error(err))
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
