package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"storeadmin/internal/api/handlers"
	"storeadmin/internal/api/middleware"
	"storeadmin/internal/chatwoot"
	"storeadmin/internal/config"
	"storeadmin/internal/database"
	"storeadmin/internal/kvstore"
	"storeadmin/internal/logger"
	"storeadmin/internal/registry"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	db     *database.Database
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database, reg *registry.Registry) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	store := kvstore.NewGormStore(db.DB)
	inbox := chatwoot.NewInbox()

	// Initialize handlers
	serverHandler := handlers.NewServerHandler(reg, logger)
	storeHandler := handlers.NewStoreHandler(reg, logger)
	erpnextHandler := handlers.NewERPNextHandler(store, logger)
	chatwootHandler := handlers.NewChatwootHandler(inbox, logger)

	// Routes
	v1 := router.Group("/api/v1")
	{
		// WooCommerce server profiles
		servers := v1.Group("/servers")
		{
			servers.GET("", serverHandler.List)
			servers.POST("", serverHandler.Create)
			servers.PUT("/:id", serverHandler.Update)
			servers.DELETE("/:id", serverHandler.Delete)
			servers.POST("/:id/activate", serverHandler.Activate)
			servers.POST("/:id/check", serverHandler.Check)
			servers.POST("/check", serverHandler.CheckAll)
		}

		// Store views
		v1.GET("/dashboard", storeHandler.Dashboard)
		v1.GET("/users", storeHandler.SearchUsers)
		v1.GET("/users/:id", storeHandler.GetUser)
		v1.GET("/products", storeHandler.ListProducts)
		v1.GET("/orders", storeHandler.ListOrders)

		// ERPNext
		erp := v1.Group("/erpnext")
		{
			erp.GET("/settings", erpnextHandler.GetSettings)
			erp.PUT("/settings", erpnextHandler.UpdateSettings)
			erp.POST("/test", erpnextHandler.Test)
			erp.GET("/clients", erpnextHandler.ListClients)
			erp.GET("/clients/:id", erpnextHandler.GetClient)
			erp.GET("/clients/:id/orders", erpnextHandler.ListClientOrders)
			erp.GET("/clients/:id/comments", erpnextHandler.ListClientComments)
		}

		// Chatwoot debug surface
		cw := v1.Group("/chatwoot")
		{
			cw.POST("/events", chatwootHandler.PostEvent)
			cw.GET("/info", chatwootHandler.GetInfo)
		}
	}

	return &Server{
		config: cfg,
		logger: logger,
		db:     db,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// Router returns the Gin router for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}
