package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"

	"fertidesk/internal/live"
	"fertidesk/internal/monitoring"
	"fertidesk/internal/orders"
)

func init() {
	// Money fields render as JSON numbers, matching what the status boards
	// already parse.
	decimal.MarshalJSONWithoutQuotes = true
}

// Server hosts the order-processing API: the lifecycle engine endpoints plus
// the thin customer and inventory pass-through reads/writes.
type Server struct {
	Router *gin.Engine

	db      *gorm.DB
	engine  *orders.Service
	hub     *live.Hub
	metrics *monitoring.Metrics
	log     *slog.Logger
}

// NewServer wires the router. All collaborators are passed in explicitly; the
// server holds no global state.
func NewServer(db *gorm.DB, engine *orders.Service, hub *live.Hub, metrics *monitoring.Metrics, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		Router:  router,
		db:      db,
		engine:  engine,
		hub:     hub,
		metrics: metrics,
		log:     log,
	}

	router.Use(RequestID(), RequestLogger(log))
	if metrics != nil {
		router.Use(RequestMetrics(metrics))
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.Router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.Router.Group("/api")
	{
		api.POST("/orders", s.CreateOrder)
		api.GET("/orders", s.GetOrders)
		api.PUT("/orders", s.UpdateOrder)

		api.GET("/customers", s.GetCustomers)
		api.POST("/customers", s.UpsertCustomer)

		api.GET("/inventory", s.GetInventory)
		api.PUT("/inventory", s.UpdateStock)
	}

	if s.hub != nil {
		s.Router.GET("/ws", s.hub.ServeWS)
	}
}

// errorResponse is the JSON error envelope used by every endpoint.
func errorResponse(c *gin.Context, status int, message string, err error) {
	body := gin.H{"message": message}
	if err != nil {
		body["error"] = err.Error()
	}
	c.JSON(status, body)
}
