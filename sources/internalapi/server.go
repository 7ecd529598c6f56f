package internalapi

import (
	"fmt"
	"net/http"

	"clubify/sources/configuration"
	"clubify/sources/tracing"

	"github.com/gin-gonic/gin"
)

const internalTokenHeader = "X-Internal-Token"

// Server exposes the internal webhook surface the backend calls:
// payment reconciliation and renewal nudges. It listens on its own
// port and is never reachable by end users.
type Server struct {
	httpServer *http.Server
	config     *configuration.Config
	log        *tracing.Logger
}

func NewServer(reconciler *Reconciler, config *configuration.Config, log *tracing.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(authMiddleware(config, log))

	notifyPath := config.Webhook.NotifyPath
	if notifyPath == "" {
		notifyPath = "/internal/payments/notify"
	}

	router.POST(notifyPath, handlePaymentNotify(reconciler, log))
	router.POST("/internal/notifications/renew", handleRenewalNotify(reconciler, log))

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", config.Webhook.Host, config.Webhook.Port),
			Handler: router,
		},
		config: config,
		log:    log,
	}
}

func authMiddleware(config *configuration.Config, log *tracing.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(internalTokenHeader) != config.Webhook.InternalToken {
			log.W("Rejected webhook call with bad token", tracing.WebhookPath, c.FullPath())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func handlePaymentNotify(reconciler *Reconciler, log *tracing.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var event PaymentEvent
		if err := c.ShouldBindJSON(&event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "payment_id and status are required"})
			return
		}

		outcome, err := reconciler.HandlePaymentEvent(c.Request.Context(), event)
		if err != nil {
			log.E("Payment event processing failed",
				tracing.PaymentId, event.PaymentID,
				tracing.InnerError, err,
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}

		if outcome == OutcomeNoContext {
			c.JSON(http.StatusAccepted, gin.H{"status": "no_context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func handleRenewalNotify(reconciler *Reconciler, log *tracing.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var event RenewalEvent
		if err := c.ShouldBindJSON(&event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tg_id and subscription_id are required"})
			return
		}

		if err := reconciler.HandleRenewalEvent(c.Request.Context(), event); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
