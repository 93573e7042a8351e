package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strangerchat/backend/internal/chathub"
	"strangerchat/backend/internal/config"
	"strangerchat/backend/internal/storage"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Handler містить посилання на ChatHub
type Handler struct {
	Hub     *chathub.ManagerService
	Storage storage.Storage

	cfg      *config.Config
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *chathub.ManagerService, s storage.Storage, cfg *config.Config, logger *slog.Logger) *Handler {
	h := &Handler{
		Hub:     hub,
		Storage: s,
		cfg:     cfg,
		logger:  logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// Routes registers the relay endpoints on r.
func (h *Handler) Routes(r gin.IRouter) {
	r.GET("/ws", h.ServeWebSocket)
	r.GET("/health", h.Health)
	r.GET("/stats", h.Stats)
}

// NewRouter builds the gin engine with the relay routes.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.cors)
	h.Routes(r)
	return r
}

// checkOrigin allows any origin unless FRONTEND_URL is set.
func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.cfg.FrontendURL == "" {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return sameOrigin(origin, h.cfg.FrontendURL)
}

func (h *Handler) cors(c *gin.Context) {
	allowed := h.cfg.FrontendURL
	if allowed == "" {
		allowed = "*"
	}
	c.Header("Access-Control-Allow-Origin", allowed)
	c.Header("Access-Control-Allow-Methods", "GET, POST")
	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}

func sameOrigin(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return strings.EqualFold(ua.Scheme, ub.Scheme) && strings.EqualFold(ua.Host, ub.Host)
}
