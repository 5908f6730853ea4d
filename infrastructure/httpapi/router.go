package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"shop-relay/auth"
	"shop-relay/domain"
	"shop-relay/repositories"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	PathWebsocket = "/ws"
	PathHealth    = "/healthz"
	PathMetrics   = "/metrics"
	PathChatUsers = "/api/chat/users"
	PathSearch    = "/api/chat/search"
)

// ChatUsers lists the customers who talked with the admin.
type ChatUsers interface {
	ChatUsers(ctx context.Context) ([]string, error)
}

type TokenValidator interface {
	ValidateToken(token string) (*auth.CustomClaims, error)
}

// Handler serves the REST side of the relay.
type Handler struct {
	log   *slog.Logger
	chat  ChatUsers
	index repositories.IMessageIndex
}

func NewHandler(log *slog.Logger, chat ChatUsers, index repositories.IMessageIndex) *Handler {
	return &Handler{log: log, chat: chat, index: index}
}

// NewRouter builds the HTTP router. websocket serves the real-time protocol on PathWebsocket.
func NewRouter(handler *Handler, websocket http.Handler, tokens TokenValidator, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET(PathHealth, handler.Health)
	r.GET(PathMetrics, gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	r.GET(PathWebsocket, gin.WrapH(websocket))

	chat := r.Group("/api/chat", AdminOnly(tokens))
	{
		chat.GET("/users", handler.Users)
		chat.GET("/search", handler.Search)
	}
	return r
}

// AdminOnly rejects requests that do not carry a valid admin token.
func AdminOnly(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := tokens.ValidateToken(auth.TokenFromRequest(c.Request))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": err.Error()})
			return
		}
		if claims.Identity() != domain.AdminIdentity {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "admin only"})
			return
		}
		c.Next()
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "shop-relay",
		"time":    time.Now().Unix(),
	})
}

// Users responds with every customer having a conversation with the admin.
func (h *Handler) Users(c *gin.Context) {
	users, err := h.chat.ChatUsers(c.Request.Context())
	if err != nil {
		h.log.Error("Chat users not listed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	if users == nil {
		users = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

// Search runs a full-text query, optionally inside one conversation (userId).
func (h *Handler) Search(c *gin.Context) {
	text := c.Query("q")
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "q is required"})
		return
	}
	limit := repositories.DefaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	result, err := h.index.Search(c.Request.Context(), repositories.SearchQuery{
		Text:         text,
		Conversation: c.Query("userId"),
		Limit:        limit,
	})
	if err != nil {
		h.log.Error("Chat search failed", "query", text, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	messages := result.Messages
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "messages": messages, "total": result.Total})
}
