package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/graph-gophers/graphql-go"

	"restaurant-orders/internal/config"
	"restaurant-orders/internal/logger"
)

type Handler struct {
	schema   *graphql.Schema
	cfg      *config.Config
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewHandler(schema *graphql.Schema, cfg *config.Config, log *logger.Logger) *Handler {
	h := &Handler{schema: schema, cfg: cfg, log: log}
	h.upgrader = websocket.Upgrader{
		Subprotocols: []string{protocolTransportWS, protocolLegacyWS},
		CheckOrigin:  h.allowedOrigin,
	}
	return h
}

// NewRouter builds the gin engine with the middleware chain and routes.
func NewRouter(h *Handler) *gin.Engine {
	if !h.cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(
		Recovery(h.log),
		RequestLogger(h.log),
		SecurityHeaders(),
		CORS(h.cfg.App.CORSOrigin),
		RateLimit(h.cfg.App.RateLimit, h.cfg.App.RateBurst),
	)
	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)

	api := r.Group(h.cfg.App.APIPrefix)
	api.POST("/graphql", h.GraphQL)
	api.GET("/graphql", h.GraphQLGet)

	r.Static(h.cfg.PublicPrefix(), h.cfg.Uploads.Path)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GraphQL(c *gin.Context) {
	var (
		req     GraphQLRequest
		cleanup = func() {}
	)
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		parsed, done, err := h.parseMultipart(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorBody(err.Error()))
			return
		}
		req, cleanup = parsed, done
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	defer cleanup()

	resp := h.schema.Exec(c.Request.Context(), req.Query, req.OperationName, req.Variables)
	c.JSON(http.StatusOK, resp)
}

// GraphQLGet upgrades subscription clients and otherwise runs the query
// from the URL.
func (h *Handler) GraphQLGet(c *gin.Context) {
	if websocket.IsWebSocketUpgrade(c.Request) {
		h.serveWebSocket(c)
		return
	}

	var req GraphQLRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if raw := c.Query("variables"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
			c.JSON(http.StatusBadRequest, errorBody("variables must be a JSON object"))
			return
		}
	}

	resp := h.schema.Exec(c.Request.Context(), req.Query, req.OperationName, req.Variables)
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) allowedOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range h.cfg.App.CORSOrigin {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	h.log.LogSecurity("WS_ORIGIN_REJECTED", origin)
	return false
}
