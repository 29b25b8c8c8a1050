package server

import (
	"net/http"
	"time"

	"telephone-draw/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type Server struct {
	registry *RoomRegistry
	ws       *wsHub
	cfg      config.Config
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func New(cfg config.Config, logger zerolog.Logger) *Server {
	return newServer(cfg, logger)
}

func newServer(cfg config.Config, logger zerolog.Logger, opts ...RegistryOption) *Server {
	registerValidators()
	hub := newWSHub(logger)
	defaults := Settings{Rounds: cfg.DefaultRounds, DrawTimeSec: cfg.DrawDurationSeconds}
	opts = append([]RegistryOption{WithDefaultSettings(defaults)}, opts...)
	return &Server{
		registry: NewRoomRegistry(hub, logger, opts...),
		ws:       hub,
		cfg:      cfg,
		log:      logger,
		upgrader: newUpgrader(),
	}
}

func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	router.GET("/", s.handleHome)
	router.GET("/healthz", s.handleHealth)
	router.GET("/api/rooms", s.handleListRooms)
	router.GET("/api/rooms/:roomID", s.handleGetRoom)
	router.GET("/ws", s.handleWebsocket)
	return router
}

// Close stops every room timer and drops open websocket connections.
func (s *Server) Close() {
	s.registry.Close()
	s.ws.CloseAll()
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}
