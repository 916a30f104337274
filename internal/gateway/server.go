package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/campgen/campgen/internal/catalog"
	"github.com/campgen/campgen/internal/chat"
	"github.com/campgen/campgen/internal/config"
	"github.com/campgen/campgen/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  16 * 1024,
	WriteBufferSize: 16 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server is the campgen gateway server.
type Server struct {
	Config    *config.Config
	Registry  *catalog.Registry
	Sessions  *chat.Store
	Generator *pipeline.Generator
	Conns     *ConnManager
	httpSrv   *http.Server
	startAt   time.Time
}

func NewServer(cfg *config.Config, registry *catalog.Registry, gen *pipeline.Generator) *Server {
	s := &Server{
		Config:    cfg,
		Registry:  registry,
		Generator: gen,
		Conns:     NewConnManager(),
		startAt:   time.Now(),
	}
	s.Sessions = chat.NewStore(gen, registry, func(e chat.Event) {
		s.Conns.Broadcast(e.SessionKey, e.Type, e)
	})
	return s
}

// Start begins listening for connections and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	engine := s.buildEngine()

	addr := fmt.Sprintf(":%d", s.Config.Server.Port)
	s.httpSrv = &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	slog.Info("campgen gateway starting", "port", s.Config.Server.Port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.httpSrv.Shutdown(shutdownCtx)
	}()

	if err := s.httpSrv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) buildEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/health", s.ginHealth)
	engine.GET("/ws", s.ginWebSocket)
	s.registerAPIRoutes(engine)
	return engine
}

func (s *Server) ginHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"uptime":      time.Since(s.startAt).String(),
		"clients":     s.Conns.ClientCount(),
		"dataSources": len(s.Registry.DataSources()),
		"channels":    len(s.Registry.Channels()),
	})
}

func (s *Server) ginWebSocket(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer ws.Close()

	connID := fmt.Sprintf("conn_%d", time.Now().UnixNano())
	conn := &Conn{
		ID:          connID,
		WS:          ws,
		ConnectedAt: time.Now(),
	}

	// First message must be a connect request
	frame, err := ReadFrame(ws)
	if err != nil {
		slog.Warn("failed to read connect frame", "error", err)
		return
	}
	if frame.Method != "connect" {
		conn.Send(ResErr(frame.ID, "HANDSHAKE_REQUIRED", "first message must be a connect request"))
		return
	}

	var connectParams ConnectParams
	if err := unmarshalParams(frame.Params, &connectParams); err != nil {
		conn.Send(ResErr(frame.ID, "INVALID_PARAMS", "invalid connect params"))
		return
	}
	if !s.authenticate(connectParams.Token) {
		conn.Send(ResErr(frame.ID, "AUTH_FAILED", "invalid token"))
		return
	}

	conn.SessionKey = connectParams.SessionKey
	s.Conns.Add(conn)
	defer s.Conns.Remove(connID)

	slog.Info("connection established", "id", connID, "session", conn.SessionKey)

	conn.Send(ResOK(frame.ID, map[string]any{
		"connId":   connID,
		"protocol": 1,
	}))

	// Event push is one-way; the read loop only answers pings and detects close.
	for {
		frame, err := ReadFrame(ws)
		if err != nil {
			slog.Debug("connection closed", "id", connID, "error", err)
			return
		}
		if frame.Type != "req" {
			continue
		}
		if frame.Method == "ping" {
			conn.Send(ResOK(frame.ID, map[string]any{"pong": true}))
			continue
		}
		conn.Send(ResErr(frame.ID, "UNKNOWN_METHOD", "use HTTP /api for chat and catalog operations"))
	}
}

func (s *Server) authenticate(token string) bool {
	expected := s.Config.Server.Auth.Token
	if expected == "" {
		return true // no auth configured
	}
	return token == expected
}
