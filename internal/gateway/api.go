package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campgen/campgen/internal/catalog"
	"github.com/campgen/campgen/internal/chat"
)

const apiPrefix = "/api"

func unmarshalParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errors.New("empty params")
	}
	return json.Unmarshal(raw, v)
}

func (s *Server) apiAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			token = c.Query("token")
		}
		if !s.authenticate(token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Next()
	}
}

func (s *Server) registerAPIRoutes(engine *gin.Engine) {
	api := engine.Group(apiPrefix, s.apiAuthMiddleware())
	api.GET("/catalog", s.ginCatalog)
	api.POST("/datasources/connect", s.ginConnectDataSource)
	api.POST("/datasources/disconnect", s.ginDisconnectDataSource)
	api.POST("/channels/add", s.ginAddChannel)
	api.POST("/channels/remove", s.ginRemoveChannel)
	api.POST("/channels/toggle", s.ginToggleChannel)
	api.POST("/campaigns/generate", s.ginGenerateCampaign)
	api.POST("/chat/send", s.ginChatSend)
	api.GET("/chat/history", s.ginChatHistory)
	api.GET("/sessions", s.ginSessions)
}

func (s *Server) ginCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"dataSourceKinds": catalog.DataSourceKinds,
		"channelKinds":    catalog.ChannelKinds,
		"dataSources":     s.Registry.DataSources(),
		"channels":        s.Registry.Channels(),
	})
}

type connectParams struct {
	Type string `json:"type"`
}

type entityIDParams struct {
	ID string `json:"id"`
}

func (s *Server) ginConnectDataSource(c *gin.Context) {
	var body connectParams
	if err := c.ShouldBindJSON(&body); err != nil || body.Type == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "type required"})
		return
	}
	kind, ok := catalog.LookupDataSourceKind(catalog.DataSourceType(body.Type))
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown data source type"})
		return
	}
	ds := catalog.NewDataSource(kind)
	s.Registry.ConnectDataSource(ds)
	c.JSON(http.StatusOK, ds)
}

func (s *Server) ginDisconnectDataSource(c *gin.Context) {
	var body entityIDParams
	if err := c.ShouldBindJSON(&body); err != nil || body.ID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "id required"})
		return
	}
	if !s.Registry.DisconnectDataSource(body.ID) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "data source not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"disconnected": body.ID})
}

func (s *Server) ginAddChannel(c *gin.Context) {
	var body connectParams
	if err := c.ShouldBindJSON(&body); err != nil || body.Type == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "type required"})
		return
	}
	kind, ok := catalog.LookupChannelKind(catalog.ChannelType(body.Type))
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown channel type"})
		return
	}
	ch := catalog.NewChannel(kind)
	s.Registry.AddChannel(ch)
	c.JSON(http.StatusOK, ch)
}

func (s *Server) ginRemoveChannel(c *gin.Context) {
	var body entityIDParams
	if err := c.ShouldBindJSON(&body); err != nil || body.ID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "id required"})
		return
	}
	if !s.Registry.RemoveChannel(body.ID) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "channel not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": body.ID})
}

func (s *Server) ginToggleChannel(c *gin.Context) {
	var body entityIDParams
	if err := c.ShouldBindJSON(&body); err != nil || body.ID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "id required"})
		return
	}
	status, ok := s.Registry.ToggleChannel(body.ID)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "channel not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": body.ID, "status": status})
}

// GenerateParams is the stateless pipeline entry. When the entity lists are
// omitted the server's connected sets are used.
type GenerateParams struct {
	Prompt      string               `json:"prompt"`
	DataSources []catalog.DataSource `json:"dataSources"`
	Channels    []catalog.Channel    `json:"channels"`
}

func (s *Server) ginGenerateCampaign(c *gin.Context) {
	var body GenerateParams
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if strings.TrimSpace(body.Prompt) == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "prompt required"})
		return
	}
	sources := body.DataSources
	if sources == nil {
		sources = s.Registry.DataSources()
	}
	channels := body.Channels
	if channels == nil {
		channels = s.Registry.Channels()
	}

	result := s.Generator.Generate(c.Request.Context(), body.Prompt, sources, channels)
	c.JSON(http.StatusOK, result)
}

type chatSendParams struct {
	SessionKey string `json:"sessionKey"`
	Text       string `json:"text"`
}

func (s *Server) ginChatSend(c *gin.Context) {
	var body chatSendParams
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if body.Text == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "text required"})
		return
	}
	key := body.SessionKey
	if key == "" {
		key = "webchat:default"
	}

	sess := s.Sessions.GetOrCreate(key)
	msgID, err := sess.Submit(c.Request.Context(), body.Text)
	if err != nil {
		if errors.Is(err, chat.ErrGenerationInFlight) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The turn contract guarantees settlement; block until then so the HTTP
	// caller gets the final assistant message. WebSocket clients see the
	// streaming placeholder in the meantime.
	sess.Wait()

	c.JSON(http.StatusOK, gin.H{
		"sessionKey": key,
		"messageId":  msgID,
		"messages":   sess.History(),
		"campaign":   sess.CurrentCampaign(),
	})
}

func (s *Server) ginChatHistory(c *gin.Context) {
	key := c.Query("sessionKey")
	if key == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "sessionKey required"})
		return
	}
	sess := s.Sessions.Get(key)
	if sess == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sessionKey": key,
		"busy":       sess.Busy(),
		"messages":   sess.History(),
		"campaign":   sess.CurrentCampaign(),
	})
}

func (s *Server) ginSessions(c *gin.Context) {
	type sessionInfo struct {
		SessionKey string `json:"sessionKey"`
		Messages   int    `json:"messages"`
		Busy       bool   `json:"busy"`
	}
	var out []sessionInfo
	for _, sess := range s.Sessions.List() {
		out = append(out, sessionInfo{
			SessionKey: sess.Key(),
			Messages:   len(sess.History()),
			Busy:       sess.Busy(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}
