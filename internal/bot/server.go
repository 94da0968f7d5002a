package bot

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foodbot/internal/logger"
	"foodbot/internal/storage"
	"foodbot/pkg"
)

// Server exposes the chat commands over HTTP so any chat-platform
// integration can drive the bot: recommend, list, save, delete.
type Server struct {
	bot    *Bot
	saved  *storage.SavedListStore
	engine *gin.Engine
}

// NewServer builds the router.
func NewServer(b *Bot, saved *storage.SavedListStore) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{bot: b, saved: saved, engine: engine}

	engine.POST("/eat", s.handleEat)
	engine.GET("/list", s.handleList)
	engine.POST("/save", s.handleSave)
	engine.DELETE("/saved", s.handleDelete)

	return s
}

// Run blocks serving HTTP on addr.
func (s *Server) Run(addr string) error {
	logger.Info().Str("addr", addr).Msg("chat surface listening")
	return s.engine.Run(addr)
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

type eatRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Text   string `json:"text" binding:"required"`
}

func (s *Server) handleEat(c *gin.Context) {
	var req eatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply := s.bot.Recommend(c.Request.Context(), req.UserID, req.Text)
	c.JSON(http.StatusOK, reply)
}

func (s *Server) handleList(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	entries := s.saved.List(userID)
	c.JSON(http.StatusOK, gin.H{
		"message": renderSavedList(entries),
		"entries": entries,
	})
}

type saveRequest struct {
	UserID string         `json:"user_id" binding:"required"`
	Entry  pkg.SavedEntry `json:"entry" binding:"required"`
}

func (s *Server) handleSave(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	added, err := s.saved.Add(req.UserID, req.Entry)
	if err != nil {
		logger.Error().Err(err).Str("user_id", req.UserID).Msg("save list add failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist saved list"})
		return
	}

	message := addedMessage(req.Entry.Name)
	if !added {
		message = alreadySavedMessage(req.Entry.Name)
	}
	c.JSON(http.StatusOK, gin.H{"added": added, "message": message})
}

type deleteRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Name   string `json:"name" binding:"required"`
}

func (s *Server) handleDelete(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(s.saved.List(req.UserID)) == 0 {
		c.JSON(http.StatusOK, gin.H{"removed": false, "message": emptyDeleteMessage})
		return
	}

	entry, removed, err := s.saved.Remove(req.UserID, req.Name)
	if err != nil {
		logger.Error().Err(err).Str("user_id", req.UserID).Msg("save list remove failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist saved list"})
		return
	}

	message := notFoundMessage(req.Name)
	if removed {
		message = removedMessage(entry.Name)
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed, "message": message})
}
