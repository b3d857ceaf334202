package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"docvoice/internal/models"
	"docvoice/internal/storage"
	"docvoice/internal/voice"

	"github.com/gin-gonic/gin"
)

// Dispatcher runs voice commands.
type Dispatcher interface {
	Dispatch(ctx context.Context, utterance string) voice.Result
}

type Handler struct {
	Service    *DocsService
	Dispatcher Dispatcher
	Logger     *slog.Logger
}

type SearchRequest struct {
	Query    string `form:"q"`
	Language string `form:"lang"`
}

type CommandRequest struct {
	Command string `json:"command" binding:"required"`
}

type AudioRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Register mounts the JSON API on r.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/voice-command", h.HandleVoiceCommand)
	r.POST("/audio", h.HandleAudio)
	r.GET("/search", h.HandleSearch)
	r.GET("/sections/:id", h.HandleSection)
	r.GET("/pages", h.HandlePages)
	r.GET("/pages/:id", h.HandlePage)
	r.GET("/languages", h.HandleLanguages)
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func language(lang string) string {
	if lang == "" {
		return models.BaseLanguage
	}
	return lang
}

// fail writes err with the status its kind maps to.
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrUnsupportedLanguage):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		h.logger().Error("request failed",
			slog.String("path", c.FullPath()), slog.String("request_id", RequestID(c)), slog.Any("error", err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) HandleVoiceCommand(c *gin.Context) {
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No command provided"})
		return
	}

	c.JSON(http.StatusOK, h.Dispatcher.Dispatch(c.Request.Context(), req.Command))
}

func (h *Handler) HandleAudio(c *gin.Context) {
	var req AudioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	url, err := h.Service.Audio(c.Request.Context(), req.Text, language(req.Language))
	if errors.Is(err, ErrUnsupportedLanguage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported language"})
		return
	}
	if err != nil {
		h.logger().Warn("audio generation failed", slog.String("request_id", RequestID(c)), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate audio"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"audio_url": url})
}

func (h *Handler) HandleSearch(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return
	}

	results, err := h.Service.Search(c.Request.Context(), req.Query, language(req.Language))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   req.Query,
		"count":   len(results),
		"results": results,
	})
}

func (h *Handler) HandleSection(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	view, err := h.Service.Section(c.Request.Context(), id, language(c.Query("lang")))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) HandlePages(c *gin.Context) {
	pages, err := h.Service.Pages(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(pages), "pages": pages})
}

func (h *Handler) HandlePage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	page, err := h.Service.Page(c.Request.Context(), id, language(c.Query("lang")))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) HandleLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"languages": models.SupportedLanguages})
}
