package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xvierd/tec-office/internal/ports"
)

// TimerHandler serves the timer endpoints.
type TimerHandler struct {
	controller ports.TimerController
}

type setTimerRequest struct {
	Minutes   *float64 `json:"minutes"`
	TimerType string   `json:"timer_type"`
	Name      string   `json:"name"`
}

type commandRequest struct {
	Text string `json:"text"`
}

func NewTimerHandler(controller ports.TimerController) *TimerHandler {
	return &TimerHandler{controller: controller}
}

func (h *TimerHandler) Status(c *gin.Context) {
	writeResult(c, h.controller.TimerStatus(c.Request.Context(), UserID(c)))
}

func (h *TimerHandler) Set(c *gin.Context) {
	var req setTimerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if req.Minutes == nil {
		writeError(c, http.StatusBadRequest, "invalid_minutes", "minutes is required")
		return
	}

	result := h.controller.SetTimer(c.Request.Context(), UserID(c), *req.Minutes, req.TimerType, req.Name)
	writeResult(c, result)
}

func (h *TimerHandler) Cancel(c *gin.Context) {
	result := h.controller.CancelTimer(c.Request.Context(), UserID(c), c.Param("type"))
	writeResult(c, result)
}

func (h *TimerHandler) ControlPomodoro(c *gin.Context) {
	result := h.controller.ControlPomodoro(c.Request.Context(), UserID(c), c.Param("action"))
	writeResult(c, result)
}

func (h *TimerHandler) Command(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(c, http.StatusBadRequest, "invalid_text", "text is required")
		return
	}

	writeResult(c, h.controller.Respond(c.Request.Context(), UserID(c), req.Text))
}
