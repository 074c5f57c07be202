package controllers

import (
	"net/http"

	"synathrozo/internal/delivery/http/helpers"
	"synathrozo/internal/domain"
)

// EmailHealthResponse reports whether the email function answered the probe.
type EmailHealthResponse struct {
	Configured bool `json:"configured"`
}

type HealthController struct {
	Dispatcher domain.NotificationDispatcher
}

func NewHealthController(dispatcher domain.NotificationDispatcher) *HealthController {
	return &HealthController{Dispatcher: dispatcher}
}

// Health godoc
// @Summary Liveness
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse "data.status: ok"
// @Router /health [get]
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

// EmailHealth godoc
// @Summary Email function reachability
// @Description Sends a preflight request to the email function.
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse "data.configured"
// @Router /health/email [get]
func (c *HealthController) EmailHealth(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, EmailHealthResponse{Configured: c.Dispatcher.CheckConfiguration(r.Context())})
}
