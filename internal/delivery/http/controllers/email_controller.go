package controllers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"synathrozo/internal/delivery/http/helpers"
	"synathrozo/internal/domain"
)

// functionCORSHeaders are sent on every email function response so browsers may call it directly.
var functionCORSHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
}

// SendEmailResponse is the email function's reply. It is not wrapped in the API envelope.
type SendEmailResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// EmailController is the email function: it renders an invitation or confirmation and hands
// it to the mail provider. When Key is set, POST requires "Authorization: Bearer <Key>".
type EmailController struct {
	Logger  *slog.Logger
	Service domain.InvitationEmailService
	Key     string
}

func NewEmailController(logger *slog.Logger, svc domain.InvitationEmailService, key string) *EmailController {
	return &EmailController{Logger: logger, Service: svc, Key: key}
}

func (c *EmailController) authorized(r *http.Request) bool {
	if c.Key == "" {
		return true
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(c.Key)) == 1
}

func writeFunctionJSON(w http.ResponseWriter, status int, body SendEmailResponse) {
	for k, v := range functionCORSHeaders {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Preflight godoc
// @Summary Email function reachability
// @Description Answers "ok" with CORS headers. Used as the configuration probe.
// @Tags email
// @Produce plain
// @Success 200 {string} string "ok"
// @Router /send-invitation-email [options]
func (c *EmailController) Preflight(w http.ResponseWriter, r *http.Request) {
	for k, v := range functionCORSHeaders {
		w.Header().Set(k, v)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// SendInvitationEmail godoc
// @Summary Render and send an invitation email
// @Description Requires to, eventTitle, eventDate and rsvpLink. Any failure answers 400 with success false.
// @Tags email
// @Accept json
// @Produce json
// @Security FunctionKey
// @Param body body domain.DeliveryRequest true "Email payload"
// @Success 200 {object} controllers.SendEmailResponse
// @Failure 400 {object} controllers.SendEmailResponse
// @Failure 401 {object} controllers.SendEmailResponse
// @Router /send-invitation-email [post]
func (c *EmailController) SendInvitationEmail(w http.ResponseWriter, r *http.Request) {
	if !c.authorized(r) {
		writeFunctionJSON(w, http.StatusUnauthorized, SendEmailResponse{Error: "invalid function key"})
		return
	}
	var req domain.DeliveryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, helpers.MaxBodyBytes)).Decode(&req); err != nil {
		writeFunctionJSON(w, http.StatusBadRequest, SendEmailResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	id, err := c.Service.SendInvitationEmail(r.Context(), &req)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, domain.ErrMissingFields) {
			msg = "Missing required fields: to, eventTitle, eventDate, rsvpLink"
		} else {
			c.Logger.ErrorContext(r.Context(), "send invitation email failed", "to", req.To, "err", err)
		}
		writeFunctionJSON(w, http.StatusBadRequest, SendEmailResponse{Error: msg})
		return
	}
	writeFunctionJSON(w, http.StatusOK, SendEmailResponse{Success: true, ID: id})
}
