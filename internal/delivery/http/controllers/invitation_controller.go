package controllers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"synathrozo/internal/delivery/http/helpers"
	"synathrozo/internal/delivery/http/middleware"
	"synathrozo/internal/domain"
)

// NDJSONContentType selects the streamed form of the send endpoint.
const NDJSONContentType = "application/x-ndjson"

// CreateInvitationsRequest is the request body for POST /events/{eventID}/invitations.
// Either emails (batch) or email (single, may be empty for a shareable link) is set.
type CreateInvitationsRequest struct {
	Emails []string `json:"emails"`
	Email  *string  `json:"email"`
}

// Validate implements Validator.
func (c CreateInvitationsRequest) Validate() []string {
	if c.Emails != nil && c.Email != nil {
		return []string{"set either emails or email, not both"}
	}
	if c.Emails != nil && len(c.Emails) == 0 {
		return []string{"emails cannot be empty"}
	}
	return nil
}

// SendInvitationsRequest is the optional request body for POST /events/{eventID}/invitations/send.
type SendInvitationsRequest struct {
	InvitationIDs []string `json:"invitation_ids"`
	// Timezone is an IANA zone name the event date is formatted in, e.g. "Europe/Athens".
	Timezone string `json:"timezone"`
}

// InvitationView is an invitation as shown to its host.
type InvitationView struct {
	*domain.Invitation
	StatusLabel string `json:"status_label"`
	RSVPLink    string `json:"rsvp_link"`
}

// InvitationsSuccessResponse is the success response envelope for invitation lists.
type InvitationsSuccessResponse struct {
	Data  []InvitationView  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// StatsSuccessResponse is the success response envelope for GET /events/{eventID}/stats (200).
type StatsSuccessResponse struct {
	Data  *domain.InvitationStats `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// SendSuccessResponse is the success response envelope for a non-streamed send (200).
type SendSuccessResponse struct {
	Data  domain.BulkResult `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type progressLine struct {
	Type string `json:"type"`
	domain.BulkProgress
}

type resultLine struct {
	Type string `json:"type"`
	domain.BulkResult
}

type InvitationController struct {
	Logger     *slog.Logger
	Service    domain.InvitationService
	Dispatcher domain.NotificationDispatcher
}

func NewInvitationController(logger *slog.Logger, svc domain.InvitationService, dispatcher domain.NotificationDispatcher) *InvitationController {
	return &InvitationController{
		Logger:     logger,
		Service:    svc,
		Dispatcher: dispatcher,
	}
}

func (c *InvitationController) views(invs []*domain.Invitation) []InvitationView {
	out := make([]InvitationView, 0, len(invs))
	for _, inv := range invs {
		out = append(out, InvitationView{
			Invitation:  inv,
			StatusLabel: inv.Status.Label(),
			RSVPLink:    c.Dispatcher.RSVPLink(inv.Token),
		})
	}
	return out
}

// CreateInvitations godoc
// @Summary Create invitations
// @Description Create invitations for an event, either a batch from a list of emails or a single one (email optional). Blank entries are skipped.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body CreateInvitationsRequest true "emails or email"
// @Success 201 {object} controllers.InvitationsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/invitations [post]
func (c *InvitationController) CreateInvitations(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req CreateInvitationsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var invs []*domain.Invitation
	var err error
	if req.Emails != nil {
		invs, err = c.Service.CreateInvitations(r.Context(), eventID, userID, req.Emails)
	} else {
		email := ""
		if req.Email != nil {
			email = *req.Email
		}
		var inv *domain.Invitation
		inv, err = c.Service.CreateInvitation(r.Context(), eventID, userID, email)
		invs = []*domain.Invitation{inv}
	}
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, c.views(invs))
}

// ListInvitations godoc
// @Summary List an event's invitations
// @Description Newest first, with status label and RSVP link.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.InvitationsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/invitations [get]
func (c *InvitationController) ListInvitations(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	invs, err := c.Service.ListInvitations(r.Context(), eventID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, c.views(invs))
}

// Stats godoc
// @Summary Invitation statistics
// @Description Counts per status and the total head count of accepted invitations.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.StatsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/stats [get]
func (c *InvitationController) Stats(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	stats, err := c.Service.Stats(r.Context(), eventID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}

// SendInvitations godoc
// @Summary Email invitations
// @Description Sends the given invitations, or every unsent one when invitation_ids is empty, one after another. With Accept: application/x-ndjson the response streams one {"type":"progress"} line per invitation followed by a {"type":"result"} line. The batch keeps running if the client disconnects.
// @Tags invitations
// @Accept json
// @Produce json
// @Produce application/x-ndjson
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body SendInvitationsRequest false "Optional subset and time zone"
// @Success 200 {object} controllers.SendSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/invitations/send [post]
func (c *InvitationController) SendInvitations(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	var req SendInvitationsRequest
	if r.ContentLength != 0 && r.Body != nil && r.Body != http.NoBody {
		if !helpers.DecodeAndValidate(w, r, &req) {
			return
		}
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var opts domain.DispatchOptions
	if tz := strings.TrimSpace(req.Timezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid timezone: "+tz)
			return
		}
		opts.Location = loc
	}

	run, err := c.Service.SendInvitations(r.Context(), eventID, userID, req.InvitationIDs, opts)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}

	if !strings.Contains(r.Header.Get("Accept"), NDJSONContentType) {
		helpers.WriteJSONSuccess(w, http.StatusOK, run.Wait())
		return
	}

	w.Header().Set("Content-Type", NDJSONContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	rc := http.NewResponseController(w)
	enc := json.NewEncoder(w)
	clientGone := false
	for p := range run.Progress() {
		if clientGone {
			continue
		}
		if err := enc.Encode(progressLine{Type: "progress", BulkProgress: p}); err != nil {
			clientGone = true
			continue
		}
		_ = rc.Flush()
	}
	res := run.Wait()
	if clientGone {
		c.Logger.InfoContext(r.Context(), "send stream closed early", "event_id", eventID,
			"success", res.Success, "failed", res.Failed)
		return
	}
	_ = enc.Encode(resultLine{Type: "result", BulkResult: res})
	_ = rc.Flush()
}

// DeleteInvitation godoc
// @Summary Delete an invitation
// @Description Only the owner of the invitation's event can delete it.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data.status: deleted"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /invitations/{invitationID} [delete]
func (c *InvitationController) DeleteInvitation(w http.ResponseWriter, r *http.Request) {
	invitationID := r.PathValue("invitationID")
	if invitationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing invitationID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.DeleteInvitation(r.Context(), invitationID, userID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteResponse{Status: "deleted"})
}
