package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"synathrozo/internal/delivery/http/helpers"
	"synathrozo/internal/domain"
)

// RSVPPageResponse is what the public invitation page renders: the invitation, its event and
// the resolved presentation template.
type RSVPPageResponse struct {
	*domain.InvitationWithEvent
	StatusLabel string          `json:"status_label"`
	Template    domain.Template `json:"template"`
}

// RespondRequest is the request body for POST /rsvp/{token}.
type RespondRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Attending  *bool  `json:"attending"`
	GuestCount *int   `json:"guest_count"`
	Message    string `json:"message"`
}

// Validate implements Validator.
func (req RespondRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, "name is required")
	}
	if req.Attending == nil {
		errs = append(errs, "attending is required")
	}
	return errs
}

// RSVPPageSuccessResponse is the success response envelope for GET /rsvp/{token} (200).
type RSVPPageSuccessResponse struct {
	Data  RSVPPageResponse  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// InvitationSuccessResponse is the success response envelope for a single invitation.
type InvitationSuccessResponse struct {
	Data  *domain.Invitation `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// RSVPController serves the guest-facing endpoints. The token is the only credential.
type RSVPController struct {
	Logger  *slog.Logger
	Service domain.InvitationService
}

func NewRSVPController(logger *slog.Logger, svc domain.InvitationService) *RSVPController {
	return &RSVPController{Logger: logger, Service: svc}
}

// GetInvitation godoc
// @Summary Load an invitation by token
// @Description Public. Returns the invitation joined with its event and template.
// @Tags rsvp
// @Produce json
// @Param token path string true "Invitation token"
// @Success 200 {object} controllers.RSVPPageSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /rsvp/{token} [get]
func (c *RSVPController) GetInvitation(w http.ResponseWriter, r *http.Request) {
	inv, err := c.Service.GetByToken(r.Context(), r.PathValue("token"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	resp := RSVPPageResponse{
		InvitationWithEvent: inv,
		StatusLabel:         inv.Status.Label(),
		Template:            domain.TemplateOrDefault(""),
	}
	if inv.Event != nil {
		resp.Template = domain.TemplateOrDefault(inv.Event.Template)
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, resp)
}

// MarkOpened godoc
// @Summary Record that the invitation was viewed
// @Description Public. Moves a pending invitation to opened; any other status is returned unchanged.
// @Tags rsvp
// @Produce json
// @Param token path string true "Invitation token"
// @Success 200 {object} controllers.InvitationSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /rsvp/{token}/open [post]
func (c *RSVPController) MarkOpened(w http.ResponseWriter, r *http.Request) {
	inv, err := c.Service.MarkOpened(r.Context(), r.PathValue("token"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}

// Respond godoc
// @Summary Answer an invitation
// @Description Public. Accepting defaults guest_count to 1; declining stores 0. Answering again replaces the previous answer.
// @Tags rsvp
// @Accept json
// @Produce json
// @Param token path string true "Invitation token"
// @Param body body RespondRequest true "Guest response"
// @Success 200 {object} controllers.InvitationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /rsvp/{token} [post]
func (c *RSVPController) Respond(w http.ResponseWriter, r *http.Request) {
	var req RespondRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	inv, err := c.Service.Respond(r.Context(), r.PathValue("token"), domain.RSVPResponse{
		Name:       req.Name,
		Phone:      req.Phone,
		Email:      req.Email,
		Attending:  *req.Attending,
		GuestCount: req.GuestCount,
		Message:    req.Message,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}
