package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"membershipevents/internal/delivery/http/helpers"
	"membershipevents/internal/delivery/http/middleware"
	"membershipevents/internal/domain"
)

// maxNotesLength mirrors the registration service limit so oversized notes fail before any lookup.
const maxNotesLength = 500

// RegisterRequest is the request body for POST /events/{eventID}/inscriptions.
type RegisterRequest struct {
	Notes string `json:"notes"`
}

// Validate implements Validator.
func (r RegisterRequest) Validate() []string {
	var errs []string
	if utf8.RuneCountInString(r.Notes) > maxNotesLength {
		errs = append(errs, "notes must be at most 500 characters")
	}
	return errs
}

// RegisterSuccessResponse is the success response envelope for POST /events/{eventID}/inscriptions (201).
type RegisterSuccessResponse struct {
	Data  *domain.RegistrationResult `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// CancelSuccessResponse is the success response envelope for DELETE /inscriptions/{inscriptionID} (200).
type CancelSuccessResponse struct {
	Data  *domain.CancellationResult `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// InscriptionListResponse is a page of inscriptions.
type InscriptionListResponse struct {
	Items      []*domain.Inscription  `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// InscriptionListSuccessResponse is the success response envelope for inscription lists (200).
type InscriptionListSuccessResponse struct {
	Data  InscriptionListResponse `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// ResyncSuccessResponse is the success response envelope for POST /admin/inscriptions/resync (200).
type ResyncSuccessResponse struct {
	Data  *domain.ResyncReport `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

type InscriptionController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewInscriptionController(logger *slog.Logger, svc domain.RegistrationService) *InscriptionController {
	return &InscriptionController{
		Logger:  logger,
		Service: svc,
	}
}

// Register godoc
// @Summary Register for an event
// @Description Registers the authenticated member. The inscription is confirmed while seats remain, otherwise it joins the end of the waitlist. Being waitlisted is a success.
// @Tags inscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body RegisterRequest false "Optional notes"
// @Success 201 {object} controllers.RegisterSuccessResponse "data.status is confirmed or waitlist"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (event or user)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (closed, expired, registration closed, duplicate)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/inscriptions [post]
func (c *InscriptionController) Register(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req RegisterRequest
	if r.ContentLength != 0 {
		if !helpers.DecodeAndValidate(w, r, &req) {
			return
		}
	}
	result, err := c.Service.Register(r.Context(), actor.UserID, eventID, req.Notes)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, result)
}

// Cancel godoc
// @Summary Cancel an inscription
// @Description Cancels an inscription owned by the caller (admins may cancel any). Cancelling a confirmed inscription promotes the first waitlisted member in the same operation.
// @Tags inscriptions
// @Produce json
// @Security BearerAuth
// @Param inscriptionID path string true "Inscription ID"
// @Success 200 {object} controllers.CancelSuccessResponse "data.promoted is set when a waitlisted member was confirmed"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already cancelled)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /inscriptions/{inscriptionID} [delete]
func (c *InscriptionController) Cancel(w http.ResponseWriter, r *http.Request) {
	inscriptionID := r.PathValue("inscriptionID")
	if inscriptionID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing inscriptionID")
		return
	}
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	result, err := c.Service.Cancel(r.Context(), actor, inscriptionID)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// ListMine godoc
// @Summary List my inscriptions
// @Description Returns the caller's active inscriptions, oldest first.
// @Tags inscriptions
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.InscriptionListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /me/inscriptions [get]
func (c *InscriptionController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	list, err := c.Service.ListByUser(r.Context(), userID)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	items, meta := helpers.Page(list, helpers.ParsePagination(r))
	helpers.WriteJSONSuccess(w, http.StatusOK, InscriptionListResponse{Items: items, Pagination: meta})
}

// ListByEvent godoc
// @Summary List an event's inscriptions
// @Description Returns active inscriptions of the event: confirmed ones by registration time, then the waitlist in position order.
// @Tags inscriptions
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.InscriptionListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/inscriptions [get]
func (c *InscriptionController) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	list, err := c.Service.ListByEvent(r.Context(), eventID)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	items, meta := helpers.Page(list, helpers.ParsePagination(r))
	helpers.WriteJSONSuccess(w, http.StatusOK, InscriptionListResponse{Items: items, Pagination: meta})
}

// Resync godoc
// @Summary Rebuild derived inscription views
// @Description Admin only. Recomputes confirmed-seat ledgers and, for the document strategy, rebuilds every per-event and per-user list from canonical records. Safe to run repeatedly.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ResyncSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/inscriptions/resync [post]
func (c *InscriptionController) Resync(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	report, err := c.Service.Resync(r.Context(), actor)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, report)
}

// writeServiceError maps service errors to the API error envelope.
func (c *InscriptionController) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotOwner), errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, err.Error())
	case domain.IsNotFound(err):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
	case domain.IsConflict(err):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
	}
}
