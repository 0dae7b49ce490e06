package handler

import (
	"encoding/json"
	"net/http"

	"hyrra/internal/guestaccess/service"
	httputil "hyrra/pkg/http"
	"hyrra/pkg/logger"
	"hyrra/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type issueRequest struct {
	BookingID string `json:"booking_id"`
}

type GuestTokenHandler struct {
	service service.GuestTokenService
	log     *logger.Logger
}

func NewGuestTokenHandler(service service.GuestTokenService, log *logger.Logger) *GuestTokenHandler {
	return &GuestTokenHandler{
		service: service,
		log:     log,
	}
}

func (h *GuestTokenHandler) Issue(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Issue", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	actorID := r.Header.Get(middleware.HeaderRequesterID)

	token, err := h.service.Issue(r.Context(), req.BookingID, actorID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Issue", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, token); err != nil {
		h.log.Error("failed to write created response", "handler", "Issue", "operation", "WriteCreated", "error", err)
	}
}

func (h *GuestTokenHandler) Resolve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	token := ps.ByName("token")

	view, err := h.service.Resolve(r.Context(), token)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Resolve", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, view); err != nil {
		h.log.Error("failed to write success response", "handler", "Resolve", "operation", "WriteSuccess", "error", err)
	}
}

func (h *GuestTokenHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/guest-links", h.Issue)
	router.GET("/api/v1/guest-links/:token", h.Resolve)
}
