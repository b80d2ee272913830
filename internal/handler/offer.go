package handler

import (
	"encoding/json"
	"net/http"

	"classifieds-api/internal/middleware"
	"classifieds-api/internal/service"
	"classifieds-api/pkg/apierror"
	"classifieds-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// OfferHandler handles negotiation HTTP requests.
type OfferHandler struct {
	offerService *service.OfferService
}

// NewOfferHandler creates a new offer handler.
func NewOfferHandler(offerService *service.OfferService) *OfferHandler {
	return &OfferHandler{offerService: offerService}
}

// OfferRequest represents the body for creating or countering an offer.
type OfferRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Message     string `json:"message"`
}

// CreateOffer handles POST /api/v1/conversations/{conversation_id}/offers
func (h *OfferHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		response.Error(w, apierror.Unauthorized("session required"))
		return
	}
	conversationID := chi.URLParam(r, "conversation_id")

	var req OfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	offer, err := h.offerService.CreateOffer(r.Context(), conversationID, session.AccountID, req.AmountCents, req.Message)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, offer)
}

// LatestOffer handles GET /api/v1/conversations/{conversation_id}/offers/latest
func (h *OfferHandler) LatestOffer(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		response.Error(w, apierror.Unauthorized("session required"))
		return
	}
	conversationID := chi.URLParam(r, "conversation_id")

	offer, err := h.offerService.LatestOffer(r.Context(), conversationID, session.AccountID)
	if err != nil {
		response.Error(w, err)
		return
	}
	if offer == nil {
		response.Error(w, apierror.NotFound("no offers in this conversation"))
		return
	}
	response.OK(w, offer)
}

// AcceptOffer handles POST /api/v1/offers/{offer_id}/accept
func (h *OfferHandler) AcceptOffer(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, true)
}

// RejectOffer handles POST /api/v1/offers/{offer_id}/reject
func (h *OfferHandler) RejectOffer(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, false)
}

func (h *OfferHandler) respond(w http.ResponseWriter, r *http.Request, accept bool) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		response.Error(w, apierror.Unauthorized("session required"))
		return
	}
	offerID := chi.URLParam(r, "offer_id")

	offer, err := h.offerService.RespondToOffer(r.Context(), offerID, session.AccountID, accept)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, offer)
}

// CounterOffer handles POST /api/v1/offers/{offer_id}/counter
func (h *OfferHandler) CounterOffer(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		response.Error(w, apierror.Unauthorized("session required"))
		return
	}
	offerID := chi.URLParam(r, "offer_id")

	var req OfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	counter, err := h.offerService.CounterOffer(r.Context(), offerID, session.AccountID, req.AmountCents, req.Message)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, counter)
}

// WithdrawOffer handles POST /api/v1/offers/{offer_id}/withdraw
func (h *OfferHandler) WithdrawOffer(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		response.Error(w, apierror.Unauthorized("session required"))
		return
	}
	offerID := chi.URLParam(r, "offer_id")

	offer, err := h.offerService.WithdrawOffer(r.Context(), offerID, session.AccountID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, offer)
}
