package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"classifieds-api/internal/middleware"
	"classifieds-api/internal/model"
	"classifieds-api/internal/service"
	"classifieds-api/pkg/apierror"
	"classifieds-api/pkg/response"
	"classifieds-api/pkg/timefmt"

	"github.com/go-chi/chi/v5"
)

// ConversationHandler handles messaging HTTP requests.
type ConversationHandler struct {
	conversationService *service.ConversationService
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(conversationService *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

// CreateConversationRequest represents the body for opening a thread.
type CreateConversationRequest struct {
	ListingID string `json:"listing_id"`
}

// CreateConversation handles POST /api/v1/conversations
func (h *ConversationHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		response.Error(w, apierror.Unauthorized("session required"))
		return
	}

	var req CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if req.ListingID == "" {
		response.Error(w, apierror.BadRequest("listing_id is required"))
		return
	}

	conv, err := h.conversationService.CreateConversation(r.Context(), req.ListingID, session.AccountID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, conv)
}

// ListConversations handles GET /api/v1/conversations
// Optional query params: search (participant name), filter (all|buying|selling).
func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		response.Error(w, apierror.Unauthorized("session required"))
		return
	}

	convs, err := h.conversationService.ListConversations(r.Context(), session.AccountID)
	if err != nil {
		response.Error(w, err)
		return
	}

	convs = service.FilterConversations(convs, service.ConversationFilter{
		Search:        r.URL.Query().Get("search"),
		Filter:        r.URL.Query().Get("filter"),
		CurrentUserID: session.AccountID,
	})
	for i := range convs {
		if convs[i].LastMessage != nil {
			convs[i].LastMessage.CreatedAgo = timefmt.RelativeNow(convs[i].LastMessage.CreatedAt)
		}
	}
	response.OK(w, convs)
}

// GetConversation handles GET /api/v1/conversations/{conversation_id}
func (h *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		response.Error(w, apierror.Unauthorized("session required"))
		return
	}
	conversationID := chi.URLParam(r, "conversation_id")

	conv, err := h.conversationService.GetConversation(r.Context(), conversationID, session.AccountID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, conv)
}

// SendMessageRequest represents the body for posting a message.
type SendMessageRequest struct {
	Content string `json:"content"`
	Type    string `json:"type"` // text (default) or image
}

// SendMessage handles POST /api/v1/conversations/{conversation_id}/messages
func (h *ConversationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		response.Error(w, apierror.Unauthorized("session required"))
		return
	}
	conversationID := chi.URLParam(r, "conversation_id")

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	msgType := model.MessageType(req.Type)
	if req.Type == "" {
		msgType = model.MessageText
	}

	msg, err := h.conversationService.SendMessage(r.Context(), conversationID, session.AccountID, req.Content, msgType)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.Created(w, msg)
}

// ListMessages handles GET /api/v1/conversations/{conversation_id}/messages
func (h *ConversationHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		response.Error(w, apierror.Unauthorized("session required"))
		return
	}
	conversationID := chi.URLParam(r, "conversation_id")

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	msgs, err := h.conversationService.ListMessages(r.Context(), conversationID, session.AccountID, limit)
	if err != nil {
		response.Error(w, err)
		return
	}
	for i := range msgs {
		msgs[i].CreatedAgo = timefmt.RelativeNow(msgs[i].CreatedAt)
	}
	response.OK(w, msgs)
}

// MarkAsRead handles POST /api/v1/conversations/{conversation_id}/read
//
// The write is buffered; the 200 here means the receipt was accepted, not
// that it is durable yet.
func (h *ConversationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		response.Error(w, apierror.Unauthorized("session required"))
		return
	}
	conversationID := chi.URLParam(r, "conversation_id")

	if err := h.conversationService.MarkAsRead(r.Context(), conversationID, session.AccountID); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, map[string]string{"status": "read"})
}
