package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/takumi/banter/internal/service"
	"github.com/takumi/banter/internal/transport/http/middleware"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	channelID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid channel ID")
		return
	}

	var input service.SendMessageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	msg, err := h.messageService.Create(r.Context(), channelID, userID, input)
	if err != nil {
		writeMessageError(w, "send message", err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	channelID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid channel ID")
		return
	}

	messages, err := h.messageService.ListByChannel(r.Context(), userID, channelID)
	if err != nil {
		writeMessageError(w, "list messages", err)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

func (h *MessageHandler) Edit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	messageID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}

	var input service.EditMessageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	msg, err := h.messageService.Edit(r.Context(), messageID, userID, input)
	if err != nil {
		writeMessageError(w, "edit message", err)
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	messageID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}

	deletedID, err := h.messageService.Delete(r.Context(), messageID, userID)
	if err != nil {
		writeMessageError(w, "delete message", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"deleted_id": deletedID,
	})
}

// writeMessageError maps message lifecycle errors onto the HTTP contract.
func writeMessageError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyContent):
		writeError(w, http.StatusBadRequest, "EMPTY_CONTENT", "Message content must not be empty")
	case errors.Is(err, service.ErrContentTooLong):
		writeError(w, http.StatusBadRequest, "CONTENT_TOO_LONG", "Message content exceeds 5000 characters")
	case errors.Is(err, service.ErrChannelNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Channel not found")
	case errors.Is(err, service.ErrMessageNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Message not found")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrNotChannelMember):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "You do not have access to this channel")
	case errors.Is(err, service.ErrNotMessageOwner):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the sender can modify this message")
	default:
		log.Printf("ERROR %s: %v", op, err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}
