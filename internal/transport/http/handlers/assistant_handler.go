package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/takumi/banter/internal/service"
	"github.com/takumi/banter/internal/transport/http/middleware"
)

type AssistantHandler struct {
	assistantService *service.AssistantService
}

func NewAssistantHandler(assistantService *service.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistantService: assistantService}
}

type chatInput struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input chatInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	message := strings.TrimSpace(input.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, "EMPTY_CONTENT", "Message must not be empty")
		return
	}

	response, err := h.assistantService.Chat(r.Context(), userID, message)
	if err != nil {
		if errors.Is(err, service.ErrQuotaExceeded) {
			writeError(w, http.StatusTooManyRequests, "QUOTA_EXCEEDED", "Daily assistant limit reached, try again tomorrow")
			return
		}
		log.Printf("ERROR assistant chat: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: response})
}

type quotaResponse struct {
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
	Limit     int `json:"limit"`
}

func (h *AssistantHandler) Quota(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	used, err := h.assistantService.UsageCount(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR assistant quota: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, quotaResponse{
		Used:      used,
		Remaining: max(0, service.DailyLimit-used),
		Limit:     service.DailyLimit,
	})
}

func (h *AssistantHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	records, err := h.assistantService.History(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR assistant history: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, records)
}
