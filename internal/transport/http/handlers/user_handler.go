package handlers

import (
	"log"
	"net/http"

	"github.com/takumi/banter/internal/domain"
	"github.com/takumi/banter/internal/repository"
	"github.com/takumi/banter/internal/service"
	"github.com/takumi/banter/internal/transport/http/middleware"
)

type UserHandler struct {
	userRepo       repository.UserRepository
	messageService *service.MessageService
}

func NewUserHandler(userRepo repository.UserRepository, messageService *service.MessageService) *UserHandler {
	return &UserHandler{
		userRepo:       userRepo,
		messageService: messageService,
	}
}

// List returns every user as a {id, name} member view. Emails stay
// server-side.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userRepo.List(r.Context())
	if err != nil {
		log.Printf("ERROR list users: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	members := make([]domain.MemberView, 0, len(users))
	for i := range users {
		members = append(members, users[i].Member())
	}

	writeJSON(w, http.StatusOK, members)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR get current user: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// MyMessages returns the caller's own messages across channels, newest
// first.
func (h *UserHandler) MyMessages(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	messages, err := h.messageService.ListBySender(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR list own messages: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, messages)
}
