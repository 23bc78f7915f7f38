package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/lifequest/lifequest-backend/internal/services"
	"github.com/lifequest/lifequest-backend/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// FriendHandler handles HTTP requests for the friendship graph.
type FriendHandler struct {
	Service *services.UserService
}

// NewFriendHandler creates a new FriendHandler.
func NewFriendHandler(userService *services.UserService) *FriendHandler {
	return &FriendHandler{Service: userService}
}

// SendFriendRequestHandler sends a request to the user in the path.
func (h *FriendHandler) SendFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	toID := mux.Vars(r)["id"]

	if err := h.Service.SendFriendRequest(r.Context(), claims.UserID, toID); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"from": claims.UserID,
			"to":   toID,
		}).Warn("Friend request rejected")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// RespondToFriendRequestHandler accepts or rejects a pending request.
func (h *FriendHandler) RespondToFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	fromID := mux.Vars(r)["id"]

	var req struct {
		Accept bool `json:"accept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var err error
	if req.Accept {
		err = h.Service.AcceptFriendRequest(r.Context(), claims.UserID, fromID)
	} else {
		err = h.Service.RejectFriendRequest(r.Context(), claims.UserID, fromID)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetFriendsHandler lists the caller's friends.
func (h *FriendHandler) GetFriendsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	friends, err := h.Service.GetFriends(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "Failed to fetch friends", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(friends)
}

// GetPendingRequestsHandler lists incoming and outgoing pending requests.
func (h *FriendHandler) GetPendingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.Service.GetUser(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{
		"received": user.FriendRequestsReceived,
		"sent":     user.FriendRequestsSent,
	})
}

// RemoveFriendHandler removes a friendship from both sides.
func (h *FriendHandler) RemoveFriendHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Service.RemoveFriend(r.Context(), claims.UserID, mux.Vars(r)["id"]); err != nil {
		http.Error(w, "Failed to remove friend", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
