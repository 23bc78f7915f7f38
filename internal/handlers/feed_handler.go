package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/lifequest/lifequest-backend/internal/models"
	"github.com/lifequest/lifequest-backend/internal/repository"
	"github.com/lifequest/lifequest-backend/internal/services"
	"github.com/lifequest/lifequest-backend/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

var (
	feedClients   = make(map[string]*websocket.Conn)
	feedClientsMu sync.Mutex
)

// FeedHandler handles HTTP requests for the social activity feed, plus a
// websocket stream pushing new activities to connected clients.
type FeedHandler struct {
	Service *services.FeedService
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(feedService *services.FeedService) *FeedHandler {
	return &FeedHandler{Service: feedService}
}

// GetFeedHandler returns the combined feed, most recent first.
func (h *FeedHandler) GetFeedHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	feed, err := h.Service.GetFeed(r.Context())
	if err != nil {
		http.Error(w, "Failed to fetch feed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(feed)
}

// PostActivityHandler shares an achievement to the feed.
func (h *FeedHandler) PostActivityHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input services.ActivityInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	activity, err := h.Service.PostActivity(r.Context(), claims.UserID, input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	broadcastActivity(activity)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(activity)
}

// ToggleLikeHandler flips the caller's like on an activity.
func (h *FeedHandler) ToggleLikeHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	activity, err := h.Service.ToggleLike(r.Context(), claims.UserID, mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(activity)
}

// AddCommentHandler adds a comment or a one-level reply.
func (h *FeedHandler) AddCommentHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Text     string `json:"text"`
		ParentID string `json:"parent_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	comment, err := h.Service.AddComment(r.Context(), claims.UserID, mux.Vars(r)["id"], req.Text, req.ParentID)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrCommentNotFound) || errors.Is(err, repository.ErrActivityNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(comment)
}

// DeleteCommentHandler removes the caller's own comment or reply.
func (h *FeedHandler) DeleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	vars := mux.Vars(r)

	err := h.Service.DeleteComment(r.Context(), claims.UserID, vars["id"], vars["commentId"])
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, services.ErrCommentNotFound), errors.Is(err, repository.ErrActivityNotFound):
			status = http.StatusNotFound
		case errors.Is(err, services.ErrNotCommentOwner):
			status = http.StatusForbidden
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StreamHandler upgrades to a websocket and pushes every newly posted
// activity to the client until it disconnects.
func (h *FeedHandler) StreamHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("Feed stream upgrade failed")
		return
	}

	feedClientsMu.Lock()
	feedClients[claims.UserID] = conn
	feedClientsMu.Unlock()

	logrus.WithField("user_id", claims.UserID).Info("Feed stream connected")

	// Drain until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	feedClientsMu.Lock()
	delete(feedClients, claims.UserID)
	feedClientsMu.Unlock()
	conn.Close()
}

func broadcastActivity(activity *models.Activity) {
	feedClientsMu.Lock()
	defer feedClientsMu.Unlock()

	for userID, conn := range feedClients {
		if err := conn.WriteJSON(activity); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("Dropping dead feed stream")
			conn.Close()
			delete(feedClients, userID)
		}
	}
}
