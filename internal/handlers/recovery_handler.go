package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/lifequest/lifequest-backend/internal/services"
	"github.com/lifequest/lifequest-backend/pkg/middleware"
	"github.com/gorilla/mux"
)

// RecoveryHandler handles HTTP requests for recovery tracking.
type RecoveryHandler struct {
	Service *services.RecoveryService
}

// NewRecoveryHandler creates a new RecoveryHandler.
func NewRecoveryHandler(recoveryService *services.RecoveryService) *RecoveryHandler {
	return &RecoveryHandler{Service: recoveryService}
}

// CreateItemHandler starts tracking a new habit.
func (h *RecoveryHandler) CreateItemHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Name        string    `json:"name"`
		Description string    `json:"description"`
		StartDate   time.Time `json:"start_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	item, err := h.Service.CreateItem(r.Context(), claims.UserID, req.Name, req.Description, req.StartDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(item)
}

// ListItemsHandler returns all items with fresh streak numbers.
func (h *RecoveryHandler) ListItemsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	items, err := h.Service.GetItems(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "Failed to fetch recovery items", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

// LogEventHandler appends a relapse or success entry to one item.
func (h *RecoveryHandler) LogEventHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	itemID := mux.Vars(r)["id"]

	var req struct {
		Type string `json:"type"`
		Note string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var err error
	switch req.Type {
	case "relapse":
		err = h.Service.LogRelapse(r.Context(), claims.UserID, itemID, req.Note)
	case "success":
		err = h.Service.LogSuccess(r.Context(), claims.UserID, itemID, req.Note)
	default:
		http.Error(w, "Log type must be 'relapse' or 'success'", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "Failed to log entry", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteItemHandler removes an item and its history.
func (h *RecoveryHandler) DeleteItemHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Service.DeleteItem(r.Context(), claims.UserID, mux.Vars(r)["id"]); err != nil {
		http.Error(w, "Failed to delete recovery item", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
