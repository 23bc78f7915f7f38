package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lifequest/lifequest-backend/internal/catalog"
	"github.com/lifequest/lifequest-backend/internal/models"
	"github.com/lifequest/lifequest-backend/internal/services"
	"github.com/lifequest/lifequest-backend/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// QuestHandler handles HTTP requests related to quests, the daily board
// and hobbies.
type QuestHandler struct {
	Service *services.QuestService
}

// NewQuestHandler creates a new instance of QuestHandler.
func NewQuestHandler(questService *services.QuestService) *QuestHandler {
	return &QuestHandler{Service: questService}
}

// GetQuestsHandler returns the caller's quest log.
func (h *QuestHandler) GetQuestsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	log, err := h.Service.GetQuests(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "Failed to fetch quests", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(log)
}

// GetDailyBoardHandler returns today's rotation, drawing it if needed.
func (h *QuestHandler) GetDailyBoardHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	state, err := h.Service.EnsureDailyState(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "Failed to fetch daily board", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(state)
}

// GetCatalogHandler lists the non-daily catalog templates.
func (h *QuestHandler) GetCatalogHandler(w http.ResponseWriter, r *http.Request) {
	category := models.Category(r.URL.Query().Get("category"))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(catalog.Templates(category))
}

// ActivateQuestHandler starts a catalog quest.
func (h *QuestHandler) ActivateQuestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Type     models.QuestType `json:"type"`
		Category models.Category  `json:"category"`
		Title    string           `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	quest, err := h.Service.ActivateQuest(r.Context(), claims.UserID, req.Type, req.Category, req.Title)
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, services.ErrDailyLimitReached) && !errors.Is(err, services.ErrQuestNotAvailable) {
			logrus.WithError(err).WithField("user_id", claims.UserID).Warn("Quest activation failed")
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(quest)
}

// CreateCustomQuestHandler authors a custom quest.
func (h *QuestHandler) CreateCustomQuestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input services.CustomQuestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	quest, err := h.Service.AddCustomQuest(r.Context(), claims.UserID, input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(quest)
}

// ProposeQuestHandler accepts a quest proposal produced by the AI coach
// and turns it into a custom quest.
func (h *QuestHandler) ProposeQuestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		services.CustomQuestInput
		Rationale string `json:"rationale"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	quest, err := h.Service.AcceptCoachProposal(r.Context(), claims.UserID, req.CustomQuestInput, req.Rationale)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(quest)
}

// CompleteQuestHandler marks a quest completed with an optional reflection.
func (h *QuestHandler) CompleteQuestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	questID := mux.Vars(r)["id"]

	var req struct {
		Reflection *models.QuestReflection `json:"reflection,omitempty"`
	}
	if r.Body != nil {
		// An empty body is fine, the reflection is optional.
		_ = json.NewDecoder(r.Body).Decode(&req)
		defer r.Body.Close()
	}

	quest, err := h.Service.CompleteQuest(r.Context(), claims.UserID, questID, req.Reflection)
	if err != nil {
		logrus.WithError(err).WithField("quest_id", questID).Error("Quest completion failed")
		http.Error(w, "Failed to complete quest", http.StatusInternalServerError)
		return
	}
	if quest == nil {
		// Unknown or already completed quest: nothing happened.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(quest)
}

// CompleteMilestoneHandler flips one micro goal and awards its XP.
func (h *QuestHandler) CompleteMilestoneHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	vars := mux.Vars(r)

	goal, err := h.Service.CompleteMilestone(r.Context(), claims.UserID, vars["id"], vars["milestoneId"])
	if err != nil {
		http.Error(w, "Failed to complete milestone", http.StatusInternalServerError)
		return
	}
	if goal == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(goal)
}

// CancelQuestHandler removes a quest outright.
func (h *QuestHandler) CancelQuestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Service.CancelQuest(r.Context(), claims.UserID, mux.Vars(r)["id"]); err != nil {
		http.Error(w, "Failed to cancel quest", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListHobbiesHandler returns the caller's hobby subcategories.
func (h *QuestHandler) ListHobbiesHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	hobbies, err := h.Service.GetHobbies(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "Failed to fetch hobbies", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(hobbies)
}

// AddHobbyHandler creates a hobby subcategory.
func (h *QuestHandler) AddHobbyHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	hobby, err := h.Service.AddHobby(r.Context(), claims.UserID, req.Name, req.Description)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(hobby)
}

// RemoveHobbyHandler deletes a hobby and every quest tagged with it.
func (h *QuestHandler) RemoveHobbyHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Service.RemoveHobby(r.Context(), claims.UserID, mux.Vars(r)["id"]); err != nil {
		http.Error(w, "Failed to remove hobby", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
