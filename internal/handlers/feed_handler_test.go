package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lifequest/lifequest-backend/internal/repository"
	"github.com/lifequest/lifequest-backend/internal/services"
	"github.com/lifequest/lifequest-backend/internal/storage"
	jwtutil "github.com/lifequest/lifequest-backend/pkg/jwt"
	"github.com/lifequest/lifequest-backend/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newFeedRouter(t *testing.T) (*mux.Router, string) {
	t.Helper()

	store := storage.NewMemoryStore()
	userRepo := repository.NewUserRepository(store)
	feedRepo := repository.NewFeedRepository(store)
	userService := services.NewUserService(userRepo)
	feedService := services.NewFeedService(feedRepo, userRepo)

	user, err := userService.RegisterUser(context.Background(), "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	token, err := jwtutil.GenerateToken(user.ID, user.Username, user.Role, testSecret, time.Hour)
	require.NoError(t, err)

	handler := NewFeedHandler(feedService)
	router := mux.NewRouter()
	router.Use(middleware.AuthMiddleware(testSecret))
	router.HandleFunc("/feed/{id}/like", handler.ToggleLikeHandler).Methods("POST")
	router.HandleFunc("/feed/{id}/comments", handler.AddCommentHandler).Methods("POST")
	router.HandleFunc("/feed/{id}/comments/{commentId}", handler.DeleteCommentHandler).Methods("DELETE")
	return router, token
}

func authedRequest(method, target, token, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestFeedHandlersUnknownActivityReturns404(t *testing.T) {
	router, token := newFeedRouter(t)

	cases := []struct {
		name string
		req  *http.Request
	}{
		{"like", authedRequest(http.MethodPost, "/feed/missing/like", token, "")},
		{"comment", authedRequest(http.MethodPost, "/feed/missing/comments", token, `{"text":"hi"}`)},
		{"delete comment", authedRequest(http.MethodDelete, "/feed/missing/comments/c1", token, "")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, tc.req)
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}

func TestFeedHandlersRejectMissingToken(t *testing.T) {
	router, _ := newFeedRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/feed/missing/like", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
