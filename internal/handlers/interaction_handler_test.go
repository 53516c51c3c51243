package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/locallore/server/internal/bus"
	"github.com/locallore/server/internal/helpers"
	"github.com/locallore/server/internal/models"
	"github.com/locallore/server/internal/services"
)

type stubInteractionsRepo struct {
	models.InteractionsRepo
	upserts, deletes int
}

func (s *stubInteractionsRepo) UpsertInteraction(ctx context.Context, userID, eventID uuid.UUID, interactionType models.InteractionType, accessToken string) error {
	s.upserts++
	return nil
}

func (s *stubInteractionsRepo) DeleteInteraction(ctx context.Context, userID, eventID uuid.UUID, interactionType models.InteractionType, accessToken string) error {
	s.deletes++
	return nil
}

type stubEventsRepo struct {
	models.EventsRepo
	incremented int
}

func (s *stubEventsRepo) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	s.incremented++
	return nil
}

// asUser injects claims the way the auth middleware does.
func asUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user", &helpers.EnhancedClaims{UserID: userID.String(), Role: "student"})
		c.Next()
	}
}

func newInteractionRouter(t *testing.T, userID uuid.UUID) (*gin.Engine, *stubInteractionsRepo, *stubEventsRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	interactions := &stubInteractionsRepo{}
	events := &stubEventsRepo{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := services.NewInteractionService(interactions, events, bus.New(), logger)

	r := gin.New()
	if userID != uuid.Nil {
		r.Use(asUser(userID))
	}
	r.POST("/events/:id/interact", RecordInteraction(svc))
	r.DELETE("/events/:id/interact", RemoveInteraction(svc))
	return r, interactions, events
}

func interact(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRecordUnknownTypeIsBadRequestBeforeAuth(t *testing.T) {
	r, interactions, events := newInteractionRouter(t, uuid.Nil)

	w := interact(r, http.MethodPost, "/events/"+uuid.New().String()+"/interact", `{"type":"like"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400 for unknown type", w.Code)
	}
	if interactions.upserts != 0 || events.incremented != 0 {
		t.Fatal("no side effects expected for a rejected type")
	}
}

func TestRecordAnonymousViewAllowed(t *testing.T) {
	r, interactions, events := newInteractionRouter(t, uuid.Nil)

	w := interact(r, http.MethodPost, "/events/"+uuid.New().String()+"/interact", `{"type":"view"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200 for anonymous view", w.Code)
	}
	if events.incremented != 1 {
		t.Fatalf("got %d counter bumps, want 1", events.incremented)
	}
	if interactions.upserts != 0 {
		t.Fatal("anonymous view must not write an interaction row")
	}
}

func TestRecordAnonymousBookmarkUnauthorized(t *testing.T) {
	r, interactions, _ := newInteractionRouter(t, uuid.Nil)

	w := interact(r, http.MethodPost, "/events/"+uuid.New().String()+"/interact", `{"type":"bookmark"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401 for anonymous bookmark", w.Code)
	}
	if interactions.upserts != 0 {
		t.Fatal("no upsert expected for a rejected request")
	}
}

func TestRemoveAppendOnlyTypeIsBadRequest(t *testing.T) {
	r, interactions, _ := newInteractionRouter(t, uuid.New())

	w := interact(r, http.MethodDelete, "/events/"+uuid.New().String()+"/interact?type=view", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400 for non-removable type", w.Code)
	}
	if interactions.deletes != 0 {
		t.Fatal("no delete expected for a rejected type")
	}
}

func TestRemoveBookmarkSucceeds(t *testing.T) {
	r, interactions, _ := newInteractionRouter(t, uuid.New())

	w := interact(r, http.MethodDelete, "/events/"+uuid.New().String()+"/interact?type=bookmark", "")
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
	if interactions.deletes != 1 {
		t.Fatalf("got %d deletes, want 1", interactions.deletes)
	}
}
