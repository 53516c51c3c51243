package recommend

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/locallore/server/internal/models"
)

type fakeCorpus struct{}

func (fakeCorpus) ListEventProjections(ctx context.Context) ([]models.EventProjection, error) {
	return []models.EventProjection{}, nil
}

func (fakeCorpus) ListAllInteractions(ctx context.Context) ([]models.Interaction, error) {
	return []models.Interaction{}, nil
}

func (fakeCorpus) ListUserProjections(ctx context.Context) ([]models.UserProjection, error) {
	return []models.UserProjection{}, nil
}

func newTestGateway(t *testing.T, timeout time.Duration, handler http.HandlerFunc) *Gateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewGateway(server.URL, timeout, fakeCorpus{}, testLogger())
}

func TestFetchRecommendationsTimeout(t *testing.T) {
	timeout := 50 * time.Millisecond
	gw := newTestGateway(t, timeout, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(10 * timeout)
		fmt.Fprint(w, `{"recommended_events":[]}`)
	})

	start := time.Now()
	recs := gw.FetchRecommendations(context.Background(), uuid.New(), nil, 20)
	elapsed := time.Since(start)

	if recs != nil {
		t.Fatalf("expected nil on timeout, got %v", recs)
	}
	if elapsed > timeout+200*time.Millisecond {
		t.Fatalf("fetch took %v, should settle near the %v budget", elapsed, timeout)
	}
}

func TestFetchRecommendationsFiltersInvalidIDs(t *testing.T) {
	valid := uuid.New()
	gw := newTestGateway(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"recommended_events":[
			{"event_id":%q,"score":0.9,"title":"a","description":"b"},
			{"event_id":"abc123","score":0.8,"title":"c","description":"d"}
		]}`, valid)
	})

	recs := gw.FetchRecommendations(context.Background(), uuid.New(), []string{"Music"}, 20)
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1 after filtering", len(recs))
	}
	if recs[0].EventID != valid {
		t.Fatalf("surviving id = %s, want %s", recs[0].EventID, valid)
	}
	if recs[0].Score != 0.9 {
		t.Fatalf("score = %v, want 0.9", recs[0].Score)
	}
}

func TestFetchRecommendationsAllInvalidIsFailure(t *testing.T) {
	gw := newTestGateway(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"recommended_events":[{"event_id":"not-a-uuid","title":"x","description":"y"}]}`)
	})

	if recs := gw.FetchRecommendations(context.Background(), uuid.New(), nil, 20); recs != nil {
		t.Fatalf("expected nil when no entry survives filtering, got %v", recs)
	}
}

func TestFetchRecommendationsBadStatus(t *testing.T) {
	gw := newTestGateway(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	})

	if recs := gw.FetchRecommendations(context.Background(), uuid.New(), nil, 20); recs != nil {
		t.Fatalf("expected nil on 503, got %v", recs)
	}
}

func TestFetchRecommendationsMalformedBody(t *testing.T) {
	gw := newTestGateway(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"recommended_events": "oops"`)
	})

	if recs := gw.FetchRecommendations(context.Background(), uuid.New(), nil, 20); recs != nil {
		t.Fatalf("expected nil on malformed body, got %v", recs)
	}
}

func TestSuggestTagsFallsBackOnTimeout(t *testing.T) {
	timeout := 50 * time.Millisecond
	gw := newTestGateway(t, timeout, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(10 * timeout)
	})

	suggestion := gw.SuggestTags(context.Background(), "Free pizza study group", "")
	if suggestion.FromModel {
		t.Fatal("expected rule-based fallback after timeout")
	}
	if len(suggestion.Tags) == 0 {
		t.Fatal("fallback should still produce tags")
	}
}

func TestSuggestTagsUsesModelResult(t *testing.T) {
	gw := newTestGateway(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tags":["Music","Cultural"],"confidence_scores":{"Music":0.91,"Cultural":0.73}}`)
	})

	suggestion := gw.SuggestTags(context.Background(), "Jazz night", "live band on the lawn")
	if !suggestion.FromModel {
		t.Fatal("expected model-backed suggestion")
	}
	if len(suggestion.Tags) != 2 || suggestion.Tags[0] != "Music" {
		t.Fatalf("unexpected tags %v", suggestion.Tags)
	}
	if suggestion.Confidences["Music"] != 0.91 {
		t.Fatalf("unexpected confidences %v", suggestion.Confidences)
	}
}

func TestScoreQualityUnavailable(t *testing.T) {
	gw := newTestGateway(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	})

	if verdict := gw.ScoreQuality(context.Background(), "title", "desc"); verdict != nil {
		t.Fatalf("expected nil verdict, got %v", verdict)
	}
}

func TestHealth(t *testing.T) {
	gw := newTestGateway(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	if !gw.Health(context.Background()) {
		t.Fatal("expected healthy")
	}
}
