package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/locallore/server/internal/models"
)

// uuidPattern accepts 8-4-4-4-12 hex groups with a version nibble in
// 1-5 and an RFC 4122 variant nibble. ML responses occasionally carry
// synthetic ids like "abc123"; those are dropped, not fatal.
var uuidPattern = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

type CorpusSource interface {
	ListEventProjections(ctx context.Context) ([]models.EventProjection, error)
	ListAllInteractions(ctx context.Context) ([]models.Interaction, error)
	ListUserProjections(ctx context.Context) ([]models.UserProjection, error)
}

// Recommendation is one validated (event, score) pair from the ML
// service.
type Recommendation struct {
	EventID uuid.UUID
	Score   float64
}

// TagSuggestion is the auto-tagging result, ML-backed or rule-based.
type TagSuggestion struct {
	Tags        []string           `json:"tags"`
	Confidences map[string]float64 `json:"confidence_scores"`
	FromModel   bool               `json:"from_model"`
}

// QualityVerdict is the advisory spam/quality assessment.
type QualityVerdict struct {
	QualityScore    float64 `json:"quality_score"`
	SpamProbability float64 `json:"spam_probability"`
	IsSpam          bool    `json:"is_spam"`
}

// Gateway talks to the external ML microservice. Every call is raced
// against the configured timeout and degrades to nil / rule-based
// output; the gateway never returns an error to its callers.
type Gateway struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
	corpus  CorpusSource
	logger  *slog.Logger
}

func NewGateway(baseURL string, timeout time.Duration, corpus CorpusSource, logger *slog.Logger) *Gateway {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Gateway{
		baseURL: baseURL,
		timeout: timeout,
		// The transport deadline is deliberately looser than the race
		// timer: a losing call is abandoned, not cancelled, and its
		// late response is ignored.
		client: &http.Client{Timeout: 30 * time.Second},
		corpus: corpus,
		logger: logger,
	}
}

type recommendRequest struct {
	UserID       string                   `json:"user_id"`
	Preferences  []string                 `json:"preferences"`
	Limit        int                      `json:"limit"`
	Events       []models.EventProjection `json:"events"`
	Interactions []models.Interaction     `json:"interactions"`
	Users        []models.UserProjection  `json:"users"`
}

type recommendedEvent struct {
	EventID     string   `json:"event_id"`
	Score       float64  `json:"score"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type recommendResponse struct {
	RecommendedEvents []recommendedEvent `json:"recommended_events"`
}

// FetchRecommendations asks the model for a personalized ranking. It
// ships the full current corpus per call (the model is stateless; bulk
// transfer is a deliberate simplicity-over-efficiency tradeoff) and
// returns nil on timeout, transport error, bad status, malformed body,
// or an empty post-filter result. The caller treats nil as "use the
// rule-based fallback".
func (g *Gateway) FetchRecommendations(ctx context.Context, userID uuid.UUID, preferences []string, limit int) []Recommendation {
	events, err := g.corpus.ListEventProjections(ctx)
	if err != nil {
		g.logger.Warn("ml corpus fetch failed", "stage", "events", "error", err)
		return nil
	}
	interactions, err := g.corpus.ListAllInteractions(ctx)
	if err != nil {
		g.logger.Warn("ml corpus fetch failed", "stage", "interactions", "error", err)
		return nil
	}
	users, err := g.corpus.ListUserProjections(ctx)
	if err != nil {
		g.logger.Warn("ml corpus fetch failed", "stage", "users", "error", err)
		return nil
	}

	if preferences == nil {
		preferences = []string{}
	}
	payload := recommendRequest{
		UserID:       userID.String(),
		Preferences:  preferences,
		Limit:        limit,
		Events:       events,
		Interactions: interactions,
		Users:        users,
	}

	type raceResult struct {
		recs []Recommendation
		err  error
	}
	// Buffered so the losing goroutine can complete and be collected
	// after the race is decided.
	resultCh := make(chan raceResult, 1)
	go func() {
		recs, err := g.callRecommend(payload)
		resultCh <- raceResult{recs: recs, err: err}
	}()

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	select {
	case result := <-resultCh:
		if result.err != nil {
			g.logger.Warn("ml recommendation call failed, falling back", "error", result.err)
			return nil
		}
		if len(result.recs) == 0 {
			g.logger.Info("ml returned no usable recommendations, falling back")
			return nil
		}
		g.logger.Info("ml recommendations accepted", "count", len(result.recs))
		return result.recs
	case <-timer.C:
		g.logger.Warn("ml recommendation call timed out, falling back", "timeout", g.timeout)
		return nil
	}
}

func (g *Gateway) callRecommend(payload recommendRequest) ([]Recommendation, error) {
	body, err := g.post("/recommend-events", payload)
	if err != nil {
		return nil, err
	}

	var parsed recommendResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("malformed recommendation response: %v", err)
	}

	recs := make([]Recommendation, 0, len(parsed.RecommendedEvents))
	for _, entry := range parsed.RecommendedEvents {
		if !uuidPattern.MatchString(entry.EventID) {
			g.logger.Debug("dropping recommendation with invalid event id", "event_id", entry.EventID)
			continue
		}
		id, err := uuid.Parse(entry.EventID)
		if err != nil {
			continue
		}
		recs = append(recs, Recommendation{EventID: id, Score: entry.Score})
	}
	return recs, nil
}

type tagRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type tagResponse struct {
	Tags             []string           `json:"tags"`
	ConfidenceScores map[string]float64 `json:"confidence_scores"`
}

// SuggestTags races the tagging endpoint against the timeout and falls
// back to the keyword table when the model is unavailable or silent.
func (g *Gateway) SuggestTags(ctx context.Context, title, description string) TagSuggestion {
	fallback := RuleBasedTags(title + " " + description)

	type raceResult struct {
		resp tagResponse
		err  error
	}
	resultCh := make(chan raceResult, 1)
	go func() {
		body, err := g.post("/tag-event", tagRequest{Title: title, Description: description})
		if err != nil {
			resultCh <- raceResult{err: err}
			return
		}
		var parsed tagResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			resultCh <- raceResult{err: fmt.Errorf("malformed tag response: %v", err)}
			return
		}
		resultCh <- raceResult{resp: parsed}
	}()

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	select {
	case result := <-resultCh:
		if result.err != nil || len(result.resp.Tags) == 0 {
			if result.err != nil {
				g.logger.Warn("ml tagging failed, using rule-based tags", "error", result.err)
			}
			return fallback
		}
		tags := result.resp.Tags
		if len(tags) > maxSuggestedTags {
			tags = tags[:maxSuggestedTags]
		}
		confidences := result.resp.ConfidenceScores
		if confidences == nil {
			confidences = map[string]float64{}
		}
		return TagSuggestion{Tags: tags, Confidences: confidences, FromModel: true}
	case <-timer.C:
		g.logger.Warn("ml tagging timed out, using rule-based tags", "timeout", g.timeout)
		return fallback
	}
}

// ScoreQuality asks the model for an advisory quality verdict. A nil
// result means the model was unavailable; callers never block on it.
func (g *Gateway) ScoreQuality(ctx context.Context, title, description string) *QualityVerdict {
	type raceResult struct {
		verdict *QualityVerdict
		err     error
	}
	resultCh := make(chan raceResult, 1)
	go func() {
		body, err := g.post("/score-quality", tagRequest{Title: title, Description: description})
		if err != nil {
			resultCh <- raceResult{err: err}
			return
		}
		var verdict QualityVerdict
		if err := json.Unmarshal(body, &verdict); err != nil {
			resultCh <- raceResult{err: fmt.Errorf("malformed quality response: %v", err)}
			return
		}
		resultCh <- raceResult{verdict: &verdict}
	}()

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	select {
	case result := <-resultCh:
		if result.err != nil {
			g.logger.Warn("ml quality scoring failed", "error", result.err)
			return nil
		}
		return result.verdict
	case <-timer.C:
		g.logger.Warn("ml quality scoring timed out", "timeout", g.timeout)
		return nil
	}
}

// Health probes the ML service liveness endpoint.
func (g *Gateway) Health(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (g *Gateway) post(endpoint string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, g.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ml service returned %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
