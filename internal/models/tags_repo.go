package models

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/supabase-community/postgrest-go"
)

type TagsRepo interface {
	ListPredefinedTags(ctx context.Context) ([]PredefinedTag, error)
}

type QualityRepo interface {
	UpsertQualityScore(ctx context.Context, score *QualityScore) error
}

func (su *SupabaseRepo) ListPredefinedTags(ctx context.Context) ([]PredefinedTag, error) {
	raw, _, err := su.supabaseClient.From(PredefinedTagTable).
		Select("name,category", "", false).
		Order("name", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list predefined tags: %v", err)
	}

	var tags []PredefinedTag
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tag rows: %v", err)
	}
	return tags, nil
}

func (su *SupabaseRepo) UpsertQualityScore(ctx context.Context, score *QualityScore) error {
	if score == nil {
		return fmt.Errorf("quality score is nil")
	}
	if score.ScoredAt.IsZero() {
		score.ScoredAt = time.Now().UTC()
	}

	row := map[string]interface{}{
		"event_id":         score.EventID,
		"quality_score":    score.QualityScore,
		"spam_probability": score.SpamProbability,
		"is_spam":          score.IsSpam,
		"scored_at":        score.ScoredAt,
	}

	_, _, err := su.supabaseClient.From(QualityScoresTable).
		Insert(row, true, "event_id", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to upsert quality score: %v", err)
	}
	return nil
}
