package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/locallore/server/internal/models"
	"github.com/locallore/server/internal/recommend"
)

// DiscoveryService fronts the three discovery feeds. "For You" runs
// the full personalization pipeline; popular and latest are plain
// ordered listings.
type DiscoveryService struct {
	assembler *recommend.Assembler
	events    models.EventsRepo
}

func NewDiscoveryService(assembler *recommend.Assembler, events models.EventsRepo) *DiscoveryService {
	return &DiscoveryService{
		assembler: assembler,
		events:    events,
	}
}

func (ds *DiscoveryService) ForYou(ctx context.Context, userID uuid.UUID, page int) ([]*models.Event, error) {
	if userID == uuid.Nil {
		return nil, models.ErrAuthenticationRequired
	}
	return ds.assembler.ForYou(ctx, userID, page)
}

func (ds *DiscoveryService) Popular(ctx context.Context, page int) ([]*models.Event, error) {
	offset, limit, err := pageWindow(page)
	if err != nil {
		return nil, err
	}
	return ds.events.ListActiveEvents(ctx, models.OrderPopular, offset, limit)
}

func (ds *DiscoveryService) Latest(ctx context.Context, page int) ([]*models.Event, error) {
	offset, limit, err := pageWindow(page)
	if err != nil {
		return nil, err
	}
	return ds.events.ListActiveEvents(ctx, models.OrderNewest, offset, limit)
}

func pageWindow(page int) (offset, limit int, err error) {
	if page < 1 {
		return 0, 0, fmt.Errorf("page must be >= 1")
	}
	limit = recommend.PageSize
	offset = (page - 1) * limit
	return offset, limit, nil
}
