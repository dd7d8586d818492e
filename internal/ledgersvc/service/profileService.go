package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/tableside/poker-services/internal/ledgersvc/models"
	"github.com/tableside/poker-services/internal/ledgersvc/store"
)

type ProfileService struct {
	store *store.ProfileStore
}

func NewProfileService(store *store.ProfileStore) *ProfileService {
	return &ProfileService{store: store}
}

func (s *ProfileService) GetByID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	return s.store.GetByID(ctx, userID)
}

func (s *ProfileService) GetByTag(ctx context.Context, tag string) (*models.Profile, error) {
	return s.store.GetByTag(ctx, tag)
}
