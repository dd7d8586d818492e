package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tableside/poker-services/internal/ledgersvc/ledger"
	"github.com/tableside/poker-services/internal/ledgersvc/models"
)

const profileColumns = "id, username, user_tag, nickname, default_buyin, created_at, updated_at"

type ProfileStore struct {
	db *pgxpool.Pool
}

func NewProfileStore(db *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{db: db}
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	p := &models.Profile{}
	err := row.Scan(
		&p.ID,
		&p.Username,
		&p.UserTag,
		&p.Nickname,
		&p.DefaultBuyin,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProfileStore) GetByID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE id = $1
	`

	p, err := scanProfile(s.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.NotFoundf("profile %s not found", userID)
		}
		return nil, fmt.Errorf("failed to get profile by ID: %w", err)
	}

	return p, nil
}

// GetByTag resolves a shareable handle like "#4821"; the leading hash is
// optional.
func (s *ProfileStore) GetByTag(ctx context.Context, tag string) (*models.Profile, error) {
	tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")

	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE user_tag = $1
	`

	p, err := scanProfile(s.db.QueryRow(ctx, query, tag))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.NotFoundf("no profile with tag %s", tag)
		}
		return nil, fmt.Errorf("failed to get profile by tag: %w", err)
	}

	return p, nil
}
