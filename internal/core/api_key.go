package core

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/machines/internal/model"
	"github.com/edvin/machines/internal/platform"
)

// APIKeyPrefix marks raw keys issued by this service.
const APIKeyPrefix = "mch_"

// APIKeyService issues and checks the keys front ends authenticate with.
type APIKeyService struct {
	db DB
}

func NewAPIKeyService(db DB) *APIKeyService {
	return &APIKeyService{db: db}
}

// HashAPIKey returns the stored form of a raw key.
func HashAPIKey(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(sum[:])
}

// Create generates a new key and stores its hash. The raw key is returned
// once and cannot be recovered afterwards.
func (s *APIKeyService) Create(ctx context.Context, name string, scopes []string) (*model.APIKey, string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, "", fmt.Errorf("generate api key: %w", err)
	}
	rawKey := APIKeyPrefix + hex.EncodeToString(raw)

	if len(scopes) == 0 {
		scopes = []string{model.ScopeMachines}
	}
	key := &model.APIKey{
		ID:        platform.NewID(),
		Name:      name,
		KeyPrefix: rawKey[:len(APIKeyPrefix)+8],
		Scopes:    scopes,
	}

	err := s.db.QueryRow(ctx,
		`INSERT INTO api_keys (id, name, key_hash, key_prefix, scopes, created_at)
		 VALUES ($1, $2, $3, $4, $5, now()) RETURNING created_at`,
		key.ID, key.Name, HashAPIKey(rawKey), key.KeyPrefix, key.Scopes,
	).Scan(&key.CreatedAt)
	if err != nil {
		return nil, "", fmt.Errorf("insert api key: %w", err)
	}
	return key, rawKey, nil
}

// Authenticate resolves a raw key to its active record. Unknown and
// revoked keys yield ErrAuthRequired.
func (s *APIKeyService) Authenticate(ctx context.Context, rawKey string) (*model.APIKey, error) {
	if rawKey == "" {
		return nil, ErrAuthRequired
	}
	var k model.APIKey
	err := s.db.QueryRow(ctx,
		`SELECT id, name, key_prefix, scopes, created_at FROM api_keys
		 WHERE key_hash = $1 AND revoked_at IS NULL`, HashAPIKey(rawKey),
	).Scan(&k.ID, &k.Name, &k.KeyPrefix, &k.Scopes, &k.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAuthRequired
		}
		return nil, fmt.Errorf("look up api key: %w", err)
	}
	return &k, nil
}

func (s *APIKeyService) List(ctx context.Context) ([]model.APIKey, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, key_prefix, scopes, created_at, revoked_at FROM api_keys ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []model.APIKey
	for rows.Next() {
		var k model.APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyPrefix, &k.Scopes, &k.CreatedAt, &k.RevokedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate api keys: %w", err)
	}
	return keys, nil
}

// Revoke soft-deletes a key. Revoking an unknown or revoked key is ErrNotFound.
func (s *APIKeyService) Revoke(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE api_keys SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("revoke api key %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
