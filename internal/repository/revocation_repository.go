package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked:token:"

// RevocationRepository keeps revoked token ids in Redis until the token would
// have expired anyway.
type RevocationRepository struct {
	client *redis.Client
}

// NewRevocationRepository constructs a revocation repository. A nil client
// disables revocation: nothing is stored and no token is reported revoked.
func NewRevocationRepository(client *redis.Client) *RevocationRepository {
	return &RevocationRepository{client: client}
}

// Revoke marks the token id as revoked until expiresAt.
func (r *RevocationRepository) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if r.client == nil || tokenID == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	key := revocationKey(tokenID)
	if err := r.client.Set(ctx, key, "revoked", ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// IsRevoked reports whether the token id has been revoked.
func (r *RevocationRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if r.client == nil || tokenID == "" {
		return false, nil
	}
	key := revocationKey(tokenID)
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	return n > 0, nil
}

func revocationKey(tokenID string) string {
	sum := sha256.Sum256([]byte(tokenID))
	return revokedKeyPrefix + hex.EncodeToString(sum[:])
}
