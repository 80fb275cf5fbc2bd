package services

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"cogconverter/models"

	"github.com/redis/go-redis/v9"
)

type hashSetter interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// StatusService mirrors the latest outcome of every image into a redis
// hash so other tools can poll progress.
type StatusService struct {
	client hashSetter
	prefix string
}

func NewStatusService(client *redis.Client, prefix string) *StatusService {
	return &StatusService{client: client, prefix: prefix}
}

// StatusKey is <prefix>cog:status:<timestamp>:<basename>, or without the
// timestamp segment when the source has none.
func (s *StatusService) StatusKey(o *models.Outcome) string {
	base := filepath.Base(o.Source)
	if o.Timestamp == "" {
		return fmt.Sprintf("%scog:status:%s", s.prefix, base)
	}
	return fmt.Sprintf("%scog:status:%s:%s", s.prefix, o.Timestamp, base)
}

func (s *StatusService) RecordOutcome(ctx context.Context, o *models.Outcome) error {
	err := s.client.HSet(ctx, s.StatusKey(o), map[string]interface{}{
		"source":      o.Source,
		"status":      string(o.Status),
		"stage":       string(o.Stage),
		"destination": o.Destination,
		"url":         o.URL,
		"error":       o.ErrorMessage(),
		"duration_ms": o.Duration().Milliseconds(),
		"updated_at":  time.Now().Format(time.RFC3339),
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to update redis status: %w", err)
	}
	return nil
}
