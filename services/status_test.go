package services

import (
	"context"
	"errors"
	"testing"

	"cogconverter/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHash struct {
	key    string
	values map[string]interface{}
	err    error
}

func (f *fakeHash) HSet(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.key = key
	if len(values) == 1 {
		f.values, _ = values[0].(map[string]interface{})
	}
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	return redis.NewIntResult(int64(len(f.values)), nil)
}

func TestStatusService_RecordOutcome(t *testing.T) {
	h := &fakeHash{}
	svc := &StatusService{client: h, prefix: "eo:"}

	err := svc.RecordOutcome(context.Background(), &models.Outcome{
		Source:    "/in/scene_20230101_120000.tif",
		Timestamp: "20230101_120000",
		Status:    models.StatusFailed,
		Stage:     models.StageRelocate,
		Err:       errors.New("failed to upload to S3: AccessDenied"),
	})
	require.NoError(t, err)

	assert.Equal(t, "eo:cog:status:20230101_120000:scene_20230101_120000.tif", h.key)
	assert.Equal(t, "failed", h.values["status"])
	assert.Equal(t, "relocate", h.values["stage"])
	assert.Equal(t, "failed to upload to S3: AccessDenied", h.values["error"])
}

func TestStatusService_KeyWithoutTimestamp(t *testing.T) {
	svc := &StatusService{client: &fakeHash{}}
	assert.Equal(t, "cog:status:plainname.tif", svc.StatusKey(&models.Outcome{Source: "/in/plainname.tif"}))
}

func TestStatusService_RecordOutcomeError(t *testing.T) {
	svc := &StatusService{client: &fakeHash{err: errors.New("dial tcp: connection refused")}}

	err := svc.RecordOutcome(context.Background(), &models.Outcome{Source: "a.tif"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
