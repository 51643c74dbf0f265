package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/yardimli/learn-with-ai-sub000/pkg/errors"
)

type cacheRepoStub struct {
	values   map[string]string
	ttls     map[string]time.Duration
	getErr   error
	patterns []string
}

func newCacheRepoStub() *cacheRepoStub {
	return &cacheRepoStub{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *cacheRepoStub) Get(_ context.Context, key string, dest interface{}) error {
	if s.getErr != nil {
		return s.getErr
	}
	value, ok := s.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if ptr, ok := dest.(*string); ok {
		*ptr = value
	}
	return nil
}

func (s *cacheRepoStub) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	s.values[key], _ = value.(string)
	s.ttls[key] = ttl
	return nil
}

func (s *cacheRepoStub) DeleteByPattern(_ context.Context, pattern string) error {
	s.patterns = append(s.patterns, pattern)
	return nil
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	repo := newCacheRepoStub()
	svc := NewCacheService(repo, nil, time.Minute, nil, false)

	assert.False(t, svc.Enabled())
	require.NoError(t, svc.Set(context.Background(), "k", "v", 0))
	hit, err := svc.Get(context.Background(), "k", new(string))
	require.NoError(t, err)
	assert.False(t, hit)
	require.NoError(t, svc.Invalidate(context.Background(), "calendar:plan:*"))
	assert.Empty(t, repo.values)
	assert.Empty(t, repo.patterns)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
}

func TestCacheServiceRoundTripRecordsMetrics(t *testing.T) {
	repo := newCacheRepoStub()
	metrics := NewMetricsService()
	svc := NewCacheService(repo, metrics, 5*time.Minute, nil, true)
	ctx := context.Background()

	var dest string
	hit, err := svc.Get(ctx, "calendar:plan:1", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "calendar:plan:1", "cached", 0))
	assert.Equal(t, 5*time.Minute, repo.ttls["calendar:plan:1"])

	hit, err = svc.Get(ctx, "calendar:plan:1", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "cached", dest)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
	assert.InDelta(t, 0.5, snapshot.CacheHitRatio, 0.0001)

	require.NoError(t, svc.Invalidate(ctx, "calendar:plan:*"))
	assert.Equal(t, []string{"calendar:plan:*"}, repo.patterns)
}

func TestCacheServiceGetSurfacesBackendErrors(t *testing.T) {
	repo := newCacheRepoStub()
	repo.getErr = errors.New("redis down")
	svc := NewCacheService(repo, nil, time.Minute, nil, true)

	hit, err := svc.Get(context.Background(), "k", new(string))
	assert.False(t, hit)
	assert.EqualError(t, err, "redis down")
}
