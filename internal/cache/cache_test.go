package cache

import (
	"context"
	"testing"
	"time"

	"github.com/ManuGH/fieldpulse/internal/adm"
	"github.com/ManuGH/fieldpulse/internal/domain/model"
	"github.com/ManuGH/fieldpulse/internal/domain/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func sampleBriefing(t *testing.T) adm.Briefing {
	t.Helper()
	ranked := adm.Rank([]adm.Candidate{
		{AgentID: "A-1", DormantDays: 60, Category: model.CategoryCompensation, ReasonCode: model.CodeDelayedPayout},
		{AgentID: "A-2", DormantDays: 45},
	}, adm.DefaultPolicy())
	b, err := adm.BuildBriefing("ADM-7", ranked, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	return b
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Hour, 0)
	defer c.Close()
	ctx := context.Background()
	b := sampleBriefing(t)

	_, found, err := c.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, b))
	got, found, err := c.Get(ctx, b.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, b, got)

	assert.Equal(t, Stats{Hits: 1, Misses: 1, Sets: 1, CurrentSize: 1}, c.Stats())
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, 0)
	defer c.Close()
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()
	b := sampleBriefing(t)
	require.NoError(t, c.Set(ctx, b))

	now = now.Add(time.Minute)
	_, found, _ := c.Get(ctx, b.ID)
	assert.True(t, found, "expiry is exclusive of the TTL instant")

	now = now.Add(time.Second)
	_, found, _ = c.Get(ctx, b.ID)
	assert.False(t, found)

	assert.Equal(t, 1, c.deleteExpired())
	assert.Equal(t, int64(1), c.Stats().Evictions)
	assert.Equal(t, 0, c.Stats().CurrentSize)
}

func TestMemoryCache_Clear(t *testing.T) {
	c := NewMemoryCache(time.Hour, 0)
	defer c.Close()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, sampleBriefing(t)))
	require.NoError(t, c.Clear(ctx))
	assert.Equal(t, 0, c.Stats().CurrentSize)
}

func TestMemoryCache_JanitorStops(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	c := NewMemoryCache(time.Millisecond, time.Millisecond)
	require.NoError(t, c.Set(context.Background(), sampleBriefing(t)))
	assert.Eventually(t, func() bool { return c.Stats().CurrentSize == 0 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestNopCache(t *testing.T) {
	var c BriefingCache = NopCache{}
	ctx := context.Background()
	b := sampleBriefing(t)
	require.NoError(t, c.Set(ctx, b))
	_, found, err := c.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, Stats{}, c.Stats())
	assert.NoError(t, c.Clear(ctx))
	assert.NoError(t, c.Close())
}

func TestSampleBriefing_Shape(t *testing.T) {
	b := sampleBriefing(t)
	require.Len(t, b.Entries, 2)
	assert.Equal(t, "A-1", b.Entries[0].AgentID)
	assert.Equal(t, taxonomy.DefaultCode, b.Entries[1].Reason.Code)
}
