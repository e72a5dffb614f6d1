package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aidhunter-engine/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPersistAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	rec := record("rw:1", "Program Manager", "UNICEF", "Nairobi, Kenya", "budget management")
	rec.URL = "https://reliefweb.int/job/1"
	rec.DonorTags = []string{"USAID"}
	rec.FirstSeenAt = t0
	rec.LastSeenAt = t0
	rec.Score = 82
	rec.Status = domain.StatusScored
	rec.Breakdown = map[string]domain.Factor{
		domain.FactorTitle: {Raw: 1, Weighted: 30},
		domain.FactorDonor: {Raw: 1, Weighted: 10},
	}
	rec.Diagnostics = []string{"missing description: skills factor degraded to 0"}

	require.NoError(t, s.Persist(ctx, map[string]domain.JobRecord{rec.Fingerprint: rec}))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	got := loaded[rec.Fingerprint]
	assert.Equal(t, rec.Title, got.Title)
	assert.Equal(t, rec.DonorTags, got.DonorTags)
	assert.Equal(t, rec.Score, got.Score)
	assert.Equal(t, rec.Status, got.Status)
	assert.Equal(t, rec.Breakdown, got.Breakdown)
	assert.Equal(t, rec.Diagnostics, got.Diagnostics)
	assert.True(t, got.FirstSeenAt.Equal(t0))
}

func TestPersistUpsertsByFingerprint(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	rec := record("rw:1", "Program Manager", "UNICEF", "Kenya", "v1")
	rec.FirstSeenAt = t0
	rec.LastSeenAt = t0
	require.NoError(t, s.Persist(ctx, map[string]domain.JobRecord{rec.Fingerprint: rec}))

	rec.Description = "v2"
	rec.LastSeenAt = t0.Add(time.Hour)
	require.NoError(t, s.Persist(ctx, map[string]domain.JobRecord{rec.Fingerprint: rec}))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "v2", loaded[rec.Fingerprint].Description)
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	rec := record("rw:1", "Program Manager", "UNICEF", "Kenya", "d")
	rec.FirstSeenAt = t0
	rec.LastSeenAt = t0
	rec.Status = domain.StatusScored
	require.NoError(t, s.Persist(ctx, map[string]domain.JobRecord{rec.Fingerprint: rec}))

	require.NoError(t, s.SetStatus(ctx, rec.Fingerprint, domain.StatusDigested))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDigested, loaded[rec.Fingerprint].Status)

	assert.Error(t, s.SetStatus(ctx, "missing", domain.StatusDigested))
}

func TestRunLock(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.AcquireRunLock(ctx))
	require.NoError(t, s.ReleaseRunLock())
}
