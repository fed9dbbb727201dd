package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/bulletin-app/bulletin-api/internal/dto"
	"github.com/bulletin-app/bulletin-api/internal/repository"
)

type memoryKPIRepo struct {
	posts []repository.KPISample
	users []repository.KPISample
}

func inWindow(samples []repository.KPISample, start, end time.Time) []repository.KPISample {
	var matched []repository.KPISample
	for _, sample := range samples {
		if !sample.CreatedAt.Before(start) && sample.CreatedAt.Before(end) {
			matched = append(matched, sample)
		}
	}
	return matched
}

func oldestOf(samples []repository.KPISample) *time.Time {
	if len(samples) == 0 {
		return nil
	}
	oldest := samples[0].CreatedAt
	for _, sample := range samples[1:] {
		if sample.CreatedAt.Before(oldest) {
			oldest = sample.CreatedAt
		}
	}
	return &oldest
}

func (m *memoryKPIRepo) CountPosts(ctx context.Context, filter repository.KPIFilter, start, end time.Time) (int64, error) {
	return int64(len(inWindow(m.posts, start, end))), nil
}

func (m *memoryKPIRepo) ListPostSamples(ctx context.Context, filter repository.KPIFilter, start, end time.Time) ([]repository.KPISample, error) {
	return inWindow(m.posts, start, end), nil
}

func (m *memoryKPIRepo) OldestPostCreatedAt(ctx context.Context, filter repository.KPIFilter) (*time.Time, error) {
	return oldestOf(m.posts), nil
}

func (m *memoryKPIRepo) CountUsers(ctx context.Context, filter repository.KPIFilter, start, end time.Time) (int64, error) {
	return int64(len(inWindow(m.users, start, end))), nil
}

func (m *memoryKPIRepo) ListUserSamples(ctx context.Context, filter repository.KPIFilter, start, end time.Time) ([]repository.KPISample, error) {
	return inWindow(m.users, start, end), nil
}

func (m *memoryKPIRepo) OldestUserCreatedAt(ctx context.Context, filter repository.KPIFilter) (*time.Time, error) {
	return oldestOf(m.users), nil
}

func newKPIService(t *testing.T, repo repository.KPIRepository, cache *redis.Client) *kpiService {
	t.Helper()
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewKPIService(repo, validate, cache, time.Minute, testLogger()).(*kpiService)
	svc.now = func() time.Time { return time.Date(2026, 6, 15, 14, 30, 0, 0, time.UTC) }
	return svc
}

func TestCalculateChange(t *testing.T) {
	require.Equal(t, float64(0), calculateChange(0, 0))
	require.Equal(t, float64(100), calculateChange(5, 0))
	require.Equal(t, float64(50), calculateChange(3, 2))
	require.Equal(t, float64(-50), calculateChange(1, 2))
	require.Equal(t, 33.3, calculateChange(4, 3))
}

func TestKPIServiceThisMonthComparesToLastMonth(t *testing.T) {
	now := time.Date(2026, 6, 15, 14, 30, 0, 0, time.UTC)
	repo := &memoryKPIRepo{
		posts: []repository.KPISample{
			{CreatedAt: now.AddDate(0, 0, -1), Group: "Published"},
			{CreatedAt: now.AddDate(0, 0, -2), Group: "Published"},
			{CreatedAt: now.AddDate(0, 0, -3), Group: "Draft"},
			{CreatedAt: time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), Group: "Published"},
		},
	}
	svc := newKPIService(t, repo, nil)

	resp, err := svc.PostKPI(context.Background(), dto.KPIRequest{})
	require.NoError(t, err)
	require.Equal(t, "this_month", resp.TimeRange, "empty range defaults to this_month")
	require.Equal(t, int64(3), resp.Total)
	require.Equal(t, int64(1), resp.Previous)
	require.Equal(t, float64(200), resp.ChangePercent)
	require.Equal(t, int64(2), resp.Breakdown["Published"])
	require.Equal(t, int64(1), resp.Breakdown["Draft"])
	require.False(t, resp.CacheHit)
}

func TestKPIServiceTodaySeriesIsHourly(t *testing.T) {
	now := time.Date(2026, 6, 15, 14, 30, 0, 0, time.UTC)
	repo := &memoryKPIRepo{
		posts: []repository.KPISample{
			{CreatedAt: now.Add(-2 * time.Hour), Group: "Draft"},
			{CreatedAt: now.Add(-2 * time.Hour), Group: "Draft"},
		},
	}
	svc := newKPIService(t, repo, nil)

	resp, err := svc.PostKPI(context.Background(), dto.KPIRequest{TimeRange: "today"})
	require.NoError(t, err)
	require.Len(t, resp.Series, 15, "one bucket per elapsed hour, midnight through 14:00")
	require.Equal(t, "00:00", resp.Series[0].Label)
	require.Equal(t, "12:00", resp.Series[12].Label)
	require.Equal(t, int64(2), resp.Series[12].Count)
}

func TestKPIServiceThisWeekUsesWeekdayLabels(t *testing.T) {
	// 2026-06-15 is a Monday.
	now := time.Date(2026, 6, 15, 14, 30, 0, 0, time.UTC)
	repo := &memoryKPIRepo{
		users: []repository.KPISample{
			{CreatedAt: now.Add(-time.Hour), Group: "user"},
		},
	}
	svc := newKPIService(t, repo, nil)

	resp, err := svc.UserKPI(context.Background(), dto.KPIRequest{TimeRange: "this_week"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Series)
	require.Equal(t, "Monday", resp.Series[0].Label)
	require.Equal(t, int64(1), resp.Series[0].Count)
}

func TestKPIServiceAllTimeAnchorsOnOldestRow(t *testing.T) {
	oldest := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	repo := &memoryKPIRepo{
		posts: []repository.KPISample{
			{CreatedAt: oldest, Group: "Published"},
			{CreatedAt: oldest.AddDate(0, 2, 0), Group: "Published"},
		},
	}
	svc := newKPIService(t, repo, nil)

	resp, err := svc.PostKPI(context.Background(), dto.KPIRequest{TimeRange: "all_time"})
	require.NoError(t, err)
	require.Equal(t, int64(2), resp.Total)
	require.True(t, resp.WindowStart.Equal(oldest))
	require.Equal(t, "2026-02", resp.Series[0].Label)
}

func TestKPIServiceAllTimeEmptyHistory(t *testing.T) {
	svc := newKPIService(t, &memoryKPIRepo{}, nil)

	resp, err := svc.PostKPI(context.Background(), dto.KPIRequest{TimeRange: "all_time"})
	require.NoError(t, err)
	require.Equal(t, int64(0), resp.Total)
	require.Equal(t, float64(0), resp.ChangePercent)
	require.Equal(t, svc.now().AddDate(-1, 0, 0), resp.WindowStart, "empty history falls back to a one-year window")
}

func TestKPIServiceRejectsUnknownRange(t *testing.T) {
	svc := newKPIService(t, &memoryKPIRepo{}, nil)

	_, err := svc.PostKPI(context.Background(), dto.KPIRequest{TimeRange: "fortnight"})
	require.Error(t, err)
	var vErrs validator.ValidationErrors
	require.ErrorAs(t, err, &vErrs)
}

func TestKPIServiceCachesResponses(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})

	now := time.Date(2026, 6, 15, 14, 30, 0, 0, time.UTC)
	repo := &memoryKPIRepo{
		posts: []repository.KPISample{{CreatedAt: now.AddDate(0, 0, -1), Group: "Published"}},
	}
	svc := newKPIService(t, repo, client)

	first, err := svc.PostKPI(context.Background(), dto.KPIRequest{})
	require.NoError(t, err)
	require.False(t, first.CacheHit)

	// Mutating the repo must not affect the cached window.
	repo.posts = nil

	second, err := svc.PostKPI(context.Background(), dto.KPIRequest{})
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, first.Total, second.Total)

	// A different filter set misses the cache.
	third, err := svc.PostKPI(context.Background(), dto.KPIRequest{Status: "Draft"})
	require.NoError(t, err)
	require.False(t, third.CacheHit)
}
