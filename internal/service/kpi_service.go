package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bulletin-app/bulletin-api/internal/dto"
	"github.com/bulletin-app/bulletin-api/internal/repository"
)

// KPIService computes windowed counts with period-over-period comparison for
// posts and users.
type KPIService interface {
	PostKPI(ctx context.Context, req dto.KPIRequest) (dto.KPIResponse, error)
	UserKPI(ctx context.Context, req dto.KPIRequest) (dto.KPIResponse, error)
}

type kpiService struct {
	repo      repository.KPIRepository
	validator *validator.Validate
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewKPIService constructs the KPI service. The cache client may be nil.
func NewKPIService(repo repository.KPIRepository, validator *validator.Validate, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) KPIService {
	return &kpiService{
		repo:      repo,
		validator: validator,
		cache:     cache,
		cacheTTL:  ttl,
		logger:    logger.With().Str("component", "kpi_service").Logger(),
		now:       time.Now,
	}
}

// window is a half-open interval [Start, End).
type window struct {
	Start time.Time
	End   time.Time
}

// Bucket granularities for the KPI series.
const (
	granularityHourly  = "hourly"
	granularityWeekday = "weekday"
	granularityDaily   = "daily"
	granularityMonthly = "monthly"
)

func (s *kpiService) PostKPI(ctx context.Context, req dto.KPIRequest) (dto.KPIResponse, error) {
	return s.compute(ctx, "posts", req)
}

func (s *kpiService) UserKPI(ctx context.Context, req dto.KPIRequest) (dto.KPIResponse, error) {
	return s.compute(ctx, "users", req)
}

func (s *kpiService) compute(ctx context.Context, resource string, req dto.KPIRequest) (dto.KPIResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.KPIResponse{}, err
	}

	timeRange := req.TimeRange
	if timeRange == "" {
		timeRange = "this_month"
	}

	cacheKey := fmt.Sprintf("kpi:%s:%s:%s:%s:%s:%s", resource, timeRange, req.Search, req.Category, req.Status, req.Role)
	tracer := otel.Tracer("github.com/bulletin-app/bulletin-api/internal/service/kpi")
	ctx, span := tracer.Start(ctx, "kpi.aggregate")
	span.SetAttributes(
		attribute.String("kpi.resource", resource),
		attribute.String("kpi.time_range", timeRange),
	)
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.KPIResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("kpi.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read kpi cache")
			span.RecordError(err)
		}
	}

	filter := repository.KPIFilter{
		Search:   req.Search,
		Category: req.Category,
		Status:   req.Status,
		Role:     req.Role,
	}

	current, previous, granularity, err := s.resolveWindows(ctx, resource, filter, timeRange)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "window_resolution_failed")
		return dto.KPIResponse{}, err
	}

	currentCount, err := s.count(ctx, resource, filter, current)
	if err != nil {
		span.RecordError(err)
		return dto.KPIResponse{}, err
	}

	previousCount, err := s.count(ctx, resource, filter, previous)
	if err != nil {
		span.RecordError(err)
		return dto.KPIResponse{}, err
	}

	samples, err := s.samples(ctx, resource, filter, current)
	if err != nil {
		span.RecordError(err)
		return dto.KPIResponse{}, err
	}

	breakdown := make(map[string]int64)
	for _, sample := range samples {
		breakdown[sample.Group]++
	}

	response := dto.KPIResponse{
		TimeRange:     timeRange,
		Total:         currentCount,
		Previous:      previousCount,
		ChangePercent: calculateChange(currentCount, previousCount),
		Breakdown:     breakdown,
		Series:        buildSeries(samples, current, granularity),
		WindowStart:   current.Start,
		WindowEnd:     current.End,
		GeneratedAt:   s.now(),
	}

	span.SetAttributes(
		attribute.Int64("kpi.current_count", currentCount),
		attribute.Int64("kpi.previous_count", previousCount),
	)

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store kpi cache")
				span.RecordError(err)
			}
		}
	}

	return response, nil
}

// resolveWindows maps a time range onto the current window, the
// immediately-preceding window of equal duration, and the series granularity.
func (s *kpiService) resolveWindows(ctx context.Context, resource string, filter repository.KPIFilter, timeRange string) (window, window, string, error) {
	now := s.now()

	switch timeRange {
	case "today":
		start := startOfDay(now)
		return window{start, now}, window{start.AddDate(0, 0, -1), start}, granularityHourly, nil
	case "this_week":
		start := startOfWeek(now)
		return window{start, now}, window{start.AddDate(0, 0, -7), start}, granularityWeekday, nil
	case "this_month":
		start := startOfMonth(now)
		return window{start, now}, window{start.AddDate(0, -1, 0), start}, granularityDaily, nil
	case "last_month":
		end := startOfMonth(now)
		start := end.AddDate(0, -1, 0)
		return window{start, end}, window{start.AddDate(0, -1, 0), start}, granularityDaily, nil
	case "this_year":
		start := startOfYear(now)
		return window{start, now}, window{start.AddDate(-1, 0, 0), start}, granularityMonthly, nil
	case "all_time":
		oldest, err := s.oldest(ctx, resource, filter)
		if err != nil {
			return window{}, window{}, "", err
		}
		start := now.AddDate(-1, 0, 0)
		if oldest != nil && oldest.Before(now) {
			start = *oldest
		}
		return window{start, now}, window{start.AddDate(0, 0, -365), start}, granularityMonthly, nil
	default:
		return window{}, window{}, "", fmt.Errorf("unknown time range %q", timeRange)
	}
}

func (s *kpiService) count(ctx context.Context, resource string, filter repository.KPIFilter, w window) (int64, error) {
	if resource == "users" {
		return s.repo.CountUsers(ctx, filter, w.Start, w.End)
	}
	return s.repo.CountPosts(ctx, filter, w.Start, w.End)
}

func (s *kpiService) samples(ctx context.Context, resource string, filter repository.KPIFilter, w window) ([]repository.KPISample, error) {
	if resource == "users" {
		return s.repo.ListUserSamples(ctx, filter, w.Start, w.End)
	}
	return s.repo.ListPostSamples(ctx, filter, w.Start, w.End)
}

func (s *kpiService) oldest(ctx context.Context, resource string, filter repository.KPIFilter) (*time.Time, error) {
	if resource == "users" {
		return s.repo.OldestUserCreatedAt(ctx, filter)
	}
	return s.repo.OldestPostCreatedAt(ctx, filter)
}

// calculateChange returns the percent change between windows. A previous
// count of zero yields 100 when anything exists now and 0 otherwise, so an
// empty history never divides by zero.
func calculateChange(current, previous int64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}

	change := (float64(current) - float64(previous)) / float64(previous) * 100
	return math.Round(change*10) / 10
}

// buildSeries produces one chronological bucket per granularity step across
// the window, including empty buckets, so charts render contiguous axes.
func buildSeries(samples []repository.KPISample, w window, granularity string) []dto.KPIBucket {
	labels := make([]string, 0)
	counts := make(map[string]int64)

	for cursor := bucketStart(w.Start, granularity); cursor.Before(w.End); cursor = bucketStep(cursor, granularity) {
		label := bucketLabel(cursor, granularity)
		if _, seen := counts[label]; !seen {
			labels = append(labels, label)
			counts[label] = 0
		}
	}

	for _, sample := range samples {
		label := bucketLabel(sample.CreatedAt, granularity)
		if _, seen := counts[label]; !seen {
			labels = append(labels, label)
		}
		counts[label]++
	}

	series := make([]dto.KPIBucket, 0, len(labels))
	for _, label := range labels {
		series = append(series, dto.KPIBucket{Label: label, Count: counts[label]})
	}
	return series
}

func bucketStart(t time.Time, granularity string) time.Time {
	switch granularity {
	case granularityHourly:
		return t.Truncate(time.Hour)
	case granularityMonthly:
		return startOfMonth(t)
	default:
		return startOfDay(t)
	}
}

func bucketStep(t time.Time, granularity string) time.Time {
	switch granularity {
	case granularityHourly:
		return t.Add(time.Hour)
	case granularityMonthly:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

func bucketLabel(t time.Time, granularity string) string {
	switch granularity {
	case granularityHourly:
		return t.Format("15:00")
	case granularityWeekday:
		return t.Weekday().String()
	case granularityMonthly:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}
