package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/award-support/crm-service/internal/persistence"
	"github.com/award-support/crm-service/internal/repository"
	apperrors "github.com/award-support/crm-service/pkg/errorutil"
)

const dashboardCacheKey = "dashboard:metrics"

// DashboardService serves the aggregate figures behind the dashboard
// view, with a short-lived Redis cache in front of the store.
type DashboardService struct {
	repo     repository.DashboardRepository
	cache    *persistence.Redis
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewDashboardService constructs the service. A nil or unreachable
// cache degrades to querying the store on every call.
func NewDashboardService(repo repository.DashboardRepository, cache *persistence.Redis, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	return &DashboardService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Metrics returns the dashboard aggregation, served from cache when a
// fresh entry exists.
func (s *DashboardService) Metrics(ctx context.Context) (*repository.DashboardMetrics, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	metrics, err := s.repo.Metrics(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.store(ctx, metrics)
	return metrics, nil
}

func (s *DashboardService) fromCache(ctx context.Context) *repository.DashboardMetrics {
	if s.cache == nil || s.cache.Client == nil || s.cacheTTL <= 0 {
		return nil
	}
	raw, err := s.cache.Client.Get(ctx, dashboardCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var metrics repository.DashboardMetrics
	if err := json.Unmarshal(raw, &metrics); err != nil {
		s.logger.Warn("discarding malformed dashboard cache entry", zap.Error(err))
		return nil
	}
	return &metrics
}

func (s *DashboardService) store(ctx context.Context, metrics *repository.DashboardMetrics) {
	if s.cache == nil || s.cache.Client == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(metrics)
	if err != nil {
		return
	}
	if err := s.cache.Client.Set(ctx, dashboardCacheKey, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Debug("dashboard cache write failed", zap.Error(err))
	}
}
