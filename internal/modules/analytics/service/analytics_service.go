package service

import (
	"context"
	"time"

	"github.com/apex/log"
	"github.com/patrickmn/go-cache"

	"daing/internal/modules/analytics/domain"
	analyticsout "daing/internal/modules/analytics/port/out"
	apperrors "daing/internal/platform/errors"
)

type AnalyticsService struct {
	source analyticsout.SummarySource
	cache  *cache.Cache
	logger log.Interface
}

// NewAnalyticsService caches successful summaries for ttl. A non-positive
// ttl disables caching.
func NewAnalyticsService(source analyticsout.SummarySource, ttl time.Duration, logger log.Interface) *AnalyticsService {
	s := &AnalyticsService{source: source, logger: logger}
	if ttl > 0 {
		s.cache = cache.New(ttl, ttl*2)
	}
	return s
}

// Summary returns the backend aggregate, served from cache unless refresh is
// set. Failures degrade to the zero summary and are never cached. Callers get
// their own copy of the cached maps.
func (s *AnalyticsService) Summary(ctx context.Context, refresh bool) (domain.Summary, bool) {
	key := s.source.Endpoint()
	if s.cache != nil && !refresh {
		if cached, found := s.cache.Get(key); found {
			return cached.(domain.Summary).Clone(), true
		}
	}

	summary, err := s.source.Fetch(ctx)
	if err != nil {
		s.logger.WithFields(log.Fields{
			"endpoint": key,
			"kind":     apperrors.KindOf(err),
		}).WithError(err).Warn("analytics fetch failed, showing zeroed summary")
		return domain.Zero(), false
	}
	if s.cache != nil {
		s.cache.Set(key, summary.Clone(), cache.DefaultExpiration)
	}
	s.logger.WithFields(log.Fields{"endpoint": key, "total_scans": summary.TotalScans}).Debug("analytics summary fetched")
	return summary, false
}
