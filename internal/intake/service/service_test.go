package service

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"hydration/internal/events"
	"hydration/internal/intake/models"
	"hydration/internal/intake/store"
	"hydration/internal/platform/logger"
	"hydration/internal/platform/messages"
	"hydration/internal/platform/metrics"
	"hydration/internal/policy"
	id "hydration/pkg/domain"
	dErrors "hydration/pkg/domain-errors"
	"hydration/pkg/requestcontext"
	"hydration/pkg/temporal"
)

type fixedGoal int

func (g fixedGoal) DailyGoal(context.Context, id.UserID) (int, error) { return int(g), nil }

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*models.DailySummary
	failGet bool

	failInvalidate bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*models.DailySummary)}
}

func (c *memoryCache) Get(_ context.Context, userID id.UserID, date string) (*models.DailySummary, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return nil, false, errors.New("cache down")
	}
	s, ok := c.entries[userID.String()+date]
	return s, ok, nil
}

func (c *memoryCache) Set(_ context.Context, userID id.UserID, s *models.DailySummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID.String()+s.Date] = s
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, userID id.UserID, date string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failInvalidate {
		return errors.New("cache down")
	}
	delete(c.entries, userID.String()+date)
	return nil
}

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	cache   *memoryCache
	events  *events.Publisher
	metrics *metrics.Metrics
	service *Service
	userID  id.UserID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC))
	s.cache = newMemoryCache()
	s.events = events.NewPublisher("hydration", 16, logger.Discard(), nil)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = New(store.NewInMemoryStore(), fixedGoal(2000), policy.Static(policy.Default()), logger.Discard(),
		WithSummaryCache(s.cache),
		WithEvents(s.events),
		WithMetrics(s.metrics),
	)
	s.userID = id.NewUserID()
}

func (s *ServiceSuite) log(volume int, consumedAt string) *models.Intake {
	intake, err := s.service.Log(s.ctx, s.userID, models.LogRequest{VolumeMl: ptr(volume), ConsumedAt: ptr(consumedAt)})
	s.Require().NoError(err)
	return intake
}

func (s *ServiceSuite) TestLog() {
	s.Run("valid intake", func() {
		intake := s.log(250, "2024-06-15T09:30:00Z")
		s.Equal(250, intake.VolumeMl)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.IntakesLogged))

		e := <-s.events.Inbox()
		s.Equal(events.TypeIntakeLogged, e.Type)
	})

	s.Run("violations", func() {
		_, err := s.service.Log(s.ctx, s.userID, models.LogRequest{
			VolumeMl:   ptr(6000),
			ConsumedAt: ptr("2024-06-15T19:00:00Z"),
		})
		s.Equal([]string{
			"volumeMl=" + messages.KeyIntakeVolumeRange,
			"consumedAt=" + temporal.KeyMustPast,
		}, violationKeys(err))
	})

	s.Run("outside the backfill window", func() {
		_, err := s.service.Log(s.ctx, s.userID, models.LogRequest{
			VolumeMl:   ptr(300),
			ConsumedAt: ptr("2024-06-01T09:00:00Z"),
		})
		s.Equal([]string{"consumedAt=" + messages.KeyIntakeBackfill}, violationKeys(err))
	})

	s.Run("missing fields", func() {
		_, err := s.service.Log(s.ctx, s.userID, models.LogRequest{})
		s.Equal([]string{
			"volumeMl=" + messages.KeyRequired,
			"consumedAt=" + messages.KeyRequired,
		}, violationKeys(err))
	})
}

func (s *ServiceSuite) TestTodayUsesCacheAndInvalidation() {
	s.log(500, "2024-06-15T08:00:00Z")
	s.log(250, "2024-06-14T23:59:59Z")

	summary, err := s.service.Today(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(500, summary.TotalMl)
	s.Equal(1, summary.Count)
	s.Equal(1500, summary.RemainingMl)
	s.Equal(25, summary.Percent)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.SummaryCache.WithLabelValues("miss")))

	_, err = s.service.Today(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.SummaryCache.WithLabelValues("hit")))

	s.log(250, "2024-06-15T12:00:00Z")
	summary, err = s.service.Today(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(750, summary.TotalMl)
}

func (s *ServiceSuite) TestTodayFallsBackWhenCacheFails() {
	s.log(400, "2024-06-15T08:00:00Z")
	s.cache.failGet = true

	summary, err := s.service.Today(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(400, summary.TotalMl)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.SummaryCache.WithLabelValues("error")))
}

func (s *ServiceSuite) TestSearchAndDelete() {
	first := s.log(100, "2024-06-15T08:00:00Z")
	s.log(300, "2024-06-15T09:00:00Z")
	s.log(200, "2024-06-15T10:00:00Z")

	page, err := s.service.Search(s.ctx, s.userID, &models.SearchRequest{SortField: "volumeMl", SortDirection: "ASC", Size: "2"})
	s.Require().NoError(err)
	s.Equal(3, page.Total)
	s.Require().Len(page.Items, 2)
	s.Equal(100, page.Items[0].VolumeMl)
	s.Equal(200, page.Items[1].VolumeMl)

	s.Require().NoError(s.service.Delete(s.ctx, s.userID, first.ID))
	err = s.service.Delete(s.ctx, s.userID, first.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	err = s.service.Delete(s.ctx, id.NewUserID(), first.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestSearchIsScopedToUser() {
	s.log(100, "2024-06-15T08:00:00Z")
	page, err := s.service.Search(s.ctx, id.NewUserID(), &models.SearchRequest{})
	s.Require().NoError(err)
	s.Empty(page.Items)
	s.Equal(0, page.Total)
}

func (s *ServiceSuite) TestEraseUserLogsCacheFailure() {
	var buf bytes.Buffer
	s.cache.failInvalidate = true
	svc := New(store.NewInMemoryStore(), fixedGoal(2000), policy.Static(policy.Default()),
		logger.NewWithWriter(&buf, "debug", false),
		WithSummaryCache(s.cache),
	)

	s.Require().NoError(svc.EraseUser(s.ctx, s.userID))
	s.Contains(buf.String(), "summary cache invalidation failed")
	s.Contains(buf.String(), "cache down")
}

func (s *ServiceSuite) TestEraseUser() {
	s.log(100, "2024-06-15T08:00:00Z")
	s.Require().NoError(s.service.EraseUser(s.ctx, s.userID))
	page, err := s.service.Search(s.ctx, s.userID, &models.SearchRequest{})
	s.Require().NoError(err)
	s.Equal(0, page.Total)
}
