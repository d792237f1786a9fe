package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"hydration/internal/alarm/store"
	"hydration/internal/events"
	"hydration/internal/platform/logger"
	"hydration/internal/policy"
	id "hydration/pkg/domain"
	dErrors "hydration/pkg/domain-errors"
	"hydration/pkg/requestcontext"
	"hydration/pkg/temporal"
)

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	events  *events.Publisher
	service *Service
	userID  id.UserID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC))
	s.events = events.NewPublisher("hydration", 8, logger.Discard(), nil)
	s.service = New(store.NewInMemoryStore(), policy.Static(policy.Default()), s.events, logger.Discard())
	s.userID = id.NewUserID()
}

func (s *ServiceSuite) TestGetBeforeUpdate() {
	_, err := s.service.Get(s.ctx, s.userID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestUpdateStoresAndPublishes() {
	alarm, err := s.service.Update(s.ctx, s.userID,
		request("2024-01-01T08:00:00Z", "2024-01-01T12:00:00Z", 60, "MONDAY"))
	s.Require().NoError(err)

	stored, err := s.service.Get(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(alarm, stored)

	resp := ToResponse(stored)
	s.Equal(4, resp.NotificationCount)
	s.Equal([]string{"08:00", "09:00", "10:00", "11:00"}, resp.Schedule)
	s.Equal([]string{"MONDAY"}, resp.ActiveDays)

	e := <-s.events.Inbox()
	s.Equal(events.TypeAlarmUpdated, e.Type)
	s.Equal(4, e.Data["notificationCount"])
}

func (s *ServiceSuite) TestInvalidUpdateKeepsPreviousAlarm() {
	_, err := s.service.Update(s.ctx, s.userID,
		request("2024-01-01T08:00:00Z", "2024-01-01T12:00:00Z", 60))
	s.Require().NoError(err)

	_, err = s.service.Update(s.ctx, s.userID,
		request("2024-01-01T12:00:00Z", "2024-01-01T08:00:00Z", 60))
	var verr *temporal.ValidationError
	s.Require().ErrorAs(err, &verr)

	stored, err := s.service.Get(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(8, stored.DailyStartTime.Hour())
}

func (s *ServiceSuite) TestEraseUser() {
	s.NoError(s.service.EraseUser(s.ctx, s.userID), "erasing without an alarm is a no-op")

	_, err := s.service.Update(s.ctx, s.userID,
		request("2024-01-01T08:00:00Z", "2024-01-01T12:00:00Z", 60))
	s.Require().NoError(err)
	s.Require().NoError(s.service.EraseUser(s.ctx, s.userID))

	_, err = s.service.Get(s.ctx, s.userID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
