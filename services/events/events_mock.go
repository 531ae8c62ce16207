package events

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"guildhub/models"
)

type MockEventsService struct {
	mock.Mock
}

func (m *MockEventsService) CreateEvent(ctx context.Context, event *models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventsService) GetEventByID(ctx context.Context, id string) (mo.Option[*models.Event], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(mo.Option[*models.Event]), args.Error(1)
}

func (m *MockEventsService) GetEventsByOrganizationID(
	ctx context.Context,
	organizationID string,
) ([]*models.Event, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Event), args.Error(1)
}

func (m *MockEventsService) SetRemoteEventID(ctx context.Context, eventID string, remoteEventID *string) error {
	args := m.Called(ctx, eventID, remoteEventID)
	return args.Error(0)
}
