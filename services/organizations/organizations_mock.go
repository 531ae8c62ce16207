package organizations

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"guildhub/models"
)

type MockOrganizationsService struct {
	mock.Mock
}

func (m *MockOrganizationsService) CreateOrganization(ctx context.Context, organization *models.Organization) error {
	args := m.Called(ctx, organization)
	return args.Error(0)
}

func (m *MockOrganizationsService) GetOrganizationByID(
	ctx context.Context,
	id string,
) (mo.Option[*models.Organization], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(mo.Option[*models.Organization]), args.Error(1)
}

func (m *MockOrganizationsService) GetOrganizationByHandle(
	ctx context.Context,
	handle string,
) (mo.Option[*models.Organization], error) {
	args := m.Called(ctx, handle)
	return args.Get(0).(mo.Option[*models.Organization]), args.Error(1)
}

func (m *MockOrganizationsService) CanUserManageOrganization(
	ctx context.Context,
	discordUserID, organizationID string,
) (bool, error) {
	args := m.Called(ctx, discordUserID, organizationID)
	return args.Bool(0), args.Error(1)
}
