package guildlinks

import (
	"context"

	"github.com/samber/mo"
	"github.com/stretchr/testify/mock"

	"guildhub/models"
)

type MockGuildLinksService struct {
	mock.Mock
}

func (m *MockGuildLinksService) CreateGuildLink(ctx context.Context, link *models.GuildLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockGuildLinksService) GetGuildLinkByGuildID(
	ctx context.Context,
	guildID string,
) (mo.Option[*models.GuildLink], error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).(mo.Option[*models.GuildLink]), args.Error(1)
}

func (m *MockGuildLinksService) GetGuildLinkByOrganizationID(
	ctx context.Context,
	organizationID string,
) (mo.Option[*models.GuildLink], error) {
	args := m.Called(ctx, organizationID)
	return args.Get(0).(mo.Option[*models.GuildLink]), args.Error(1)
}

func (m *MockGuildLinksService) DeleteGuildLinkByGuildID(ctx context.Context, guildID string) (bool, error) {
	args := m.Called(ctx, guildID)
	return args.Bool(0), args.Error(1)
}
