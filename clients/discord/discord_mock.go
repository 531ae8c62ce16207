package discord

import (
	"github.com/stretchr/testify/mock"

	"guildhub/clients"
)

type MockDiscordClient struct {
	mock.Mock
}

func (m *MockDiscordClient) GetGuildByID(guildID string) (*clients.DiscordGuild, error) {
	args := m.Called(guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.DiscordGuild), args.Error(1)
}

func (m *MockDiscordClient) UserHasGuildManagementAccess(guildID, userID string) (bool, error) {
	args := m.Called(guildID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDiscordClient) GetBotGuildPermissions(guildID string) (int64, error) {
	args := m.Called(guildID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDiscordClient) CreateScheduledEvent(
	guildID string,
	params *clients.ScheduledEventParams,
) (*clients.DiscordScheduledEvent, error) {
	args := m.Called(guildID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.DiscordScheduledEvent), args.Error(1)
}

func (m *MockDiscordClient) UpdateScheduledEvent(
	guildID, remoteEventID string,
	params *clients.ScheduledEventParams,
) (*clients.DiscordScheduledEvent, error) {
	args := m.Called(guildID, remoteEventID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.DiscordScheduledEvent), args.Error(1)
}

func (m *MockDiscordClient) DeleteScheduledEvent(guildID, remoteEventID string) error {
	args := m.Called(guildID, remoteEventID)
	return args.Error(0)
}

func (m *MockDiscordClient) GetScheduledEvent(
	guildID, remoteEventID string,
) (*clients.DiscordScheduledEvent, error) {
	args := m.Called(guildID, remoteEventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.DiscordScheduledEvent), args.Error(1)
}

func (m *MockDiscordClient) SendChannelEmbed(channelID string, embed *clients.MessageEmbed) error {
	args := m.Called(channelID, embed)
	return args.Error(0)
}

func (m *MockDiscordClient) RegisterSlashCommands() error {
	args := m.Called()
	return args.Error(0)
}
