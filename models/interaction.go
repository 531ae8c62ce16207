package models

// Interaction is one inbound slash-command invocation delivered as a single
// webhook request. It exists only for the duration of one request/response
// cycle and expects exactly one reply.
type Interaction struct {
	ID      string
	Token   string
	GuildID string
	UserID  string
	Command Command
}

// Command is the parsed subcommand of an interaction. Each subcommand carries
// its own strongly-typed options record instead of ad hoc lookups by name.
type Command interface {
	CommandName() string
}

// ConnectCommand links the invoking guild to an organization. An empty
// OrgHandle targets the invoking user's personal account, which is an
// explicitly unsupported variant.
type ConnectCommand struct {
	OrgHandle string
}

func (c ConnectCommand) CommandName() string { return "connect" }

type StatusCommand struct{}

func (c StatusCommand) CommandName() string { return "status" }

type DisconnectCommand struct{}

func (c DisconnectCommand) CommandName() string { return "disconnect" }

// HelpCommand is the fallback for absent or unrecognized subcommands.
// Unknown holds the unrecognized subcommand name, if any.
type HelpCommand struct {
	Unknown string
}

func (c HelpCommand) CommandName() string { return "help" }

// InteractionReply is the single response produced for an interaction.
// Ephemeral replies are visible only to the invoking user.
type InteractionReply struct {
	Content   string
	Ephemeral bool
}
