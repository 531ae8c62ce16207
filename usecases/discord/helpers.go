package discord

import (
	"fmt"
	"strings"

	"guildhub/models"
)

const genericErrorMessage = "Something went wrong while handling this command. Please try again."

func ephemeralReply(content string) *models.InteractionReply {
	return &models.InteractionReply{Content: content, Ephemeral: true}
}

func publicReply(content string) *models.InteractionReply {
	return &models.InteractionReply{Content: content, Ephemeral: false}
}

func helpText(unknown string) string {
	var b strings.Builder
	if unknown != "" {
		fmt.Fprintf(&b, "Unknown subcommand `%s`.\n\n", unknown)
	}
	b.WriteString("**GuildHub commands**\n")
	b.WriteString("`/guildhub connect organization:<handle>` - link this server to an organization\n")
	b.WriteString("`/guildhub status` - show the current link and bot health\n")
	b.WriteString("`/guildhub disconnect` - remove the link to the connected organization\n")
	b.WriteString("`/guildhub help` - show this message")
	return b.String()
}
