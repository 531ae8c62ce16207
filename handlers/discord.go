package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"guildhub/core"
	"guildhub/models"
	discordusecase "guildhub/usecases/discord"
)

// commandNamespace is the top-level slash command all subcommands live under
const commandNamespace = "guildhub"

type DiscordWebhooksHandler struct {
	verifier       *InteractionVerifier
	discordUseCase *discordusecase.DiscordUseCase
}

func NewDiscordWebhooksHandler(
	verifier *InteractionVerifier,
	discordUseCase *discordusecase.DiscordUseCase,
) *DiscordWebhooksHandler {
	return &DiscordWebhooksHandler{
		verifier:       verifier,
		discordUseCase: discordUseCase,
	}
}

// HandleInteraction is the inbound webhook endpoint for Discord
// interactions. Signature verification gates everything: no business logic
// runs on an unverified request.
func (h *DiscordWebhooksHandler) HandleInteraction(w http.ResponseWriter, r *http.Request) {
	log.Printf("📨 Discord interaction received from %s", r.RemoteAddr)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("❌ Failed to read interaction body: %v", err)
		http.Error(w, "failed to read body", http.StatusInternalServerError)
		return
	}

	if err := h.verifier.VerifyRequest(r, body); err != nil {
		if errors.Is(err, core.ErrNotConfigured) {
			log.Printf("❌ Signature verification misconfigured: %v", err)
		} else {
			log.Printf("❌ Signature verification failed: %v", err)
		}
		http.Error(w, "invalid request signature", http.StatusUnauthorized)
		return
	}

	var interaction discordgo.Interaction
	if err := interaction.UnmarshalJSON(body); err != nil {
		log.Printf("❌ Failed to parse interaction body: %v", err)
		http.Error(w, "failed to parse body", http.StatusBadRequest)
		return
	}

	if interaction.Type == discordgo.InteractionPing {
		log.Printf("🏓 Responding to Discord ping challenge")
		writeInteractionResponse(w, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponsePong,
		})
		return
	}

	if interaction.Type != discordgo.InteractionApplicationCommand {
		log.Printf("⚠️ Ignoring unsupported interaction type %d", interaction.Type)
		w.WriteHeader(http.StatusOK)
		return
	}

	parsed := parseInteraction(&interaction)
	reply := h.discordUseCase.ProcessInteraction(r.Context(), parsed)

	response := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: reply.Content,
		},
	}
	if reply.Ephemeral {
		response.Data.Flags = discordgo.MessageFlagsEphemeral
	}
	writeInteractionResponse(w, response)
}

// parseInteraction maps the loosely-typed Discord payload onto the tagged
// command union. Anything outside the command namespace, and any absent or
// unrecognized subcommand, falls back to help.
func parseInteraction(interaction *discordgo.Interaction) *models.Interaction {
	parsed := &models.Interaction{
		ID:      interaction.ID,
		Token:   interaction.Token,
		GuildID: interaction.GuildID,
		Command: models.HelpCommand{},
	}
	if interaction.Member != nil && interaction.Member.User != nil {
		parsed.UserID = interaction.Member.User.ID
	} else if interaction.User != nil {
		parsed.UserID = interaction.User.ID
	}

	data := interaction.ApplicationCommandData()
	if data.Name != commandNamespace {
		parsed.Command = models.HelpCommand{Unknown: data.Name}
		return parsed
	}
	if len(data.Options) == 0 {
		return parsed
	}

	subcommand := data.Options[0]
	switch subcommand.Name {
	case "connect":
		command := models.ConnectCommand{}
		for _, option := range subcommand.Options {
			if option.Name != "organization" {
				continue
			}
			// StringValue panics on a type mismatch, so check the declared
			// type and assert the raw value instead of trusting the payload
			if option.Type != discordgo.ApplicationCommandOptionString {
				continue
			}
			if handle, ok := option.Value.(string); ok {
				command.OrgHandle = handle
			}
		}
		parsed.Command = command
	case "status":
		parsed.Command = models.StatusCommand{}
	case "disconnect":
		parsed.Command = models.DisconnectCommand{}
	case "help":
		parsed.Command = models.HelpCommand{}
	default:
		parsed.Command = models.HelpCommand{Unknown: subcommand.Name}
	}
	return parsed
}

func writeInteractionResponse(w http.ResponseWriter, response *discordgo.InteractionResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("❌ Failed to write interaction response: %v", err)
	}
}
