package contact

import (
	"context"
	"time"

	"github.com/foliosite/folio/src/lib/discord"
	"github.com/foliosite/folio/src/lib/utils"
)

// Notify posts a short summary of the submission to the Discord webhook.
// The message is truncated as Discord rejects embed fields over 1024 characters.
func Notify(ctx context.Context, webhook string, sub *Submission) error {
	return discord.Notify(ctx, webhook, discord.Payload{
		Embeds: []discord.PayloadEmbed{
			{
				Title:     "New portfolio contact",
				Timestamp: time.Now().UTC().Format(time.RFC3339),
				Fields: []discord.PayloadField{
					{Name: "Name", Value: sub.Name, Inline: true},
					{Name: "Email", Value: sub.Email, Inline: true},
					{Name: "Message", Value: utils.Truncate(sub.Message, 1000)},
				},
			},
		},
	})
}
