package activitypub

import (
	"log"

	"github.com/deemkeen/mammut/domain"
)

// ChatMessageFactory builds ChatMessage documents for private messages
type ChatMessageFactory struct {
	Resolver *IdentityResolver
	Context  *ContextProvider
	Markdown MarkdownRenderer
}

// Create builds the ChatMessage document for a message. The message is
// addressed to every thread participant except the sender; cc stays empty
// because chat messages are never public.
func (f *ChatMessageFactory) Create(message *domain.Message, includeContext bool) map[string]any {
	senderId := f.Resolver.ActorId(message.Sender)

	var to []string
	for _, participant := range message.Participants {
		if participant.Id == message.Sender.Id {
			continue
		}
		to = append(to, f.Resolver.ActorId(participant))
	}

	var content any
	if message.Body != "" {
		html, err := f.Markdown.Render(message.Body)
		if err != nil {
			log.Printf("ChatMessageFactory: failed to render body for %s: %v", message.Id, err)
		} else {
			content = html
		}
	}

	doc := map[string]any{
		"id":           f.Resolver.ObjectId(message),
		"type":         "ChatMessage",
		"attributedTo": senderId,
		"to":           dedupe(to),
		"cc":           []string{},
		"content":      content,
		"mediaType":    "text/html",
		"source": map[string]any{
			"content":   message.Body,
			"mediaType": "text/markdown",
		},
		"published": apTime(message.CreatedAt),
	}

	return f.Context.Apply(doc, includeContext)
}
