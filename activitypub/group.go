package activitypub

import (
	"log"

	"github.com/deemkeen/mammut/domain"
)

// GroupFactory builds Group actor documents for magazines
type GroupFactory struct {
	Resolver *IdentityResolver
	Context  *ContextProvider
	Markdown MarkdownRenderer
	Images   *ImageWrapper
}

// Create builds the full Group document for a magazine
func (f *GroupFactory) Create(magazine *domain.Magazine, includeContext bool) map[string]any {
	actorId := f.Resolver.ActorId(magazine)

	// The federated summary carries the rules inline, since remote servers
	// have no separate rules field.
	markdown := magazine.Description
	if magazine.Rules != "" {
		if markdown != "" {
			markdown += "\n\n"
		}
		markdown += "### Rules\n\n" + magazine.Rules
	}

	updated := magazine.CreatedAt
	if magazine.LastActiveAt != nil {
		updated = *magazine.LastActiveAt
	}

	doc := map[string]any{
		"id":                      actorId,
		"type":                    "Group",
		"name":                    magazine.Title,
		"preferredUsername":       magazine.Name,
		"inbox":                   f.Resolver.Ids.MagazineInbox(magazine.Name),
		"outbox":                  f.Resolver.Ids.MagazineOutbox(magazine.Name),
		"followers":               f.Resolver.Ids.MagazineFollowers(magazine.Name),
		"featured":                f.Resolver.Ids.MagazineFeatured(magazine.Name),
		"url":                     actorId,
		"attributedTo":            f.Resolver.Ids.MagazineModerators(magazine.Name),
		"sensitive":               magazine.IsAdult,
		"postingRestrictedToMods": magazine.PostingRestrictedToMods,
		"published":               apTime(magazine.CreatedAt),
		"updated":                 apTime(updated),
		"publicKey": map[string]any{
			"id":           actorId + "#main-key",
			"owner":        actorId,
			"publicKeyPem": magazine.WebPublicKey,
		},
		"endpoints": map[string]any{
			"sharedInbox": f.Resolver.Ids.SharedInbox(),
		},
	}

	if markdown != "" {
		summary, err := f.Markdown.Render(markdown)
		if err != nil {
			log.Printf("GroupFactory: failed to render summary for %s: %v", magazine.Name, err)
		} else {
			doc["summary"] = summary
		}
		doc["source"] = map[string]any{
			"content":   markdown,
			"mediaType": "text/markdown",
		}
	}

	if icon := f.Images.Build(magazine.Icon); icon != nil {
		doc["icon"] = icon
	}

	return f.Context.Apply(doc, includeContext)
}
