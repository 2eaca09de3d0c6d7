package activitypub

import (
	"log"

	"github.com/deemkeen/mammut/domain"
)

// PersonFactory builds Person actor documents for users
type PersonFactory struct {
	Resolver *IdentityResolver
	Context  *ContextProvider
	Markdown MarkdownRenderer
	Images   *ImageWrapper
}

// Create builds the full Person document for a user. The document shape is
// parsed structurally by remote servers; field names and nesting are part
// of the wire contract.
func (f *PersonFactory) Create(user *domain.User, includeContext bool) map[string]any {
	actorId := f.Resolver.ActorId(user)

	name := user.DisplayName
	if name == "" {
		name = user.Username
	}

	doc := map[string]any{
		"id":                        actorId,
		"type":                      "Person",
		"name":                      name,
		"preferredUsername":         user.Username,
		"inbox":                     f.Resolver.Ids.UserInbox(user.Username),
		"outbox":                    f.Resolver.Ids.UserOutbox(user.Username),
		"followers":                 f.Resolver.Ids.UserFollowers(user.Username),
		"following":                 f.Resolver.Ids.UserFollowing(user.Username),
		"url":                       actorId,
		"manuallyApprovesFollowers": false,
		"published":                 apTime(user.CreatedAt),
		"publicKey": map[string]any{
			"id":           actorId + "#main-key",
			"owner":        actorId,
			"publicKeyPem": user.WebPublicKey,
		},
		"endpoints": map[string]any{
			"sharedInbox": f.Resolver.Ids.SharedInbox(),
		},
	}

	if user.About != "" {
		summary, err := f.Markdown.Render(user.About)
		if err != nil {
			log.Printf("PersonFactory: failed to render summary for %s: %v", user.Username, err)
		} else {
			doc["summary"] = summary
		}
	}

	if icon := f.Images.Build(user.Avatar); icon != nil {
		doc["icon"] = icon
	}

	return f.Context.Apply(doc, includeContext)
}
