package activitypub

import (
	"fmt"

	"github.com/deemkeen/mammut/domain"
	"github.com/google/uuid"
)

// PublicURI is the ActivityStreams "addressed to everyone" collection
const PublicURI = "https://www.w3.org/ns/activitystreams#Public"

// IdBuilder generates absolute local object URLs from the configured
// domain. These URIs are dereferenced by foreign servers, so they are
// always fully qualified.
type IdBuilder struct {
	Domain string
}

func (b IdBuilder) User(username string) string {
	return fmt.Sprintf("https://%s/u/%s", b.Domain, username)
}

func (b IdBuilder) UserInbox(username string) string {
	return b.User(username) + "/inbox"
}

func (b IdBuilder) UserOutbox(username string) string {
	return b.User(username) + "/outbox"
}

func (b IdBuilder) UserFollowers(username string) string {
	return b.User(username) + "/followers"
}

func (b IdBuilder) UserFollowing(username string) string {
	return b.User(username) + "/following"
}

func (b IdBuilder) Magazine(name string) string {
	return fmt.Sprintf("https://%s/m/%s", b.Domain, name)
}

func (b IdBuilder) MagazineInbox(name string) string {
	return b.Magazine(name) + "/inbox"
}

func (b IdBuilder) MagazineOutbox(name string) string {
	return b.Magazine(name) + "/outbox"
}

func (b IdBuilder) MagazineFollowers(name string) string {
	return b.Magazine(name) + "/followers"
}

func (b IdBuilder) MagazineFeatured(name string) string {
	return b.Magazine(name) + "/featured"
}

func (b IdBuilder) MagazineModerators(name string) string {
	return b.Magazine(name) + "/moderators"
}

func (b IdBuilder) Entry(magazineName string, entryId uuid.UUID) string {
	return fmt.Sprintf("https://%s/m/%s/t/%s", b.Domain, magazineName, entryId.String())
}

func (b IdBuilder) EntryComment(magazineName string, entryId, commentId uuid.UUID) string {
	return fmt.Sprintf("https://%s/m/%s/t/%s/comments/%s", b.Domain, magazineName, entryId.String(), commentId.String())
}

func (b IdBuilder) Post(magazineName string, postId uuid.UUID) string {
	return fmt.Sprintf("https://%s/m/%s/p/%s", b.Domain, magazineName, postId.String())
}

func (b IdBuilder) PostComment(magazineName string, postId, commentId uuid.UUID) string {
	return fmt.Sprintf("https://%s/m/%s/p/%s/replies/%s", b.Domain, magazineName, postId.String(), commentId.String())
}

func (b IdBuilder) Message(messageId uuid.UUID) string {
	return fmt.Sprintf("https://%s/messages/%s", b.Domain, messageId.String())
}

// NewActivity mints a URI for a fresh activity
func (b IdBuilder) NewActivity() string {
	return fmt.Sprintf("https://%s/activities/%s", b.Domain, uuid.New().String())
}

func (b IdBuilder) SharedInbox() string {
	return fmt.Sprintf("https://%s/inbox", b.Domain)
}

func (b IdBuilder) Tag(name string) string {
	return fmt.Sprintf("https://%s/tag/%s", b.Domain, name)
}

// IdentityResolver maps local entities to their canonical ActivityPub
// identifiers. Once an entity is known to be remote its stored URI is
// returned verbatim; regenerating it locally would desync us from the
// origin server.
type IdentityResolver struct {
	Ids IdBuilder
}

// ActorId returns the canonical identifier for a user or magazine
func (r *IdentityResolver) ActorId(actor domain.Actor) string {
	switch a := actor.(type) {
	case *domain.User:
		if a.IsRemote() {
			if a.ApProfileId != "" {
				return a.ApProfileId
			}
			return a.ApId
		}
		return r.Ids.User(a.Username)
	case *domain.Magazine:
		if a.IsRemote() {
			if a.ApProfileId != "" {
				return a.ApProfileId
			}
			return a.ApId
		}
		return r.Ids.Magazine(a.Name)
	default:
		panic(fmt.Sprintf("activitypub: unknown actor type %T", actor))
	}
}

// ActorFollowers returns the followers collection URI for a local actor,
// or "" for remote actors (their collections are not resolvable here).
func (r *IdentityResolver) ActorFollowers(actor domain.Actor) string {
	switch a := actor.(type) {
	case *domain.User:
		if a.IsRemote() {
			return ""
		}
		return r.Ids.UserFollowers(a.Username)
	case *domain.Magazine:
		if a.IsRemote() {
			return ""
		}
		return r.Ids.MagazineFollowers(a.Name)
	default:
		panic(fmt.Sprintf("activitypub: unknown actor type %T", actor))
	}
}

// ObjectId returns the canonical identifier for any content item
func (r *IdentityResolver) ObjectId(item domain.Content) string {
	switch c := item.(type) {
	case *domain.Entry:
		if c.ApId != "" {
			return c.ApId
		}
		return r.Ids.Entry(c.Magazine.Name, c.Id)
	case *domain.EntryComment:
		if c.ApId != "" {
			return c.ApId
		}
		return r.Ids.EntryComment(c.Entry.Magazine.Name, c.Entry.Id, c.Id)
	case *domain.Post:
		if c.ApId != "" {
			return c.ApId
		}
		return r.Ids.Post(c.Magazine.Name, c.Id)
	case *domain.PostComment:
		if c.ApId != "" {
			return c.ApId
		}
		return r.Ids.PostComment(c.Post.Magazine.Name, c.Post.Id, c.Id)
	case *domain.Message:
		if c.ApId != "" {
			return c.ApId
		}
		return r.Ids.Message(c.Id)
	default:
		panic(fmt.Sprintf("activitypub: unknown content type %T", item))
	}
}
