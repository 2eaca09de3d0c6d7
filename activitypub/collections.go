package activitypub

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/deemkeen/mammut/domain"
)

// outboxPageSize bounds an OrderedCollectionPage of outbox activities
const outboxPageSize = 20

// CollectionFactory builds the paginated ActivityPub collections: actor
// outboxes, magazine moderator lists and pinned entries.
type CollectionFactory struct {
	Resolver *IdentityResolver
	Context  *ContextProvider
	Pages    *PageFactory
	Db       Database
}

func (f *CollectionFactory) outboxURI(owner domain.Actor) string {
	switch a := owner.(type) {
	case *domain.User:
		return f.Resolver.Ids.UserOutbox(a.Username)
	case *domain.Magazine:
		return f.Resolver.Ids.MagazineOutbox(a.Name)
	default:
		panic(fmt.Sprintf("activitypub: unknown actor type %T", owner))
	}
}

// OutboxCollection builds the outbox summary page. Always paged, for
// compatibility with Mastodon and other servers.
func (f *CollectionFactory) OutboxCollection(owner domain.Actor, includeContext bool) (map[string]any, error) {
	collectionURI := f.outboxURI(owner)
	total, err := f.Db.CountActivitiesByActorURI(f.Resolver.ActorId(owner))
	if err != nil {
		return nil, fmt.Errorf("failed to count outbox activities: %w", err)
	}

	doc := map[string]any{
		"id":         collectionURI,
		"type":       "OrderedCollection",
		"totalItems": total,
		"first":      fmt.Sprintf("%s?page=1", collectionURI),
	}
	return f.Context.Apply(doc, includeContext), nil
}

// OutboxCollectionItems builds one OrderedCollectionPage of rendered
// activities. Each item's own @context is stripped; the context appears
// once, at the collection level.
func (f *CollectionFactory) OutboxCollectionItems(owner domain.Actor, page int, includeContext bool) (map[string]any, error) {
	collectionURI := f.outboxURI(owner)
	actorURI := f.Resolver.ActorId(owner)

	total, err := f.Db.CountActivitiesByActorURI(actorURI)
	if err != nil {
		return nil, fmt.Errorf("failed to count outbox activities: %w", err)
	}
	if page < 1 {
		page = 1
	}
	err, activities := f.Db.ReadActivitiesByActorURI(actorURI, (page-1)*outboxPageSize, outboxPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read outbox activities: %w", err)
	}

	orderedItems := make([]any, 0, outboxPageSize)
	if activities != nil {
		for _, activity := range *activities {
			var item map[string]any
			if err := json.Unmarshal([]byte(activity.RawJSON), &item); err != nil {
				log.Printf("Outbox: skipping malformed activity %s: %v", activity.Id, err)
				continue
			}
			delete(item, "@context")
			orderedItems = append(orderedItems, item)
		}
	}

	doc := map[string]any{
		"id":           fmt.Sprintf("%s?page=%d", collectionURI, page),
		"type":         "OrderedCollectionPage",
		"partOf":       collectionURI,
		"totalItems":   total,
		"orderedItems": orderedItems,
	}
	if page*outboxPageSize < total {
		doc["next"] = fmt.Sprintf("%s?page=%d", collectionURI, page+1)
	}
	return f.Context.Apply(doc, includeContext), nil
}

// ModeratorsCollection builds the flat list of moderator profile ids for a
// magazine. Items are bare id strings, not full documents.
func (f *CollectionFactory) ModeratorsCollection(magazine *domain.Magazine, includeContext bool) (map[string]any, error) {
	err, moderators := f.Db.ReadMagazineModerators(magazine.Id)
	if err != nil {
		return nil, fmt.Errorf("failed to read moderators: %w", err)
	}

	orderedItems := make([]string, 0)
	if moderators != nil {
		for i := range *moderators {
			orderedItems = append(orderedItems, f.Resolver.ActorId(&(*moderators)[i]))
		}
	}

	doc := map[string]any{
		"id":           f.Resolver.Ids.MagazineModerators(magazine.Name),
		"type":         "OrderedCollection",
		"totalItems":   len(orderedItems),
		"orderedItems": orderedItems,
	}
	return f.Context.Apply(doc, includeContext), nil
}

// PinnedCollection builds the featured collection of a magazine: fully
// rendered Page documents, unpaginated, since pin lists stay small.
func (f *CollectionFactory) PinnedCollection(magazine *domain.Magazine, includeContext bool) (map[string]any, error) {
	err, entries := f.Db.ReadPinnedEntries(magazine.Id)
	if err != nil {
		return nil, fmt.Errorf("failed to read pinned entries: %w", err)
	}

	orderedItems := make([]any, 0)
	if entries != nil {
		for i := range *entries {
			orderedItems = append(orderedItems, f.Pages.Create(&(*entries)[i], false))
		}
	}

	doc := map[string]any{
		"id":           f.Resolver.Ids.MagazineFeatured(magazine.Name),
		"type":         "OrderedCollection",
		"totalItems":   len(orderedItems),
		"orderedItems": orderedItems,
	}
	return f.Context.Apply(doc, includeContext), nil
}
