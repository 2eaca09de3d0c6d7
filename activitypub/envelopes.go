package activitypub

import (
	"github.com/deemkeen/mammut/domain"
)

// EnvelopeFactory wraps content documents in outer Activity envelopes.
// Envelope construction is a pure transformation; persistence of the
// moderation verbs lives in ModerationFactory, delivery lives in Deliverer.
type EnvelopeFactory struct {
	Resolver *IdentityResolver
	Context  *ContextProvider
	Objects  *ActivityFactory
}

// envelope builds the generic activity shape shared by every verb
func (f *EnvelopeFactory) envelope(activityType, actorId string, object any, includeContext bool) map[string]any {
	doc := map[string]any{
		"id":     f.Resolver.Ids.NewActivity(),
		"type":   activityType,
		"actor":  actorId,
		"object": object,
	}
	return f.Context.Apply(doc, includeContext)
}

// Create wraps a freshly created content item. Addressing is lifted from
// the inner object so the envelope reaches the same audience.
func (f *EnvelopeFactory) Create(item domain.Content) map[string]any {
	return f.wrapContent("Create", item)
}

// Update wraps an edited content item
func (f *EnvelopeFactory) Update(item domain.Content) map[string]any {
	return f.wrapContent("Update", item)
}

func (f *EnvelopeFactory) wrapContent(activityType string, item domain.Content) map[string]any {
	object := f.Objects.CreateObject(item, false)
	doc := f.envelope(activityType, object["attributedTo"].(string), object, true)
	doc["to"] = object["to"]
	doc["cc"] = object["cc"]
	return doc
}

// Delete announces the removal of a content item. The object is the bare
// identifier; remote servers already hold the rest.
func (f *EnvelopeFactory) Delete(actor domain.Actor, item domain.Content) map[string]any {
	doc := f.envelope("Delete", f.Resolver.ActorId(actor), f.Resolver.ObjectId(item), true)
	doc["to"] = []string{PublicURI}
	doc["cc"] = dedupe([]string{f.Resolver.ActorFollowers(actor)})
	return doc
}

// Like wraps a vote on a content item
func (f *EnvelopeFactory) Like(actor domain.Actor, item domain.Content) map[string]any {
	return f.envelope("Like", f.Resolver.ActorId(actor), f.Resolver.ObjectId(item), true)
}

// Announce wraps a boost of a content item
func (f *EnvelopeFactory) Announce(actor domain.Actor, item domain.Content) map[string]any {
	doc := f.envelope("Announce", f.Resolver.ActorId(actor), f.Resolver.ObjectId(item), true)
	doc["to"] = []string{PublicURI}
	doc["cc"] = dedupe([]string{f.Resolver.ActorFollowers(actor)})
	return doc
}

// Follow builds a follow request from actor to target
func (f *EnvelopeFactory) Follow(actor, target domain.Actor) map[string]any {
	return f.envelope("Follow", f.Resolver.ActorId(actor), f.Resolver.ActorId(target), true)
}

// Accept answers a follow request. The original follow activity is
// embedded so the remote side can match it up.
func (f *EnvelopeFactory) Accept(actor domain.Actor, followId string, follower domain.Actor) map[string]any {
	return f.envelope("Accept", f.Resolver.ActorId(actor), map[string]any{
		"id":     followId,
		"type":   "Follow",
		"actor":  f.Resolver.ActorId(follower),
		"object": f.Resolver.ActorId(actor),
	}, true)
}

// Reject declines a follow request
func (f *EnvelopeFactory) Reject(actor domain.Actor, followId string, follower domain.Actor) map[string]any {
	return f.envelope("Reject", f.Resolver.ActorId(actor), map[string]any{
		"id":     followId,
		"type":   "Follow",
		"actor":  f.Resolver.ActorId(follower),
		"object": f.Resolver.ActorId(actor),
	}, true)
}

// Undo retracts a previously sent activity. The inner activity is embedded
// without its own @context.
func (f *EnvelopeFactory) Undo(actor domain.Actor, inner map[string]any) map[string]any {
	stripped := make(map[string]any, len(inner))
	for k, v := range inner {
		if k == "@context" {
			continue
		}
		stripped[k] = v
	}
	return f.envelope("Undo", f.Resolver.ActorId(actor), stripped, true)
}
