package activitypub

import (
	"github.com/deemkeen/mammut/domain"
)

// TombstoneFactory builds Tombstone markers for deleted objects. Nothing
// is stored; the marker is synthesized on demand from the identifier of
// whatever used to exist there.
type TombstoneFactory struct {
	Resolver *IdentityResolver
}

// CreateForUser returns the Tombstone standing in for a deleted user.
// Calling it twice with the same user yields identical output.
func (f *TombstoneFactory) CreateForUser(user *domain.User) map[string]any {
	return f.Create(f.Resolver.ActorId(user))
}

// CreateForContent returns the Tombstone standing in for deleted content
func (f *TombstoneFactory) CreateForContent(item domain.Content) map[string]any {
	return f.Create(f.Resolver.ObjectId(item))
}

// Create returns the minimal Tombstone document for an identifier
func (f *TombstoneFactory) Create(id string) map[string]any {
	return map[string]any{
		"id":   id,
		"type": "Tombstone",
	}
}
