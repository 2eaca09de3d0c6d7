package activitypub

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/deemkeen/mammut/domain"
	"github.com/google/uuid"
)

// ModerationFactory builds the moderation activity envelopes. Block, Lock
// and Flag additionally persist an Activity row at construction time, as a
// single write, so the action survives in the actor's outbox.
type ModerationFactory struct {
	Resolver  *IdentityResolver
	Context   *ContextProvider
	Envelopes *EnvelopeFactory
	Db        Database

	// DefaultMagazine overrides DefaultMagazineName when configured
	DefaultMagazine string
}

func (f *ModerationFactory) defaultMagazine() string {
	if f.DefaultMagazine != "" {
		return f.DefaultMagazine
	}
	return DefaultMagazineName
}

// AddModerator announces a new moderator of a magazine
func (f *ModerationFactory) AddModerator(actor *domain.User, added *domain.User, magazine *domain.Magazine) map[string]any {
	return f.moderatorChange("Add", actor, added, magazine)
}

// RemoveModerator announces a removed moderator of a magazine
func (f *ModerationFactory) RemoveModerator(actor *domain.User, removed *domain.User, magazine *domain.Magazine) map[string]any {
	return f.moderatorChange("Remove", actor, removed, magazine)
}

func (f *ModerationFactory) moderatorChange(activityType string, actor, subject *domain.User, magazine *domain.Magazine) map[string]any {
	doc := f.Envelopes.envelope(activityType, f.Resolver.ActorId(actor), f.Resolver.ActorId(subject), true)
	doc["target"] = f.Resolver.Ids.MagazineModerators(magazine.Name)
	doc["audience"] = f.Resolver.ActorId(magazine)
	doc["to"] = []string{PublicURI}
	doc["cc"] = []string{f.Resolver.ActorId(magazine)}
	return doc
}

// BlockFromMagazine builds and records a magazine-level ban
func (f *ModerationFactory) BlockFromMagazine(actor *domain.User, banned *domain.User, magazine *domain.Magazine) (map[string]any, error) {
	doc := f.Envelopes.envelope("Block", f.Resolver.ActorId(actor), f.Resolver.ActorId(banned), true)
	doc["audience"] = f.Resolver.ActorId(magazine)
	doc["to"] = []string{PublicURI}
	doc["cc"] = []string{f.Resolver.ActorId(magazine)}

	if err := f.record(doc, &magazine.Id); err != nil {
		return nil, fmt.Errorf("failed to record block: %w", err)
	}
	return doc, nil
}

// BlockFromInstance builds and records an instance-level ban. There is no
// audience: the ban is not scoped to any magazine.
func (f *ModerationFactory) BlockFromInstance(actor *domain.User, banned *domain.User) (map[string]any, error) {
	doc := f.Envelopes.envelope("Block", f.Resolver.ActorId(actor), f.Resolver.ActorId(banned), true)
	doc["to"] = []string{PublicURI}
	doc["cc"] = []string{}

	if err := f.record(doc, nil); err != nil {
		return nil, fmt.Errorf("failed to record block: %w", err)
	}
	return doc, nil
}

// Lock builds and records the locking of a content item against further
// comments. The audience is the content's magazine.
func (f *ModerationFactory) Lock(actor *domain.User, item domain.Content, magazine *domain.Magazine) (map[string]any, error) {
	doc := f.Envelopes.envelope("Lock", f.Resolver.ActorId(actor), f.Resolver.ObjectId(item), true)
	doc["audience"] = f.Resolver.ActorId(magazine)
	doc["to"] = []string{PublicURI}
	doc["cc"] = []string{f.Resolver.ActorId(magazine)}

	if err := f.record(doc, &magazine.Id); err != nil {
		return nil, fmt.Errorf("failed to record lock: %w", err)
	}
	return doc, nil
}

// Flag builds and records a content report.
//
// Compatibility fork: reports into the default fallback magazine go to
// servers that reject a bare object string and need [objectUrl, actorUrl],
// with the reported actor as audience; reports into federated magazines go
// to servers that reject the array form and need the single URL, with the
// group as audience. Both shapes are deliberate; selecting one "correct"
// shape breaks the other family of servers.
func (f *ModerationFactory) Flag(report *domain.Report) (map[string]any, error) {
	reportedId := f.Resolver.ActorId(report.Reported)

	objectUrl := reportedId
	if report.Target != nil {
		objectUrl = f.Resolver.ObjectId(report.Target)
	}

	var object any
	var audience string
	if report.Magazine.Name == f.defaultMagazine() && !report.Magazine.IsRemote() {
		object = []string{objectUrl, reportedId}
		audience = reportedId
	} else {
		object = objectUrl
		audience = f.Resolver.ActorId(report.Magazine)
	}

	doc := f.Envelopes.envelope("Flag", f.Resolver.ActorId(report.Reporter), object, true)
	doc["audience"] = audience
	doc["to"] = []string{audience}
	doc["summary"] = report.Reason
	doc["content"] = report.Reason

	var magazineId *uuid.UUID
	if !report.Magazine.IsRemote() {
		magazineId = &report.Magazine.Id
	}
	if err := f.record(doc, magazineId); err != nil {
		return nil, fmt.Errorf("failed to record flag: %w", err)
	}
	return doc, nil
}

// record persists the rendered activity as a single row
func (f *ModerationFactory) record(doc map[string]any, audienceId *uuid.UUID) error {
	objectURI := ""
	switch obj := doc["object"].(type) {
	case string:
		objectURI = obj
	case []string:
		if len(obj) > 0 {
			objectURI = obj[0]
		}
	case map[string]any:
		if id, ok := obj["id"].(string); ok {
			objectURI = id
		}
	}

	apId, _ := doc["id"].(string)

	return f.Db.CreateActivity(&domain.Activity{
		Id:         uuid.New(),
		ApId:       apId,
		Type:       doc["type"].(string),
		ActorURI:   doc["actor"].(string),
		ObjectURI:  objectURI,
		AudienceId: audienceId,
		RawJSON:    mustMarshal(doc),
		Local:      true,
		CreatedAt:  time.Now(),
	})
}

// mustMarshal marshals v to JSON, panicking on error
func mustMarshal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("failed to marshal: %v", err))
	}
	return string(b)
}
