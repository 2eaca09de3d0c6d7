package activitypub

import (
	"testing"
)

func newTestPersonFactory(db Database) *PersonFactory {
	return NewFactories(testDomain, DefaultMagazineName, db).Persons
}

func TestPersonDocumentShape(t *testing.T) {
	factory := newTestPersonFactory(NewMockDatabase())
	user := newTestUser("alice")
	user.DisplayName = "Alice"
	user.About = "hello there"

	doc := factory.Create(user, true)

	if doc["type"] != "Person" {
		t.Errorf("Expected type 'Person', got '%v'", doc["type"])
	}
	if doc["id"] != "https://example.org/u/alice" {
		t.Errorf("Expected id 'https://example.org/u/alice', got '%v'", doc["id"])
	}
	if doc["name"] != "Alice" {
		t.Errorf("Expected name 'Alice', got '%v'", doc["name"])
	}
	if doc["preferredUsername"] != "alice" {
		t.Errorf("Expected preferredUsername 'alice', got '%v'", doc["preferredUsername"])
	}
	if doc["inbox"] != "https://example.org/u/alice/inbox" {
		t.Errorf("Expected inbox URL, got '%v'", doc["inbox"])
	}
	if doc["manuallyApprovesFollowers"] != false {
		t.Errorf("Expected manuallyApprovesFollowers false, got '%v'", doc["manuallyApprovesFollowers"])
	}
	if doc["summary"] != "hello there" {
		t.Errorf("Expected summary 'hello there', got '%v'", doc["summary"])
	}

	key, ok := doc["publicKey"].(map[string]any)
	if !ok {
		t.Fatalf("Expected publicKey object, got %T", doc["publicKey"])
	}
	if key["id"] != "https://example.org/u/alice#main-key" {
		t.Errorf("Expected publicKey id with #main-key suffix, got '%v'", key["id"])
	}
	if key["owner"] != doc["id"] {
		t.Errorf("Expected publicKey owner to match actor id, got '%v'", key["owner"])
	}

	endpoints, ok := doc["endpoints"].(map[string]any)
	if !ok {
		t.Fatalf("Expected endpoints object, got %T", doc["endpoints"])
	}
	if endpoints["sharedInbox"] != "https://example.org/inbox" {
		t.Errorf("Expected sharedInbox URL, got '%v'", endpoints["sharedInbox"])
	}
}

func TestPersonNameFallsBackToUsername(t *testing.T) {
	factory := newTestPersonFactory(NewMockDatabase())
	user := newTestUser("alice")

	doc := factory.Create(user, true)
	if doc["name"] != "alice" {
		t.Errorf("Expected name fallback to username, got '%v'", doc["name"])
	}
}

func TestPersonContextOnlyWhenRequested(t *testing.T) {
	factory := newTestPersonFactory(NewMockDatabase())
	user := newTestUser("alice")

	with := factory.Create(user, true)
	if _, ok := with["@context"]; !ok {
		t.Error("Expected @context on top-level document")
	}

	without := factory.Create(user, false)
	if _, ok := without["@context"]; ok {
		t.Error("Expected no @context when includeContext is false")
	}
}

func TestPersonOmitsEmptySummaryAndIcon(t *testing.T) {
	factory := newTestPersonFactory(NewMockDatabase())
	user := newTestUser("alice")

	doc := factory.Create(user, true)
	if _, ok := doc["summary"]; ok {
		t.Error("Expected no summary for user without About")
	}
	if _, ok := doc["icon"]; ok {
		t.Error("Expected no icon for user without avatar")
	}
}

func TestPersonAbsorbsFailedSummaryRender(t *testing.T) {
	factory := newTestPersonFactory(NewMockDatabase())
	factory.Markdown = failingMarkdown{}
	user := newTestUser("alice")
	user.About = "hello"

	doc := factory.Create(user, true)
	if _, ok := doc["summary"]; ok {
		t.Error("Expected summary omitted when rendering fails")
	}
	if doc["type"] != "Person" {
		t.Error("Expected document built despite render failure")
	}
}
