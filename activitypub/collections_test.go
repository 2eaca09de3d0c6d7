package activitypub

import (
	"fmt"
	"testing"
	"time"

	"github.com/deemkeen/mammut/domain"
	"github.com/google/uuid"
)

func seedActivities(db *MockDatabase, actorURI string, n int) {
	for i := 0; i < n; i++ {
		db.AddActivity(&domain.Activity{
			Id:        uuid.New(),
			Type:      "Create",
			ActorURI:  actorURI,
			RawJSON:   fmt.Sprintf(`{"@context":"%s","type":"Create","actor":"%s","object":{"n":%d}}`, ContextActivityStreams, actorURI, i),
			Local:     true,
			CreatedAt: testCreatedAt.Add(time.Duration(i) * time.Minute),
		})
	}
}

func TestOutboxCollectionSummary(t *testing.T) {
	db := NewMockDatabase()
	factories := NewFactories(testDomain, DefaultMagazineName, db)
	alice := newTestUser("alice")
	db.AddUser(alice)
	seedActivities(db, "https://example.org/u/alice", 45)

	doc, err := factories.Collections.OutboxCollection(alice, true)
	if err != nil {
		t.Fatalf("OutboxCollection failed: %v", err)
	}

	if doc["type"] != "OrderedCollection" {
		t.Errorf("Expected type 'OrderedCollection', got '%v'", doc["type"])
	}
	if doc["totalItems"] != 45 {
		t.Errorf("Expected 45 total items, got '%v'", doc["totalItems"])
	}
	if doc["first"] != "https://example.org/u/alice/outbox?page=1" {
		t.Errorf("Expected first page link, got '%v'", doc["first"])
	}
}

func TestOutboxPagination(t *testing.T) {
	db := NewMockDatabase()
	factories := NewFactories(testDomain, DefaultMagazineName, db)
	alice := newTestUser("alice")
	db.AddUser(alice)
	seedActivities(db, "https://example.org/u/alice", 45)

	page1, err := factories.Collections.OutboxCollectionItems(alice, 1, true)
	if err != nil {
		t.Fatalf("OutboxCollectionItems failed: %v", err)
	}
	if page1["type"] != "OrderedCollectionPage" {
		t.Errorf("Expected type 'OrderedCollectionPage', got '%v'", page1["type"])
	}
	items, ok := page1["orderedItems"].([]any)
	if !ok {
		t.Fatalf("Expected ordered items, got %T", page1["orderedItems"])
	}
	if len(items) != 20 {
		t.Errorf("Expected full page of 20, got %d", len(items))
	}
	if page1["next"] != "https://example.org/u/alice/outbox?page=2" {
		t.Errorf("Expected next page link, got '%v'", page1["next"])
	}

	// Items carry no individual @context
	first, ok := items[0].(map[string]any)
	if !ok {
		t.Fatalf("Expected object item, got %T", items[0])
	}
	if _, ok := first["@context"]; ok {
		t.Error("Expected item without @context, the collection carries it")
	}

	page3, err := factories.Collections.OutboxCollectionItems(alice, 3, true)
	if err != nil {
		t.Fatalf("OutboxCollectionItems failed: %v", err)
	}
	items3, _ := page3["orderedItems"].([]any)
	if len(items3) != 5 {
		t.Errorf("Expected trailing page of 5, got %d", len(items3))
	}
	if _, ok := page3["next"]; ok {
		t.Error("Expected no next link on the final page")
	}
}

func TestOutboxSkipsMalformedActivities(t *testing.T) {
	db := NewMockDatabase()
	factories := NewFactories(testDomain, DefaultMagazineName, db)
	alice := newTestUser("alice")
	db.AddUser(alice)
	db.AddActivity(&domain.Activity{
		Id:        uuid.New(),
		Type:      "Create",
		ActorURI:  "https://example.org/u/alice",
		RawJSON:   "{not json",
		CreatedAt: testCreatedAt,
	})
	seedActivities(db, "https://example.org/u/alice", 2)

	page, err := factories.Collections.OutboxCollectionItems(alice, 1, true)
	if err != nil {
		t.Fatalf("OutboxCollectionItems failed: %v", err)
	}
	items, _ := page["orderedItems"].([]any)
	if len(items) != 2 {
		t.Errorf("Expected malformed row skipped, got %d items", len(items))
	}
}

func TestModeratorsCollection(t *testing.T) {
	db := NewMockDatabase()
	factories := NewFactories(testDomain, DefaultMagazineName, db)
	magazine := newTestMagazine("science")
	db.AddMagazine(magazine)
	db.Moderators[magazine.Id] = []domain.User{*newTestUser("alice"), *newTestUser("bob")}

	doc, err := factories.Collections.ModeratorsCollection(magazine, true)
	if err != nil {
		t.Fatalf("ModeratorsCollection failed: %v", err)
	}
	if doc["totalItems"] != 2 {
		t.Errorf("Expected 2 moderators, got '%v'", doc["totalItems"])
	}
	items, ok := doc["orderedItems"].([]string)
	if !ok {
		t.Fatalf("Expected bare id strings, got %T", doc["orderedItems"])
	}
	if !contains(items, "https://example.org/u/alice") {
		t.Errorf("Expected moderator id in list, got %v", items)
	}
}

func TestPinnedCollectionRendersPages(t *testing.T) {
	db := NewMockDatabase()
	factories := NewFactories(testDomain, DefaultMagazineName, db)
	magazine := newTestMagazine("science")
	db.AddMagazine(magazine)
	entry := newTestEntry(newTestUser("alice"), magazine)
	entry.Sticky = true
	db.PinnedEntries[magazine.Id] = []domain.Entry{*entry}

	doc, err := factories.Collections.PinnedCollection(magazine, true)
	if err != nil {
		t.Fatalf("PinnedCollection failed: %v", err)
	}
	if doc["id"] != "https://example.org/m/science/featured" {
		t.Errorf("Expected featured collection id, got '%v'", doc["id"])
	}
	items, ok := doc["orderedItems"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("Expected one rendered entry, got %v", doc["orderedItems"])
	}
	page, ok := items[0].(map[string]any)
	if !ok {
		t.Fatalf("Expected rendered Page document, got %T", items[0])
	}
	if page["type"] != "Page" {
		t.Errorf("Expected Page item, got '%v'", page["type"])
	}
	if _, ok := page["@context"]; ok {
		t.Error("Expected item without @context")
	}
	if page["stickied"] != true {
		t.Errorf("Expected stickied true, got '%v'", page["stickied"])
	}
}
