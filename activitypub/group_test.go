package activitypub

import (
	"strings"
	"testing"
	"time"
)

func TestGroupDocumentShape(t *testing.T) {
	factory := NewFactories(testDomain, DefaultMagazineName, NewMockDatabase()).Groups
	magazine := newTestMagazine("science")
	magazine.Title = "Science"
	magazine.Description = "All about science"
	magazine.Rules = "Be nice"

	doc := factory.Create(magazine, true)

	if doc["type"] != "Group" {
		t.Errorf("Expected type 'Group', got '%v'", doc["type"])
	}
	if doc["id"] != "https://example.org/m/science" {
		t.Errorf("Expected id 'https://example.org/m/science', got '%v'", doc["id"])
	}
	if doc["name"] != "Science" {
		t.Errorf("Expected name 'Science', got '%v'", doc["name"])
	}
	if doc["preferredUsername"] != "science" {
		t.Errorf("Expected preferredUsername 'science', got '%v'", doc["preferredUsername"])
	}
	if doc["attributedTo"] != "https://example.org/m/science/moderators" {
		t.Errorf("Expected attributedTo moderators URL, got '%v'", doc["attributedTo"])
	}
	if doc["featured"] != "https://example.org/m/science/featured" {
		t.Errorf("Expected featured URL, got '%v'", doc["featured"])
	}
	if doc["sensitive"] != false {
		t.Errorf("Expected sensitive false, got '%v'", doc["sensitive"])
	}
	if doc["postingRestrictedToMods"] != false {
		t.Errorf("Expected postingRestrictedToMods false, got '%v'", doc["postingRestrictedToMods"])
	}

	summary, ok := doc["summary"].(string)
	if !ok {
		t.Fatalf("Expected summary string, got %T", doc["summary"])
	}
	if !strings.Contains(summary, "All about science") {
		t.Errorf("Expected summary to contain description, got '%s'", summary)
	}
	if !strings.Contains(summary, "Rules") || !strings.Contains(summary, "Be nice") {
		t.Errorf("Expected summary to carry the rules inline, got '%s'", summary)
	}

	source, ok := doc["source"].(map[string]any)
	if !ok {
		t.Fatalf("Expected source object, got %T", doc["source"])
	}
	if source["mediaType"] != "text/markdown" {
		t.Errorf("Expected markdown source, got '%v'", source["mediaType"])
	}
	raw, _ := source["content"].(string)
	if !strings.Contains(raw, "### Rules") {
		t.Errorf("Expected raw markdown with rules heading, got '%s'", raw)
	}
}

func TestGroupUpdatedPrefersLastActive(t *testing.T) {
	factory := NewFactories(testDomain, DefaultMagazineName, NewMockDatabase()).Groups
	magazine := newTestMagazine("science")

	doc := factory.Create(magazine, true)
	if doc["updated"] != doc["published"] {
		t.Errorf("Expected updated to fall back to published, got '%v' vs '%v'", doc["updated"], doc["published"])
	}

	lastActive := testCreatedAt.Add(48 * time.Hour)
	magazine.LastActiveAt = &lastActive
	doc = factory.Create(magazine, true)
	if doc["updated"] != apTime(lastActive) {
		t.Errorf("Expected updated '%s', got '%v'", apTime(lastActive), doc["updated"])
	}
}

func TestGroupOmitsSummaryWithoutDescriptionAndRules(t *testing.T) {
	factory := NewFactories(testDomain, DefaultMagazineName, NewMockDatabase()).Groups
	magazine := newTestMagazine("science")

	doc := factory.Create(magazine, true)
	if _, ok := doc["summary"]; ok {
		t.Error("Expected no summary for magazine without description or rules")
	}
	if _, ok := doc["source"]; ok {
		t.Error("Expected no source for magazine without description or rules")
	}
}
