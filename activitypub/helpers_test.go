package activitypub

import (
	"errors"
	"time"

	"github.com/deemkeen/mammut/domain"
	"github.com/google/uuid"
)

const testDomain = "example.org"

var testCreatedAt = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestUser(username string) *domain.User {
	return &domain.User{
		Id:           uuid.New(),
		Username:     username,
		WebPublicKey: "-----BEGIN PUBLIC KEY-----\ntest\n-----END PUBLIC KEY-----",
		CreatedAt:    testCreatedAt,
	}
}

func newTestRemoteUser(username, apId, apProfileId string) *domain.User {
	user := newTestUser(username)
	user.ApId = apId
	user.ApProfileId = apProfileId
	return user
}

func newTestMagazine(name string) *domain.Magazine {
	return &domain.Magazine{
		Id:           uuid.New(),
		Name:         name,
		Title:        name,
		WebPublicKey: "-----BEGIN PUBLIC KEY-----\ntest\n-----END PUBLIC KEY-----",
		CreatedAt:    testCreatedAt,
	}
}

func newTestEntry(user *domain.User, magazine *domain.Magazine) *domain.Entry {
	return &domain.Entry{
		Id:        uuid.New(),
		User:      user,
		Magazine:  magazine,
		Title:     "Hello",
		Lang:      "en",
		CreatedAt: testCreatedAt,
	}
}

// failingMarkdown always fails, for exercising the absorb-and-continue path
type failingMarkdown struct{}

func (failingMarkdown) Render(string) (string, error) {
	return "", errors.New("render failed")
}

// stringsOf extracts a []string from a document field that may be []string
// or []any
func stringsOf(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
