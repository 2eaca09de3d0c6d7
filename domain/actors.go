package domain

import (
	"time"

	"github.com/google/uuid"
)

// Image references a stored or remote image attachment
type Image struct {
	Id        uuid.UUID
	FilePath  string // local storage path, empty for remote-only images
	SourceURL string // original remote URL, empty for local uploads
	AltText   string
	MediaType string
}

// User represents a local or remote person account.
// A user is remote iff ApId is set; in that case ApProfileId carries the
// canonical profile URI as published by the origin server.
type User struct {
	Id             uuid.UUID
	Username       string
	DisplayName    string
	About          string // profile summary, markdown
	ApId           string
	ApProfileId    string
	WebPublicKey   string
	WebPrivateKey  string
	Avatar         *Image
	LastActiveAt   *time.Time
	CreatedAt      time.Time
}

// IsRemote reports whether the user originated on another server
func (u *User) IsRemote() bool {
	return u.ApId != ""
}

// Handle returns the formatted @user or @user@domain string
func (u *User) Handle(localDomain string) string {
	if u.IsRemote() {
		return "@" + u.Username
	}
	return "@" + u.Username + "@" + localDomain
}

// Magazine represents a local or remote group/community.
// Same remote rule as User: remote iff ApId is set.
type Magazine struct {
	Id                      uuid.UUID
	Name                    string // short handle, used in URLs
	Title                   string
	Description             string // markdown
	Rules                   string // markdown, appended to the federated summary
	ApId                    string
	ApProfileId             string
	WebPublicKey            string
	WebPrivateKey           string
	Icon                    *Image
	IsAdult                 bool
	PostingRestrictedToMods bool
	LastActiveAt            *time.Time
	CreatedAt               time.Time
}

// IsRemote reports whether the magazine originated on another server
func (m *Magazine) IsRemote() bool {
	return m.ApId != ""
}

// Actor is implemented by every entity that can own content and sign
// activities. The concrete set is closed: User and Magazine.
type Actor interface {
	isActor()
}

func (*User) isActor()     {}
func (*Magazine) isActor() {}
