package domain

import (
	"time"

	"github.com/google/uuid"
)

// Entry represents a link or article submission in a magazine
type Entry struct {
	Id        uuid.UUID
	User      *User
	Magazine  *Magazine
	Title     string
	URL       string // external link, empty for self-posts
	Body      string // markdown, empty when the entry is link-only
	Image     *Image
	Lang      string
	ApId      string
	IsAdult   bool
	Sticky    bool
	Tags      []string
	Mentions  []string
	CreatedAt time.Time
	EditedAt  *time.Time
}

// EntryComment is a threaded comment under an entry.
// Parent is nil for top-level comments.
type EntryComment struct {
	Id        uuid.UUID
	User      *User
	Entry     *Entry
	Parent    *EntryComment
	Body      string
	Image     *Image
	Lang      string
	ApId      string
	IsAdult   bool
	Tags      []string
	Mentions  []string
	CreatedAt time.Time
	EditedAt  *time.Time
}

// Post represents a microblog-style post attached directly to a magazine
type Post struct {
	Id        uuid.UUID
	User      *User
	Magazine  *Magazine
	Body      string
	Image     *Image
	Lang      string
	ApId      string
	IsAdult   bool
	Sticky    bool
	Tags      []string
	Mentions  []string
	CreatedAt time.Time
	EditedAt  *time.Time
}

// PostComment is a threaded comment under a post
type PostComment struct {
	Id        uuid.UUID
	User      *User
	Post      *Post
	Parent    *PostComment
	Body      string
	Image     *Image
	Lang      string
	ApId      string
	IsAdult   bool
	Tags      []string
	Mentions  []string
	CreatedAt time.Time
	EditedAt  *time.Time
}

// Message is a private message inside a conversation thread
type Message struct {
	Id           uuid.UUID
	Sender       *User
	Participants []*User // everyone in the thread, including the sender
	Body         string
	Lang         string
	ApId         string
	CreatedAt    time.Time
}

// Content is implemented by every federated content kind. The set is
// closed; dispatchers type-switch over it and treat an unknown concrete
// type as an internal consistency failure.
type Content interface {
	isContent()
}

func (*Entry) isContent()        {}
func (*EntryComment) isContent() {}
func (*Post) isContent()         {}
func (*PostComment) isContent()  {}
func (*Message) isContent()      {}
