package activitypub

import (
	"log"
	"time"

	"github.com/deemkeen/mammut/domain"
)

// DefaultMagazineName is the fallback magazine content lands in when no
// explicit one is chosen. Several compatibility branches key on it; the
// exact trigger condition works around quirks in remote implementations
// and should be revisited rather than defended.
const DefaultMagazineName = "random"

// noteTraits captures the per-kind differences between the three Note
// shapes (entry comment, post, post comment): which container the note
// sits in, who gets cc'd, and what the note replies to.
type noteTraits struct {
	id            string
	author        *domain.User
	magazine      *domain.Magazine
	body          string
	lang          string
	isAdult       bool
	tags          []string
	mentions      []string
	createdAt     time.Time
	editedAt      *time.Time
	inReplyTo     string       // "" for a root note
	replyToAuthor *domain.User // parent author, nil for a root note
	groupInTo     bool         // top-level posts address the group directly
	groupInCc     bool         // post-family notes cc the group, entry-family cc followers
}

// NoteFactory builds Note documents for entry comments, posts and post
// comments through a single generic builder parameterized by noteTraits.
type NoteFactory struct {
	Resolver *IdentityResolver
	Context  *ContextProvider
	Markdown MarkdownRenderer
	Mentions *MentionWrapper
	Tags     *TagWrapper

	// DefaultMagazine overrides DefaultMagazineName when configured
	DefaultMagazine string
}

func (f *NoteFactory) defaultMagazine() string {
	if f.DefaultMagazine != "" {
		return f.DefaultMagazine
	}
	return DefaultMagazineName
}

// CreateEntryComment builds the Note document for a comment under an entry
func (f *NoteFactory) CreateEntryComment(comment *domain.EntryComment, includeContext bool) map[string]any {
	inReplyTo := f.Resolver.ObjectId(comment.Entry)
	replyToAuthor := comment.Entry.User
	if comment.Parent != nil {
		inReplyTo = f.Resolver.ObjectId(comment.Parent)
		replyToAuthor = comment.Parent.User
	}
	return f.build(noteTraits{
		id:            f.Resolver.ObjectId(comment),
		author:        comment.User,
		magazine:      comment.Entry.Magazine,
		body:          comment.Body,
		lang:          comment.Lang,
		isAdult:       comment.IsAdult,
		tags:          comment.Tags,
		mentions:      comment.Mentions,
		createdAt:     comment.CreatedAt,
		editedAt:      comment.EditedAt,
		inReplyTo:     inReplyTo,
		replyToAuthor: replyToAuthor,
	}, includeContext)
}

// CreatePost builds the Note document for a top-level post in a magazine
func (f *NoteFactory) CreatePost(post *domain.Post, includeContext bool) map[string]any {
	return f.build(noteTraits{
		id:        f.Resolver.ObjectId(post),
		author:    post.User,
		magazine:  post.Magazine,
		body:      post.Body,
		lang:      post.Lang,
		isAdult:   post.IsAdult,
		tags:      post.Tags,
		mentions:  post.Mentions,
		createdAt: post.CreatedAt,
		editedAt:  post.EditedAt,
		groupInTo: true,
		groupInCc: true,
	}, includeContext)
}

// CreatePostComment builds the Note document for a reply under a post
func (f *NoteFactory) CreatePostComment(comment *domain.PostComment, includeContext bool) map[string]any {
	inReplyTo := f.Resolver.ObjectId(comment.Post)
	replyToAuthor := comment.Post.User
	if comment.Parent != nil {
		inReplyTo = f.Resolver.ObjectId(comment.Parent)
		replyToAuthor = comment.Parent.User
	}
	return f.build(noteTraits{
		id:            f.Resolver.ObjectId(comment),
		author:        comment.User,
		magazine:      comment.Post.Magazine,
		body:          comment.Body,
		lang:          comment.Lang,
		isAdult:       comment.IsAdult,
		tags:          comment.Tags,
		mentions:      comment.Mentions,
		createdAt:     comment.CreatedAt,
		editedAt:      comment.EditedAt,
		inReplyTo:     inReplyTo,
		replyToAuthor: replyToAuthor,
		groupInCc:     true,
	}, includeContext)
}

func (f *NoteFactory) build(traits noteTraits, includeContext bool) map[string]any {
	authorId := f.Resolver.ActorId(traits.author)
	magazineId := f.Resolver.ActorId(traits.magazine)

	to := []string{PublicURI}
	if traits.groupInTo {
		to = []string{magazineId, PublicURI}
	}

	var cc []string
	if traits.groupInCc {
		cc = append(cc, magazineId)
	} else if followers := f.Resolver.ActorFollowers(traits.author); followers != "" {
		cc = append(cc, followers)
	}

	mentionTags, mentionIds := f.Mentions.Build(traits.mentions)
	to = append(to, mentionIds...)
	to = append(to, f.Mentions.AddressesFromBody(traits.body)...)

	// The parent author always receives the activity, mentioned or not.
	if traits.replyToAuthor != nil {
		to = append(to, f.Resolver.ActorId(traits.replyToAuthor))
	}

	// Content in the default magazine keeps its categorization visible to
	// servers without a native group concept by carrying the magazine name
	// as a plain hashtag.
	tags := traits.tags
	if traits.magazine.Name == f.defaultMagazine() && !traits.magazine.IsRemote() {
		tags = append(append([]string{}, tags...), traits.magazine.Name)
	}
	tagList := append(f.Tags.Hashtags(tags), mentionTags...)

	var content any
	var source any
	if traits.body != "" {
		html, err := f.Markdown.Render(traits.body)
		if err != nil {
			log.Printf("NoteFactory: failed to render body for %s: %v", traits.id, err)
		} else {
			content = html
		}
		source = map[string]any{
			"content":   traits.body,
			"mediaType": "text/markdown",
		}
	}

	doc := map[string]any{
		"id":           traits.id,
		"type":         "Note",
		"attributedTo": authorId,
		"to":           dedupe(to),
		"cc":           dedupe(cc),
		"sensitive":    traits.isAdult,
		"content":      content,
		"mediaType":    "text/html",
		"source":       source,
		"url":          traits.id,
		"tag":          tagList,
		"published":    apTime(traits.createdAt),
	}

	if traits.inReplyTo != "" {
		doc["inReplyTo"] = traits.inReplyTo
	} else {
		doc["inReplyTo"] = nil
	}
	if content != nil {
		doc["contentMap"] = map[string]any{traits.lang: content}
	}
	if traits.editedAt != nil {
		doc["updated"] = apTime(*traits.editedAt)
	}

	return f.Context.Apply(doc, includeContext)
}
