package activitypub

import (
	"errors"
	"fmt"
	"strings"

	"github.com/deemkeen/mammut/domain"
	"github.com/deemkeen/mammut/util"
)

// LinkMarkdown renders post bodies to HTML. Only markdown links are
// transformed; everything else passes through untouched.
type LinkMarkdown struct{}

func (LinkMarkdown) Render(markdown string) (string, error) {
	return util.MarkdownLinksToHTML(markdown), nil
}

// StaticImages resolves stored images against the local static file host.
// Images sourced from a remote URL resolve to that URL verbatim.
type StaticImages struct {
	Domain string
}

func (s StaticImages) Resolve(img *domain.Image) (string, error) {
	if img == nil {
		return "", errors.New("no image")
	}
	if img.SourceURL != "" {
		return img.SourceURL, nil
	}
	if img.FilePath == "" {
		return "", errors.New("image has neither source url nor file path")
	}
	return fmt.Sprintf("https://%s/static/%s", s.Domain, img.FilePath), nil
}

// HandleMentions resolves @-handles against the local user table. Remote
// users federate into the same table, so a cached remote handle resolves
// to its origin profile id without a network round trip.
type HandleMentions struct {
	Db  Database
	Ids IdBuilder
}

func (m HandleMentions) Extract(body string) []string {
	return util.ExtractMentions(body)
}

func (m HandleMentions) ResolveProfileId(handle string) (string, error) {
	name, host, qualified := strings.Cut(handle, "@")
	if qualified && host != m.Ids.Domain {
		err, user := m.Db.ReadUserByUsername(name)
		if err != nil {
			return "", fmt.Errorf("unknown remote handle %s: %w", handle, err)
		}
		if !user.IsRemote() {
			return "", fmt.Errorf("handle %s names host %s but user is local", handle, host)
		}
		if user.ApProfileId != "" {
			return user.ApProfileId, nil
		}
		return user.ApId, nil
	}
	return m.Ids.User(name), nil
}

// Factories bundles every document factory wired against one instance
// domain and database. Construct it once at startup.
type Factories struct {
	Resolver    *IdentityResolver
	Context     *ContextProvider
	Persons     *PersonFactory
	Groups      *GroupFactory
	Pages       *PageFactory
	Notes       *NoteFactory
	Messages    *ChatMessageFactory
	Objects     *ActivityFactory
	Envelopes   *EnvelopeFactory
	Collections *CollectionFactory
	Moderation  *ModerationFactory
	Tombstones  *TombstoneFactory
}

func NewFactories(instanceDomain, defaultMagazine string, db Database) *Factories {
	resolver := &IdentityResolver{Ids: IdBuilder{Domain: instanceDomain}}
	context := &ContextProvider{}
	markdown := LinkMarkdown{}
	images := &ImageWrapper{Images: StaticImages{Domain: instanceDomain}}
	tags := &TagWrapper{Ids: resolver.Ids}
	mentions := &MentionWrapper{
		Tags:     *tags,
		Mentions: HandleMentions{Db: db, Ids: resolver.Ids},
	}

	pages := &PageFactory{
		Resolver: resolver,
		Context:  context,
		Markdown: markdown,
		Images:   images,
		Mentions: mentions,
		Tags:     tags,
	}
	notes := &NoteFactory{
		Resolver:        resolver,
		Context:         context,
		Markdown:        markdown,
		Mentions:        mentions,
		Tags:            tags,
		DefaultMagazine: defaultMagazine,
	}
	messages := &ChatMessageFactory{
		Resolver: resolver,
		Context:  context,
		Markdown: markdown,
	}
	objects := &ActivityFactory{Pages: pages, Notes: notes, Messages: messages}
	envelopes := &EnvelopeFactory{Resolver: resolver, Context: context, Objects: objects}

	return &Factories{
		Resolver:    resolver,
		Context:     context,
		Persons:     &PersonFactory{Resolver: resolver, Context: context, Markdown: markdown, Images: images},
		Groups:      &GroupFactory{Resolver: resolver, Context: context, Markdown: markdown, Images: images},
		Pages:       pages,
		Notes:       notes,
		Messages:    messages,
		Objects:     objects,
		Envelopes:   envelopes,
		Collections: &CollectionFactory{Resolver: resolver, Context: context, Pages: pages, Db: db},
		Moderation:  &ModerationFactory{Resolver: resolver, Context: context, Envelopes: envelopes, Db: db, DefaultMagazine: defaultMagazine},
		Tombstones:  &TombstoneFactory{Resolver: resolver},
	}
}
