package activitypub

import (
	"log"
	"strings"

	"github.com/deemkeen/mammut/domain"
)

// shortTitleLimit bounds the plain-text summary prefix
const shortTitleLimit = 100

// PageFactory builds Page documents for link/article entries
type PageFactory struct {
	Resolver *IdentityResolver
	Context  *ContextProvider
	Markdown MarkdownRenderer
	Images   *ImageWrapper
	Mentions *MentionWrapper
	Tags     *TagWrapper
}

// Create builds the full Page document for an entry
func (f *PageFactory) Create(entry *domain.Entry, includeContext bool) map[string]any {
	pageId := f.Resolver.ObjectId(entry)
	authorId := f.Resolver.ActorId(entry.User)
	magazineId := f.Resolver.ActorId(entry.Magazine)

	to := []string{magazineId, PublicURI}
	if entry.Body != "" {
		to = append(to, f.Mentions.AddressesFromBody(entry.Body)...)
	}

	var cc []string
	if followers := f.Resolver.ActorFollowers(entry.User); followers != "" {
		cc = append(cc, followers)
	}

	var content any
	var source any
	if entry.Body != "" {
		html, err := f.Markdown.Render(entry.Body)
		if err != nil {
			log.Printf("PageFactory: failed to render body for entry %s: %v", entry.Id, err)
		} else {
			content = html
		}
		source = map[string]any{
			"content":   entry.Body,
			"mediaType": "text/markdown",
		}
	}

	tags := f.Tags.Hashtags(entry.Tags)
	mentionTags, _ := f.Mentions.Build(entry.Mentions)
	tagList := make([]map[string]any, 0, len(tags)+len(mentionTags))
	tagList = append(tagList, tags...)
	tagList = append(tagList, mentionTags...)

	url := pageId
	if entry.URL != "" {
		url = entry.URL
	}

	doc := map[string]any{
		"id":              pageId,
		"type":            "Page",
		"attributedTo":    authorId,
		"inReplyTo":       nil,
		"to":              dedupe(to),
		"cc":              dedupe(cc),
		"name":            entry.Title,
		"content":         content,
		"summary":         pageSummary(entry),
		"mediaType":       "text/html",
		"source":          source,
		"url":             url,
		"tag":             tagList,
		"commentsEnabled": true,
		"sensitive":       entry.IsAdult,
		"stickied":        entry.Sticky,
		"published":       apTime(entry.CreatedAt),
	}

	if content != nil {
		doc["contentMap"] = map[string]any{entry.Lang: content}
	}
	if entry.EditedAt != nil {
		doc["updated"] = apTime(*entry.EditedAt)
	}

	if entry.URL != "" {
		doc["attachment"] = []map[string]any{
			{"type": "Link", "href": entry.URL},
		}
	} else if image := f.Images.Build(entry.Image); image != nil {
		doc["image"] = image
		doc["attachment"] = []map[string]any{image}
	}

	return f.Context.Apply(doc, includeContext)
}

// pageSummary renders the plain-text summary: the shortened title followed
// by the entry's hashtag list
func pageSummary(entry *domain.Entry) string {
	title := entry.Title
	if runes := []rune(title); len(runes) > shortTitleLimit {
		title = string(runes[:shortTitleLimit]) + "…"
	}
	parts := []string{title}
	for _, tag := range entry.Tags {
		parts = append(parts, "#"+tag)
	}
	return strings.Join(parts, " ")
}
