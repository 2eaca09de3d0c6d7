package activitypub

import (
	"log"
	"strings"
	"time"

	"github.com/deemkeen/mammut/domain"
)

// apTime renders a timestamp the way remote servers expect it
func apTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ImageWrapper builds image/icon fragments for parent documents
type ImageWrapper struct {
	Images ImageResolver
}

// Build returns an Image fragment for img, or nil when the image is absent
// or its URL cannot be resolved. A failed resolution never fails the
// surrounding document.
func (w *ImageWrapper) Build(img *domain.Image) map[string]any {
	if img == nil {
		return nil
	}
	url, err := w.Images.Resolve(img)
	if err != nil {
		log.Printf("ImageWrapper: failed to resolve image %s: %v", img.Id, err)
		return nil
	}
	fragment := map[string]any{
		"type": "Image",
		"url":  url,
	}
	if img.MediaType != "" {
		fragment["mediaType"] = img.MediaType
	}
	if img.AltText != "" {
		fragment["name"] = img.AltText
	}
	return fragment
}

// TagWrapper builds hashtag and mention tag fragments
type TagWrapper struct {
	Ids IdBuilder
}

// Hashtags returns Hashtag fragments for the given tag names
func (w *TagWrapper) Hashtags(tags []string) []map[string]any {
	fragments := make([]map[string]any, 0, len(tags))
	for _, tag := range tags {
		fragments = append(fragments, map[string]any{
			"type": "Hashtag",
			"href": w.Ids.Tag(tag),
			"name": "#" + tag,
		})
	}
	return fragments
}

// Mention returns a Mention fragment for a resolved handle
func (w *TagWrapper) Mention(handle, href string) map[string]any {
	if !strings.HasPrefix(handle, "@") {
		handle = "@" + handle
	}
	return map[string]any{
		"type": "Mention",
		"href": href,
		"name": handle,
	}
}

// MentionWrapper resolves the mentions of a body into tag fragments and
// addressing entries. Each handle is resolved independently; a failed
// lookup skips that one mention and keeps the rest of the document intact.
type MentionWrapper struct {
	Tags     TagWrapper
	Mentions MentionResolver
}

// Build resolves handles to (tag fragments, profile ids). The two slices
// are index-aligned subsets of the resolvable handles.
func (w *MentionWrapper) Build(handles []string) ([]map[string]any, []string) {
	var fragments []map[string]any
	var profileIds []string
	for _, handle := range handles {
		profileId, err := w.Mentions.ResolveProfileId(handle)
		if err != nil {
			log.Printf("MentionWrapper: skipping unresolvable mention %s: %v", handle, err)
			continue
		}
		fragments = append(fragments, w.Tags.Mention(handle, profileId))
		profileIds = append(profileIds, profileId)
	}
	return fragments, profileIds
}

// AddressesFromBody scans a body for mention targets and returns their
// resolved profile ids, skipping handles that fail to resolve.
func (w *MentionWrapper) AddressesFromBody(body string) []string {
	if body == "" {
		return nil
	}
	_, profileIds := w.Build(w.Mentions.Extract(body))
	return profileIds
}

// dedupe returns values with duplicates and empty strings removed,
// preserving first-seen order
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
