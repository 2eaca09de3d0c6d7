package activitypub

// Base JSON-LD contexts carried by every top-level outbound document
const (
	ContextActivityStreams = "https://www.w3.org/ns/activitystreams"
	ContextSecurity        = "https://w3id.org/security/v1"
)

// ContextProvider supplies the @context set for outbound documents.
// Platform extension terms are appended after the base contexts, never
// replacing them; several remote implementations reject documents whose
// first context entry is not the AS2 URL.
type ContextProvider struct{}

// ReferencedContexts returns the full @context value for a top-level document
func (p *ContextProvider) ReferencedContexts() []any {
	return []any{
		ContextActivityStreams,
		ContextSecurity,
		map[string]any{
			"lemmy":                     "https://join-lemmy.org/ns#",
			"litepub":                   "http://litepub.social/ns#",
			"pt":                        "https://joinpeertube.org/ns#",
			"schema":                    "http://schema.org#",
			"ChatMessage":               "litepub:ChatMessage",
			"commentsEnabled":           "pt:commentsEnabled",
			"sensitive":                 "as:sensitive",
			"manuallyApprovesFollowers": "as:manuallyApprovesFollowers",
			"postingRestrictedToMods":   "lemmy:postingRestrictedToMods",
			"stickied":                  "lemmy:stickied",
			"PropertyValue":             "schema:PropertyValue",
			"value":                     "schema:value",
		},
	}
}

// Apply sets @context on doc when includeContext is true. Nested
// sub-objects and collection items are built with includeContext=false so
// the context appears exactly once per delivered document.
func (p *ContextProvider) Apply(doc map[string]any, includeContext bool) map[string]any {
	if includeContext {
		doc["@context"] = p.ReferencedContexts()
	}
	return doc
}
