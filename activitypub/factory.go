package activitypub

import (
	"fmt"

	"github.com/deemkeen/mammut/domain"
)

// ActivityFactory dispatches a content item to the document factory for
// its kind. The switch is exhaustive over the domain.Content union; a new
// content kind that reaches the default case is a bug at the call site,
// not a runtime condition.
type ActivityFactory struct {
	Pages    *PageFactory
	Notes    *NoteFactory
	Messages *ChatMessageFactory
}

// CreateObject builds the typed document for any content item
func (f *ActivityFactory) CreateObject(item domain.Content, includeContext bool) map[string]any {
	switch c := item.(type) {
	case *domain.Entry:
		return f.Pages.Create(c, includeContext)
	case *domain.EntryComment:
		return f.Notes.CreateEntryComment(c, includeContext)
	case *domain.Post:
		return f.Notes.CreatePost(c, includeContext)
	case *domain.PostComment:
		return f.Notes.CreatePostComment(c, includeContext)
	case *domain.Message:
		return f.Messages.Create(c, includeContext)
	default:
		panic(fmt.Sprintf("activitypub: no document factory for content type %T", item))
	}
}
