package activitypub

import (
	"net/http"
	"time"

	"github.com/deemkeen/mammut/domain"
	"github.com/google/uuid"
)

// Database defines the persistence operations required by the ActivityPub package.
// This interface allows for dependency injection and testing with mock implementations.
type Database interface {
	// Actor operations
	CreateUser(user *domain.User) error
	ReadUserByUsername(username string) (error, *domain.User)
	ReadUserById(id uuid.UUID) (error, *domain.User)
	ReadUserByApId(apId string) (error, *domain.User)
	ReadMagazineByName(name string) (error, *domain.Magazine)
	ReadMagazineById(id uuid.UUID) (error, *domain.Magazine)
	ReadMagazineModerators(magazineId uuid.UUID) (error, *[]domain.User)

	// Content operations
	ReadPinnedEntries(magazineId uuid.UUID) (error, *[]domain.Entry)

	// Activity operations
	CreateActivity(activity *domain.Activity) error
	ReadActivitiesByActorURI(actorURI string, offset, limit int) (error, *[]domain.Activity)
	CountActivitiesByActorURI(actorURI string) (int, error)

	// Instance statistics
	CountUsers() (int, error)
	CountActiveUsersMonth() (int, error)
	CountActiveUsersHalfYear() (int, error)
	CountLocalEntries() (int, error)
	CountLocalComments() (int, error)

	// Delivery queue operations
	EnqueueDelivery(item *domain.DeliveryQueueItem) error
	ReadPendingDeliveries(limit int) (error, *[]domain.DeliveryQueueItem)
	UpdateDeliveryAttempt(id uuid.UUID, attempts int, nextRetry time.Time) error
	DeleteDelivery(id uuid.UUID) error
}

// MarkdownRenderer converts markdown source to HTML for the federated
// representation of a document. A failed render is absorbed by the
// factories, never escalated.
type MarkdownRenderer interface {
	Render(markdown string) (string, error)
}

// ImageResolver resolves a stored image reference to an absolute URL
type ImageResolver interface {
	Resolve(img *domain.Image) (string, error)
}

// MentionResolver extracts @-mentions from a body and resolves handles to
// remote profile ids. Resolution of a single handle may fail; callers skip
// that mention and keep going.
type MentionResolver interface {
	Extract(body string) []string
	ResolveProfileId(handle string) (string, error)
}

// HTTPClient defines the HTTP client operations required by the ActivityPub package.
// This interface allows for dependency injection and testing with mock implementations.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// DefaultHTTPClient is the default HTTP client used in production
type DefaultHTTPClient struct {
	client *http.Client
}

// NewDefaultHTTPClient creates a new default HTTP client with the specified timeout
func NewDefaultHTTPClient(timeout time.Duration) *DefaultHTTPClient {
	return &DefaultHTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Do executes the HTTP request
func (c *DefaultHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}
