package activitypub

import (
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/deemkeen/mammut/domain"
	"github.com/google/uuid"
)

// MockDatabase is an in-memory mock implementation of the Database interface for testing.
// It stores data in maps and provides full CRUD operations without requiring a real database.
type MockDatabase struct {
	mu sync.RWMutex

	// Storage maps
	Users         map[uuid.UUID]*domain.User
	UsersByName   map[string]*domain.User
	UsersByApId   map[string]*domain.User
	Magazines     map[uuid.UUID]*domain.Magazine
	MagsByName    map[string]*domain.Magazine
	Moderators    map[uuid.UUID][]domain.User
	PinnedEntries map[uuid.UUID][]domain.Entry
	Activities    []*domain.Activity
	DeliveryQueue map[uuid.UUID]*domain.DeliveryQueueItem

	// Instance statistics
	LocalEntries  int
	LocalComments int

	// Error injection for testing error handling
	ForceError error
}

// NewMockDatabase creates a new mock database with initialized maps
func NewMockDatabase() *MockDatabase {
	return &MockDatabase{
		Users:         make(map[uuid.UUID]*domain.User),
		UsersByName:   make(map[string]*domain.User),
		UsersByApId:   make(map[string]*domain.User),
		Magazines:     make(map[uuid.UUID]*domain.Magazine),
		MagsByName:    make(map[string]*domain.Magazine),
		Moderators:    make(map[uuid.UUID][]domain.User),
		PinnedEntries: make(map[uuid.UUID][]domain.Entry),
		DeliveryQueue: make(map[uuid.UUID]*domain.DeliveryQueueItem),
	}
}

// SetForceError sets an error to be returned by all operations
func (m *MockDatabase) SetForceError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ForceError = err
}

// AddUser adds a user to the mock database
func (m *MockDatabase) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Users[user.Id] = user
	m.UsersByName[user.Username] = user
	if user.ApId != "" {
		m.UsersByApId[user.ApId] = user
	}
}

// AddMagazine adds a magazine to the mock database
func (m *MockDatabase) AddMagazine(magazine *domain.Magazine) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Magazines[magazine.Id] = magazine
	m.MagsByName[magazine.Name] = magazine
}

// AddActivity adds an activity row to the mock database
func (m *MockDatabase) AddActivity(activity *domain.Activity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Activities = append(m.Activities, activity)
}

// Actor operations

func (m *MockDatabase) CreateUser(user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ForceError != nil {
		return m.ForceError
	}
	m.Users[user.Id] = user
	m.UsersByName[user.Username] = user
	if user.ApId != "" {
		m.UsersByApId[user.ApId] = user
	}
	return nil
}

func (m *MockDatabase) ReadUserByUsername(username string) (error, *domain.User) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ForceError != nil {
		return m.ForceError, nil
	}
	user, ok := m.UsersByName[username]
	if !ok {
		return sql.ErrNoRows, nil
	}
	return nil, user
}

func (m *MockDatabase) ReadUserById(id uuid.UUID) (error, *domain.User) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ForceError != nil {
		return m.ForceError, nil
	}
	user, ok := m.Users[id]
	if !ok {
		return sql.ErrNoRows, nil
	}
	return nil, user
}

func (m *MockDatabase) ReadUserByApId(apId string) (error, *domain.User) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ForceError != nil {
		return m.ForceError, nil
	}
	user, ok := m.UsersByApId[apId]
	if !ok {
		return sql.ErrNoRows, nil
	}
	return nil, user
}

func (m *MockDatabase) ReadMagazineByName(name string) (error, *domain.Magazine) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ForceError != nil {
		return m.ForceError, nil
	}
	magazine, ok := m.MagsByName[name]
	if !ok {
		return sql.ErrNoRows, nil
	}
	return nil, magazine
}

func (m *MockDatabase) ReadMagazineById(id uuid.UUID) (error, *domain.Magazine) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ForceError != nil {
		return m.ForceError, nil
	}
	magazine, ok := m.Magazines[id]
	if !ok {
		return sql.ErrNoRows, nil
	}
	return nil, magazine
}

func (m *MockDatabase) ReadMagazineModerators(magazineId uuid.UUID) (error, *[]domain.User) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ForceError != nil {
		return m.ForceError, nil
	}
	moderators := m.Moderators[magazineId]
	return nil, &moderators
}

// Content operations

func (m *MockDatabase) ReadPinnedEntries(magazineId uuid.UUID) (error, *[]domain.Entry) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ForceError != nil {
		return m.ForceError, nil
	}
	entries := m.PinnedEntries[magazineId]
	return nil, &entries
}

// Activity operations

func (m *MockDatabase) CreateActivity(activity *domain.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ForceError != nil {
		return m.ForceError
	}
	// Mirrors the unique index on activities(ap_id)
	if activity.ApId != "" {
		for _, existing := range m.Activities {
			if existing.ApId == activity.ApId {
				return errors.New("constraint failed: UNIQUE constraint failed: activities.ap_id")
			}
		}
	}
	m.Activities = append(m.Activities, activity)
	return nil
}

func (m *MockDatabase) ReadActivitiesByActorURI(actorURI string, offset, limit int) (error, *[]domain.Activity) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ForceError != nil {
		return m.ForceError, nil
	}
	matching := make([]domain.Activity, 0)
	for _, activity := range m.Activities {
		if activity.ActorURI == actorURI {
			matching = append(matching, *activity)
		}
	}
	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].CreatedAt.After(matching[j].CreatedAt)
	})
	if offset >= len(matching) {
		empty := make([]domain.Activity, 0)
		return nil, &empty
	}
	end := offset + limit
	if end > len(matching) {
		end = len(matching)
	}
	page := matching[offset:end]
	return nil, &page
}

func (m *MockDatabase) CountActivitiesByActorURI(actorURI string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ForceError != nil {
		return 0, m.ForceError
	}
	count := 0
	for _, activity := range m.Activities {
		if activity.ActorURI == actorURI {
			count++
		}
	}
	return count, nil
}

// Instance statistics

func (m *MockDatabase) CountUsers() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ForceError != nil {
		return 0, m.ForceError
	}
	return len(m.Users), nil
}

func (m *MockDatabase) CountActiveUsersMonth() (int, error) {
	return m.CountUsers()
}

func (m *MockDatabase) CountActiveUsersHalfYear() (int, error) {
	return m.CountUsers()
}

func (m *MockDatabase) CountLocalEntries() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ForceError != nil {
		return 0, m.ForceError
	}
	return m.LocalEntries, nil
}

func (m *MockDatabase) CountLocalComments() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ForceError != nil {
		return 0, m.ForceError
	}
	return m.LocalComments, nil
}

// Delivery queue operations

func (m *MockDatabase) EnqueueDelivery(item *domain.DeliveryQueueItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ForceError != nil {
		return m.ForceError
	}
	m.DeliveryQueue[item.Id] = item
	return nil
}

func (m *MockDatabase) ReadPendingDeliveries(limit int) (error, *[]domain.DeliveryQueueItem) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ForceError != nil {
		return m.ForceError, nil
	}
	items := make([]domain.DeliveryQueueItem, 0)
	now := time.Now()
	for _, item := range m.DeliveryQueue {
		if len(items) >= limit {
			break
		}
		if !item.NextRetryAt.After(now) {
			items = append(items, *item)
		}
	}
	return nil, &items
}

func (m *MockDatabase) UpdateDeliveryAttempt(id uuid.UUID, attempts int, nextRetry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ForceError != nil {
		return m.ForceError
	}
	if item, ok := m.DeliveryQueue[id]; ok {
		item.Attempts = attempts
		item.NextRetryAt = nextRetry
	}
	return nil
}

func (m *MockDatabase) DeleteDelivery(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ForceError != nil {
		return m.ForceError
	}
	delete(m.DeliveryQueue, id)
	return nil
}
