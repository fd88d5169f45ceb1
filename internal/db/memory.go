package db

import (
	"context"
	"sort"
	"sync"

	"trailcast/internal/types"
)

// MemoryStore serves the activity catalog, users and user activities from
// memory. It backs local and test mode when no database is configured.
type MemoryStore struct {
	mu             sync.RWMutex
	activities     []types.ActivityType
	users          map[string]types.User
	userActivities map[string][]types.UserActivity
}

// NewMemoryStore creates a store holding catalog.
func NewMemoryStore(catalog []types.ActivityType) *MemoryStore {
	activities := append([]types.ActivityType(nil), catalog...)
	sort.SliceStable(activities, func(i, j int) bool {
		if activities[i].SortOrder != activities[j].SortOrder {
			return activities[i].SortOrder < activities[j].SortOrder
		}
		return activities[i].Name < activities[j].Name
	})
	return &MemoryStore{
		activities:     activities,
		users:          make(map[string]types.User),
		userActivities: make(map[string][]types.UserActivity),
	}
}

// ListActive implements types.ActivityRepository.
func (m *MemoryStore) ListActive(_ context.Context) ([]types.ActivityType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []types.ActivityType{}
	for _, a := range m.activities {
		if a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

// GetBySlug implements types.ActivityRepository.
func (m *MemoryStore) GetBySlug(_ context.Context, slug string) (*types.ActivityType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.activities {
		if a.Slug == slug && a.IsActive {
			found := a
			return &found, nil
		}
	}
	return nil, types.NewAppError(types.ErrCodeNotFoundActivity, "activity not found", nil)
}

// PutUser stores or replaces a user.
func (m *MemoryStore) PutUser(u types.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

// AddUserActivity links a user to a catalog activity by slug.
func (m *MemoryStore) AddUserActivity(userID, slug string, overrides types.RangeOverrides, primary bool) error {
	a, err := m.GetBySlug(context.Background(), slug)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.userActivities[userID]
	list = append(list, types.UserActivity{
		ID:        int64(len(list) + 1),
		UserID:    userID,
		Activity:  *a,
		Overrides: overrides,
		IsPrimary: primary,
	})
	m.userActivities[userID] = list
	return nil
}

// GetByID implements types.UserRepository.
func (m *MemoryStore) GetByID(_ context.Context, userID string) (*types.User, error) {
	if _, err := ParseUserID(userID); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
	}
	return &u, nil
}

// ListForUser implements types.UserActivityRepository.
func (m *MemoryStore) ListForUser(_ context.Context, userID string) ([]types.UserActivity, error) {
	if _, err := ParseUserID(userID); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]types.UserActivity{}, m.userActivities[userID]...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsPrimary != out[j].IsPrimary {
			return out[i].IsPrimary
		}
		if out[i].Activity.SortOrder != out[j].Activity.SortOrder {
			return out[i].Activity.SortOrder < out[j].Activity.SortOrder
		}
		return out[i].Activity.Name < out[j].Activity.Name
	})
	return out, nil
}

var (
	_ types.ActivityRepository     = (*MemoryStore)(nil)
	_ types.UserRepository         = (*MemoryStore)(nil)
	_ types.UserActivityRepository = (*MemoryStore)(nil)
	_ types.ActivityRepository     = (*ActivityRepository)(nil)
	_ types.UserRepository         = (*UserRepository)(nil)
	_ types.UserActivityRepository = (*UserActivityRepository)(nil)
)

// DemoUserID is the user SeedDemoUser creates.
const DemoUserID = "0b5a1c8e-3f6d-4e2a-9c7b-5d8e1f2a3b4c"

// SeedDemoUser adds a user with a home location and two activities, one
// with personal overrides, so user endpoints work in local mode.
func SeedDemoUser(m *MemoryStore) error {
	lat, lon := 37.7749, -122.4194
	m.PutUser(types.User{
		ID:               DemoUserID,
		Username:         "demo",
		HomeLatitude:     &lat,
		HomeLongitude:    &lon,
		HomeLocationName: "San Francisco",
		UseMetric:        true,
		Timezone:         "America/Los_Angeles",
	})
	if err := m.AddUserActivity(DemoUserID, "hiking", types.RangeOverrides{}, false); err != nil {
		return err
	}
	return m.AddUserActivity(DemoUserID, "surfing", types.RangeOverrides{
		IdealTempMin: types.Float(12),
		MaxWindSpeed: types.Float(15),
	}, true)
}
