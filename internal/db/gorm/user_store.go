// Package gorm provides GORM-based database operations for promptlean.
package gorm

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gorm.io/gorm/clause"

	"github.com/promptlean/promptlean/pkg/models"
)

// UserStore provides user-profile database operations.
type UserStore struct {
	store *Store
}

// NewUserStore creates a new user store.
func NewUserStore(store *Store) *UserStore {
	return &UserStore{store: store}
}

// AddUser creates a profile and returns it with the generated id. Duplicate
// detection is index-enforced: the insert is ON CONFLICT DO NOTHING, so two
// near-simultaneous adds of the same name cannot both succeed.
func (s *UserStore) AddUser(ctx context.Context, name string) (*models.UserProfile, error) {
	row := &User{
		Name:           name,
		CreatedAtEpoch: time.Now().UnixMilli(),
	}

	res := s.store.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row)
	if res.Error != nil {
		return nil, fmt.Errorf("add user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrDuplicateUser
	}

	return toModelUser(row), nil
}

// GetAllUsers returns every stored profile sorted by name ascending with
// locale-aware comparison ("alice" before "Bob" before "Zoe"). An empty
// store yields an empty list, not an error.
func (s *UserStore) GetAllUsers(ctx context.Context) ([]*models.UserProfile, error) {
	var rows []User
	if err := s.store.DB.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]*models.UserProfile, len(rows))
	for i := range rows {
		users[i] = toModelUser(&rows[i])
	}

	c := collate.New(language.English)
	sort.SliceStable(users, func(i, j int) bool {
		return c.CompareString(users[i].Name, users[j].Name) < 0
	})
	return users, nil
}
