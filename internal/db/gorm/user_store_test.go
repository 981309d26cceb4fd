// Package gorm provides GORM-based database operations for promptlean.
package gorm

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm/logger"
)

// UserStoreSuite is a test suite for user profile operations.
type UserStoreSuite struct {
	suite.Suite
	store *Store
	users *UserStore
	ctx   context.Context
}

func (s *UserStoreSuite) SetupTest() {
	store, err := NewStore(Config{
		Path:     filepath.Join(s.T().TempDir(), "test.db"),
		MaxConns: 4,
		LogLevel: logger.Silent,
	})
	s.Require().NoError(err)

	s.store = store
	s.users = NewUserStore(store)
	s.ctx = context.Background()
}

func (s *UserStoreSuite) TearDownTest() {
	s.store.Close()
}

func TestUserStoreSuite(t *testing.T) {
	suite.Run(t, new(UserStoreSuite))
}

func (s *UserStoreSuite) TestAddUser() {
	user, err := s.users.AddUser(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("alice", user.Name)
	s.Positive(user.ID)
	s.Positive(user.CreatedAtEpoch)
}

func (s *UserStoreSuite) TestAddDuplicateUser() {
	_, err := s.users.AddUser(s.ctx, "alice")
	s.Require().NoError(err)

	_, err = s.users.AddUser(s.ctx, "bob")
	s.Require().NoError(err)

	_, err = s.users.AddUser(s.ctx, "alice")
	s.ErrorIs(err, ErrDuplicateUser)
}

func (s *UserStoreSuite) TestGetAllUsersLocaleOrder() {
	for _, name := range []string{"Bob", "alice", "Zoe"} {
		_, err := s.users.AddUser(s.ctx, name)
		s.Require().NoError(err)
	}

	users, err := s.users.GetAllUsers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 3)

	names := []string{users[0].Name, users[1].Name, users[2].Name}
	s.Equal([]string{"alice", "Bob", "Zoe"}, names)
}

func (s *UserStoreSuite) TestGetAllUsersEmpty() {
	users, err := s.users.GetAllUsers(s.ctx)
	s.Require().NoError(err)
	s.Empty(users)
}

func (s *UserStoreSuite) TestIDsStrictlyIncrease() {
	first, err := s.users.AddUser(s.ctx, "first")
	s.Require().NoError(err)

	second, err := s.users.AddUser(s.ctx, "second")
	s.Require().NoError(err)

	s.Greater(second.ID, first.ID)

	// Ids are not reused after a wipe
	s.Require().NoError(s.store.ClearAllData(s.ctx))

	third, err := s.users.AddUser(s.ctx, "third")
	s.Require().NoError(err)
	s.Greater(third.ID, second.ID)
}
