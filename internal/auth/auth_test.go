package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/petvend/site/internal/models"
)

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]*models.User)}
}

func (m *memoryUsers) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.Email] = user
	return nil
}

func (m *memoryUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[email], nil
}

func (m *memoryUsers) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(newMemoryUsers()).WithCost(bcrypt.MinCost)

	user, err := a.Register(ctx, "Owner@PetVend.example", "Owner", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "owner@petvend.example", user.Email)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	_, err = a.Register(ctx, "owner@petvend.example", "Again", "correct-horse")
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = a.Register(ctx, "second@petvend.example", "Short", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = a.Register(ctx, "not-an-email", "Bad", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	got, err := a.Authenticate(ctx, "owner@petvend.example", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = a.Authenticate(ctx, "owner@petvend.example", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = a.Authenticate(ctx, "ghost@petvend.example", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := models.NewUser("owner@petvend.example", "Owner", "hash")

	token, err := m.Generate(user)
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewJWTManager("other-secret", time.Hour).Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewJWTManager("test-secret", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Validate("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestLooksLikeEmail(t *testing.T) {
	for email, want := range map[string]bool{
		"a@b.co":          true,
		"first.last@x.io": true,
		"":                false,
		"@b.co":           false,
		"a@":              false,
		"a@b":             false,
		"a@b.":            false,
		"a b@c.de":        false,
	} {
		assert.Equal(t, want, LooksLikeEmail(email), email)
	}
}

func TestEnsureUser(t *testing.T) {
	ctx := context.Background()
	a := NewPasswordAuthenticator(newMemoryUsers()).WithCost(bcrypt.MinCost)

	created, err := a.EnsureUser(ctx, "ops@petvend.example", "Ops", "correct-horse")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = a.EnsureUser(ctx, "ops@petvend.example", "Ops", "another-password")
	require.NoError(t, err)
	assert.False(t, created, "existing accounts are left alone")

	_, err = a.Authenticate(ctx, "ops@petvend.example", "correct-horse")
	assert.NoError(t, err)

	_, err = a.EnsureUser(ctx, "ops2@petvend.example", "Ops", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestRandomSecret(t *testing.T) {
	a, err := RandomSecret()
	require.NoError(t, err)
	b, err := RandomSecret()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
