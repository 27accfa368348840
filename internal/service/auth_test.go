package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/traintrack/checkin-api/internal/domain"
)

type fakeUserRepo struct {
	users map[string]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	if _, ok := r.users[user.Email]; ok {
		return domain.User{}, ErrUserEmailExists
	}

	user.ID = uint(len(r.users) + 1)
	r.users[user.Email] = user

	return user, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	user, ok := r.users[email]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}

	return user, nil
}

func TestAuthService_Signup(t *testing.T) {
	t.Run("the stored password is a bcrypt hash", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewAuthService(repo)

		_, err := svc.Signup(context.Background(), domain.User{
			Email:    "admin@example.com",
			Password: "s3cret-pass",
			Name:     "Admin",
			Role:     domain.RoleAdmin,
		})

		require.NoError(t, err)
		stored := repo.users["admin@example.com"]
		assert.NotEqual(t, "s3cret-pass", stored.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("s3cret-pass")))
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewAuthService(repo)

		_, err := svc.Signup(context.Background(), domain.User{Email: "a@example.com", Password: "pass1234"})
		require.NoError(t, err)

		_, err = svc.Signup(context.Background(), domain.User{Email: "a@example.com", Password: "pass1234"})
		assert.ErrorIs(t, err, ErrUserEmailExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo)

	_, err := svc.Signup(context.Background(), domain.User{
		Email:    "admin@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	t.Run("correct credentials", func(t *testing.T) {
		user, err := svc.Login(context.Background(), "admin@example.com", "s3cret-pass")

		require.NoError(t, err)
		assert.Equal(t, "admin@example.com", user.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "admin@example.com", "guess")

		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "ghost@example.com", "s3cret-pass")

		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
