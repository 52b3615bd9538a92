package service

import (
	"context"
	"testing"
	"time"

	"github.com/sakashimaa/go-shop-api/internal/auth"
	"github.com/sakashimaa/go-shop-api/internal/domain"
	"github.com/sakashimaa/go-shop-api/internal/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if _, ok := r.byEmail[user.Email]; ok {
		return repository.ErrEmailTaken
	}
	cp := *user
	r.byID[user.ID] = &cp
	r.byEmail[user.Email] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) List(context.Context) ([]domain.User, error) { return nil, nil }

func (r *fakeUserRepo) Update(context.Context, string, *domain.UpdateUserInput, string) error {
	return nil
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id string, role domain.Role) error {
	u, ok := r.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (r *fakeUserRepo) Delete(context.Context, string) error { return nil }

func newAuthServiceForTest(users repository.UserRepository) AuthService {
	return NewAuthService(users, "test-secret", time.Hour, zap.NewNop())
}

func TestRegister_HashesPasswordAndDefaultsRole(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthServiceForTest(users)

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	require.Equal(t, domain.RoleUser, user.Role)
	require.NotEmpty(t, user.ID)
	require.NotEqual(t, "secret123", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthServiceForTest(users)

	input := RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret123"}

	_, err := svc.Register(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), input)
	require.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestLogin_Success(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthServiceForTest(users)

	registered, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	token, user, err := svc.Login(context.Background(), "alice@example.com", "secret123")
	require.NoError(t, err)
	require.Equal(t, registered.ID, user.ID)

	claims, err := auth.ValidateToken("test-secret", token)
	require.NoError(t, err)
	require.Equal(t, registered.ID, claims.UserID)
	require.Equal(t, "user", claims.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthServiceForTest(users)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "alice@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := newAuthServiceForTest(newFakeUserRepo())

	// same error as a wrong password, the response does not leak which
	_, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRole(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthServiceForTest(users)

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	require.NoError(t, users.UpdateRole(context.Background(), user.ID, domain.RoleAdmin))

	role, err := svc.Role(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, role)
}
