package user

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/antonminaichev/foodorder/internal/types/user"
)

type stubUserRepo struct {
	users       map[string]*user.User
	errOnCreate error
	errOnFind   error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*user.User)}
}

func (r *stubUserRepo) Create(ctx context.Context, u *user.User) error {
	if r.errOnCreate != nil {
		return r.errOnCreate
	}
	if _, exists := r.users[u.Login]; exists {
		return ErrUserExists
	}
	u.ID = int64(len(r.users) + 1)
	r.users[u.Login] = u
	return nil
}

func (r *stubUserRepo) FindByLogin(ctx context.Context, login string) (*user.User, error) {
	if r.errOnFind != nil {
		return nil, r.errOnFind
	}
	u, ok := r.users[login]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func TestServiceRegister(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewService(repo, []byte("secret"), time.Hour, "chef", " manager ")
	ctx := context.Background()

	t.Run("successful registration", func(t *testing.T) {
		u, err := svc.Register(ctx, "login1", "password123")
		require.NoError(t, err)
		assert.Equal(t, "login1", u.Login)
		assert.NotZero(t, u.ID)
		assert.False(t, u.IsAdmin)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")))
	})

	t.Run("staff login becomes admin", func(t *testing.T) {
		for _, login := range []string{"chef", "manager"} {
			u, err := svc.Register(ctx, login, "password123")
			require.NoError(t, err)
			assert.True(t, u.IsAdmin, login)
		}
	})

	t.Run("password too short", func(t *testing.T) {
		_, err := svc.Register(ctx, "login2", "short")
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("user already exists", func(t *testing.T) {
		_, err := svc.Register(ctx, "login1", "anotherpass")
		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("repo create returns error", func(t *testing.T) {
		repo := newStubUserRepo()
		repo.errOnCreate = errors.New("db error")
		svc := NewService(repo, []byte("secret"), time.Hour)

		_, err := svc.Register(ctx, "login3", "password123")
		assert.EqualError(t, err, "db error")
	})
}

func TestServiceAuthenticate(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewService(repo, []byte("secret"), time.Hour)
	issuedAt := time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }
	ctx := context.Background()

	password := "password123"
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	repo.users["login1"] = &user.User{ID: 1, Login: "login1", PasswordHash: string(hash)}

	t.Run("invalid login", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "no-user", "password")
		assert.ErrorIs(t, err, ErrInvalidCreds)
	})

	t.Run("invalid password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "login1", "wrongpass")
		assert.ErrorIs(t, err, ErrInvalidCreds)
	})

	t.Run("repo find returns error", func(t *testing.T) {
		repo := newStubUserRepo()
		repo.errOnFind = errors.New("db find error")
		svc := NewService(repo, []byte("secret"), time.Hour)

		_, err := svc.Authenticate(ctx, "login1", password)
		assert.ErrorIs(t, err, ErrInvalidCreds)
	})

	t.Run("authenticate returns valid JWT", func(t *testing.T) {
		token, err := svc.Authenticate(ctx, "login1", password)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		parsed, _, err := new(jwt.Parser).ParseUnverified(token, &jwt.RegisteredClaims{})
		require.NoError(t, err)
		claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
		require.True(t, ok)
		assert.Equal(t, "login1", claims.Subject)
		assert.Equal(t, issuedAt.Unix(), claims.IssuedAt.Unix())
		assert.Equal(t, issuedAt.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	})
}

func setupUserHandler() (*Handler, *stubUserRepo) {
	repo := newStubUserRepo()
	svc := NewService(repo, []byte("secret"), time.Hour)
	return NewHandler(svc), repo
}

func TestUserHandlerRegister(t *testing.T) {
	handler, _ := setupUserHandler()

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"Valid registration", `{"login":"testuser","password":"password123"}`, http.StatusOK},
		{"Invalid JSON", `{"login":"testuser",password:"badjson"}`, http.StatusBadRequest},
		{"Missing login", `{"password":"password123"}`, http.StatusBadRequest},
		{"Password too short", `{"login":"testuser","password":"short"}`, http.StatusBadRequest},
		{"User already exists", `{"login":"testuser","password":"password123"}`, http.StatusConflict},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(tt.body))
		rec := httptest.NewRecorder()

		handler.Register(rec, req)
		res := rec.Result()
		defer res.Body.Close()

		if res.StatusCode != tt.wantStatus {
			t.Errorf("%s: got status %d, want %d", tt.name, res.StatusCode, tt.wantStatus)
		}
	}
}

func TestUserHandlerLogin(t *testing.T) {
	handler, repo := setupUserHandler()

	pass := "password123"
	hash, _ := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	repo.users["testuser"] = &user.User{
		ID:           1,
		Login:        "testuser",
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"Valid login", `{"login":"testuser","password":"password123"}`, http.StatusOK},
		{"Invalid password", `{"login":"testuser","password":"wrongpass"}`, http.StatusUnauthorized},
		{"Invalid JSON", `{"login":"testuser",password:"badjson"}`, http.StatusBadRequest},
		{"User not found", `{"login":"nouser","password":"pass"}`, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tt.body))
		rec := httptest.NewRecorder()

		handler.Login(rec, req)
		res := rec.Result()

		defer res.Body.Close()

		if res.StatusCode != tt.wantStatus {
			t.Errorf("%s: got status %d, want %d", tt.name, res.StatusCode, tt.wantStatus)
		}
	}
}

func TestUserHandlerLoginSetsTokenCookie(t *testing.T) {
	handler, repo := setupUserHandler()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.users["chef"] = &user.User{ID: 3, Login: "chef", PasswordHash: string(hash), IsAdmin: true}

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"login":"chef","password":"password123"}`))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	res := rec.Result()
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	auth := res.Header.Get("Authorization")
	require.True(t, strings.HasPrefix(auth, "Bearer "))

	var cookie *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == "jwt" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, strings.TrimPrefix(auth, "Bearer "), cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)
	assert.Contains(t, rec.Body.String(), cookie.Value)
}
