package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isturunt/kst-api/internal/domain"
	"github.com/isturunt/kst-api/internal/service/auth"
	"github.com/isturunt/kst-api/internal/store"
)

// mockUserService is a func-field mock of service.UserService.
type mockUserService struct {
	createUserFn     func(ctx context.Context, email, password string) (*domain.User, error)
	getUserByEmailFn func(ctx context.Context, email string) (*domain.User, error)
}

func (m *mockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (m *mockUserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.getUserByEmailFn(ctx, email)
}

func (m *mockUserService) CreateUser(ctx context.Context, email, password string) (*domain.User, error) {
	return m.createUserFn(ctx, email, password)
}

func (m *mockUserService) UpdateUserEmail(ctx context.Context, userID uuid.UUID, newEmail string) error {
	return errors.New("not implemented")
}

func (m *mockUserService) UpdateUserPassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	return errors.New("not implemented")
}

func (m *mockUserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return errors.New("not implemented")
}

// mockJWTService is a func-field mock of auth.JWTService.
type mockJWTService struct {
	generateTokenFn        func(ctx context.Context, userID uuid.UUID) (string, error)
	validateRefreshTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)
}

func (m *mockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.generateTokenFn != nil {
		return m.generateTokenFn(ctx, userID)
	}
	return "access-token", nil
}

func (m *mockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	return nil, errors.New("not implemented")
}

func (m *mockJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return "refresh-token", nil
}

func (m *mockJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	return m.validateRefreshTokenFn(ctx, tokenString)
}

// mockPasswordVerifier compares plaintext equality.
type mockPasswordVerifier struct{}

func (mockPasswordVerifier) Compare(hashedPassword, password string) error {
	if hashedPassword != "hashed:"+password {
		return errors.New("password mismatch")
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthHandler(users *mockUserService, jwt *mockJWTService) *AuthHandler {
	return NewAuthHandler(users, jwt, mockPasswordVerifier{}, time.Hour, testLogger())
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestAuthHandlerRegister(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("success returns tokens", func(t *testing.T) {
		t.Parallel()

		users := &mockUserService{
			createUserFn: func(ctx context.Context, email, password string) (*domain.User, error) {
				assert.Equal(t, "learner@example.com", email)
				return &domain.User{ID: userID, Email: email}, nil
			},
		}
		handler := newAuthHandler(users, &mockJWTService{})

		rr := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
			Email:    "learner@example.com",
			Password: "a-long-enough-password",
		})

		require.Equal(t, http.StatusCreated, rr.Code)

		var resp AuthResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, userID, resp.UserID)
		assert.Equal(t, "access-token", resp.AccessToken)
		assert.Equal(t, "refresh-token", resp.RefreshToken)
		assert.NotEmpty(t, resp.ExpiresAt)
	})

	t.Run("duplicate email returns conflict", func(t *testing.T) {
		t.Parallel()

		users := &mockUserService{
			createUserFn: func(ctx context.Context, email, password string) (*domain.User, error) {
				return nil, store.ErrEmailExists
			},
		}
		handler := newAuthHandler(users, &mockJWTService{})

		rr := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
			Email:    "learner@example.com",
			Password: "a-long-enough-password",
		})

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("short password fails validation", func(t *testing.T) {
		t.Parallel()

		handler := newAuthHandler(&mockUserService{}, &mockJWTService{})

		rr := postJSON(t, handler.Register, "/api/auth/register", RegisterRequest{
			Email:    "learner@example.com",
			Password: "short",
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		t.Parallel()

		handler := newAuthHandler(&mockUserService{}, &mockJWTService{})

		req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
			bytes.NewReader([]byte("{not json")))
		rr := httptest.NewRecorder()
		handler.Register(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAuthHandlerLogin(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	storedUser := &domain.User{
		ID:             userID,
		Email:          "learner@example.com",
		HashedPassword: "hashed:correct-password",
	}

	t.Run("success returns tokens", func(t *testing.T) {
		t.Parallel()

		users := &mockUserService{
			getUserByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
				return storedUser, nil
			},
		}
		handler := newAuthHandler(users, &mockJWTService{})

		rr := postJSON(t, handler.Login, "/api/auth/login", LoginRequest{
			Email:    "learner@example.com",
			Password: "correct-password",
		})

		require.Equal(t, http.StatusOK, rr.Code)

		var resp AuthResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, userID, resp.UserID)
		assert.Equal(t, "access-token", resp.AccessToken)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		t.Parallel()

		users := &mockUserService{
			getUserByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
				return storedUser, nil
			},
		}
		handler := newAuthHandler(users, &mockJWTService{})

		rr := postJSON(t, handler.Login, "/api/auth/login", LoginRequest{
			Email:    "learner@example.com",
			Password: "wrong-password",
		})

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unknown email is indistinguishable from wrong password", func(t *testing.T) {
		t.Parallel()

		users := &mockUserService{
			getUserByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
				return nil, store.ErrUserNotFound
			},
		}
		handler := newAuthHandler(users, &mockJWTService{})

		rr := postJSON(t, handler.Login, "/api/auth/login", LoginRequest{
			Email:    "nobody@example.com",
			Password: "whatever",
		})

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid credentials")
	})
}

func TestAuthHandlerRefreshToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("valid refresh token yields new pair", func(t *testing.T) {
		t.Parallel()

		jwt := &mockJWTService{
			validateRefreshTokenFn: func(ctx context.Context, tokenString string) (*auth.Claims, error) {
				assert.Equal(t, "old-refresh-token", tokenString)
				return &auth.Claims{UserID: userID, TokenType: "refresh"}, nil
			},
		}
		handler := newAuthHandler(&mockUserService{}, jwt)

		rr := postJSON(t, handler.RefreshToken, "/api/auth/refresh", RefreshTokenRequest{
			RefreshToken: "old-refresh-token",
		})

		require.Equal(t, http.StatusOK, rr.Code)

		var resp RefreshTokenResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, "access-token", resp.AccessToken)
		assert.Equal(t, "refresh-token", resp.RefreshToken)
		assert.NotEmpty(t, resp.ExpiresAt)
	})

	t.Run("expired refresh token is unauthorized", func(t *testing.T) {
		t.Parallel()

		jwt := &mockJWTService{
			validateRefreshTokenFn: func(ctx context.Context, tokenString string) (*auth.Claims, error) {
				return nil, auth.ErrExpiredRefreshToken
			},
		}
		handler := newAuthHandler(&mockUserService{}, jwt)

		rr := postJSON(t, handler.RefreshToken, "/api/auth/refresh", RefreshTokenRequest{
			RefreshToken: "stale-token",
		})

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("access token in refresh slot is rejected", func(t *testing.T) {
		t.Parallel()

		jwt := &mockJWTService{
			validateRefreshTokenFn: func(ctx context.Context, tokenString string) (*auth.Claims, error) {
				return nil, auth.ErrWrongTokenType
			},
		}
		handler := newAuthHandler(&mockUserService{}, jwt)

		rr := postJSON(t, handler.RefreshToken, "/api/auth/refresh", RefreshTokenRequest{
			RefreshToken: "an-access-token",
		})

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
