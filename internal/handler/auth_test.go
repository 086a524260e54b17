package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tgbridge/relay-server-go/internal/auth"
	"github.com/tgbridge/relay-server-go/internal/model"
	"github.com/tgbridge/relay-server-go/internal/service"
)

func newAuthHandler(accountRepo *mockAccountRepo) *AuthHandler {
	tokens := auth.NewTokenManager("test-secret-test-secret-test-1234", time.Hour)
	return NewAuthHandler(service.NewAccountService(accountRepo, tokens))
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("registers account and returns token", func(t *testing.T) {
		accountRepo := new(mockAccountRepo)
		handler := newAuthHandler(accountRepo)

		accountRepo.On("ExistsByUsername", mock.Anything, "alice").Return(false, nil)
		accountRepo.On("Create", mock.Anything, mock.Anything).Return(&model.Account{
			ID:       "acc-1",
			Username: "alice",
			Name:     "Alice",
		}, nil)

		body := bytes.NewBufferString(`{"username": "alice", "password": "s3cret", "name": "Alice"}`)
		req := httptest.NewRequest(http.MethodPost, "/register", body)
		rec := httptest.NewRecorder()

		handler.Register(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Token    string `json:"token"`
			Username string `json:"username"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "alice", resp.Username)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("returns 409 for duplicate username", func(t *testing.T) {
		accountRepo := new(mockAccountRepo)
		handler := newAuthHandler(accountRepo)

		accountRepo.On("ExistsByUsername", mock.Anything, "alice").Return(true, nil)

		body := bytes.NewBufferString(`{"username": "alice", "password": "s3cret"}`)
		req := httptest.NewRequest(http.MethodPost, "/register", body)
		rec := httptest.NewRecorder()

		handler.Register(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "ALREADY_EXISTS")
	})

	t.Run("returns 400 for missing fields", func(t *testing.T) {
		handler := newAuthHandler(new(mockAccountRepo))

		body := bytes.NewBufferString(`{"username": "alice"}`)
		req := httptest.NewRequest(http.MethodPost, "/register", body)
		rec := httptest.NewRecorder()

		handler.Register(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "MISSING_REQUIRED")
	})

	t.Run("returns 400 for invalid body", func(t *testing.T) {
		handler := newAuthHandler(new(mockAccountRepo))

		body := bytes.NewBufferString(`{invalid}`)
		req := httptest.NewRequest(http.MethodPost, "/register", body)
		rec := httptest.NewRecorder()

		handler.Register(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	account := &model.Account{ID: "acc-1", Username: "alice", PasswordHash: string(hash)}

	t.Run("returns token for valid credentials", func(t *testing.T) {
		accountRepo := new(mockAccountRepo)
		handler := newAuthHandler(accountRepo)

		accountRepo.On("FindByUsername", mock.Anything, "alice").Return(account, nil)

		body := bytes.NewBufferString(`{"username": "alice", "password": "correct-horse"}`)
		req := httptest.NewRequest(http.MethodPost, "/login", body)
		rec := httptest.NewRecorder()

		handler.Login(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "token")
	})

	t.Run("returns 401 for wrong password", func(t *testing.T) {
		accountRepo := new(mockAccountRepo)
		handler := newAuthHandler(accountRepo)

		accountRepo.On("FindByUsername", mock.Anything, "alice").Return(account, nil)

		body := bytes.NewBufferString(`{"username": "alice", "password": "wrong"}`)
		req := httptest.NewRequest(http.MethodPost, "/login", body)
		rec := httptest.NewRecorder()

		handler.Login(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid credentials")
	})

	t.Run("returns 401 for unknown user", func(t *testing.T) {
		accountRepo := new(mockAccountRepo)
		handler := newAuthHandler(accountRepo)

		accountRepo.On("FindByUsername", mock.Anything, "ghost").Return(nil, nil)

		body := bytes.NewBufferString(`{"username": "ghost", "password": "whatever"}`)
		req := httptest.NewRequest(http.MethodPost, "/login", body)
		rec := httptest.NewRecorder()

		handler.Login(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid credentials")
	})
}
