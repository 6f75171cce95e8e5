package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"devconnect/models"
	"devconnect/store"
	"devconnect/token"
	"devconnect/validation"
)

func authRouter(h *Handler) *gin.Engine {
	validation.Init()
	r := gin.New()
	r.POST("/api/users", h.Register)
	r.POST("/api/auth", h.Login)
	return r
}

func TestRegisterSuccess(t *testing.T) {
	h, deps := newTestHandler()
	r := authRouter(h)

	deps.users.On("FindByEmail", mock.Anything, "ada@example.com").
		Return(nil, store.ErrNotFound).Once()
	deps.users.On("Insert", mock.Anything, mock.AnythingOfType("*models.User")).
		Return(nil).Once()

	w := doJSON(r, http.MethodPost, "/api/users",
		`{"name":"Ada","email":"ada@example.com","password":"secret1"}`)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	claims, err := token.Verify(resp["token"], "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, "ada@example.com", claims.Email)

	deps.users.AssertExpectations(t)
}

func TestRegisterHashesPasswordAndDerivesAvatar(t *testing.T) {
	h, deps := newTestHandler()
	r := authRouter(h)

	var saved *models.User
	deps.users.On("FindByEmail", mock.Anything, "ada@example.com").
		Return(nil, store.ErrNotFound).Once()
	deps.users.On("Insert", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*models.User)
		}).Return(nil).Once()

	w := doJSON(r, http.MethodPost, "/api/users",
		`{"name":"Ada","email":"ada@example.com","password":"secret1"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, saved)
	assert.NotEqual(t, "secret1", saved.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.Password), []byte("secret1")))
	assert.Contains(t, saved.Avatar, "gravatar.com/avatar/")
	assert.NotContains(t, w.Body.String(), saved.Password)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, deps := newTestHandler()
	r := authRouter(h)

	existing := &models.User{ID: primitive.NewObjectID(), Email: "ada@example.com"}
	deps.users.On("FindByEmail", mock.Anything, "ada@example.com").
		Return(existing, nil).Once()

	w := doJSON(r, http.MethodPost, "/api/users",
		`{"name":"Ada","email":"ada@example.com","password":"secret1"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	// the first user's record stays untouched
	deps.users.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestRegisterValidationShortCircuits(t *testing.T) {
	h, deps := newTestHandler()
	r := authRouter(h)

	w := doJSON(r, http.MethodPost, "/api/users", `{"email":"nope","password":"123"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{
		"name is required",
		"email must be a valid email",
		"password must be at least 6 characters",
	}, resp.Errors)

	// a failed validation must never reach the store
	deps.users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	deps.users.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestLoginGenericFailureMessage(t *testing.T) {
	h, deps := newTestHandler()
	r := authRouter(h)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-pw"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &models.User{
		ID:       primitive.NewObjectID(),
		Email:    "ada@example.com",
		Password: string(hash),
	}

	deps.users.On("FindByEmail", mock.Anything, "ada@example.com").Return(user, nil)
	deps.users.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, store.ErrNotFound)

	wrongPassword := doJSON(r, http.MethodPost, "/api/auth",
		`{"email":"ada@example.com","password":"wrong-pw"}`)
	unknownEmail := doJSON(r, http.MethodPost, "/api/auth",
		`{"email":"ghost@example.com","password":"whatever"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	// identical body for both causes: neither email nor password is revealed
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestLoginSuccess(t *testing.T) {
	h, deps := newTestHandler()
	r := authRouter(h)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-pw"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &models.User{
		ID:       primitive.NewObjectID(),
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: string(hash),
	}
	deps.users.On("FindByEmail", mock.Anything, "ada@example.com").Return(user, nil).Once()

	w := doJSON(r, http.MethodPost, "/api/auth",
		`{"email":"ada@example.com","password":"correct-pw"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	claims, err := token.Verify(resp["token"], "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestGetCurrentUser(t *testing.T) {
	h, deps := newTestHandler()
	userID := primitive.NewObjectID()

	r := gin.New()
	r.GET("/api/auth", asUser(userID), h.GetCurrentUser)

	user := &models.User{ID: userID, Name: "Ada", Email: "ada@example.com", Password: "hash"}
	deps.users.On("FindByID", mock.Anything, userID).Return(user, nil).Once()

	w := doJSON(r, http.MethodGet, "/api/auth", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ada@example.com")
	// password never leaves the server
	assert.NotContains(t, w.Body.String(), "hash")
	assert.NotContains(t, w.Body.String(), "password")
}
