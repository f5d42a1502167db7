package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authhttp "quickchat/internal/auth/adapter/http"
	"quickchat/internal/auth/domain/model"
	"quickchat/internal/auth/domain/repository"
	"quickchat/internal/auth/usecase"
	"quickchat/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AuthHTTPTestSuite struct {
	suite.Suite
	app         *fiber.App
	mockUsecase *mockAuthUsecase
}

func (suite *AuthHTTPTestSuite) SetupTest() {
	suite.mockUsecase = &mockAuthUsecase{}
	suite.app = fiber.New()

	handler := authhttp.NewAuthHTTPHandler(suite.mockUsecase, logger.NewLogger())
	middleware := authhttp.NewAuthMiddleware(suite.mockUsecase)
	handler.SetupAuthRoutesWithMiddleware(suite.app.Group("/api/auth"), middleware)
}

func (suite *AuthHTTPTestSuite) postJSON(path string, body interface{}) *http.Response {
	encoded, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) authhttp.Envelope {
	t.Helper()
	var env authhttp.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func (suite *AuthHTTPTestSuite) TestSignup_Success() {
	// Arrange
	user := &model.User{
		ID:        "user-123",
		Email:     "test@example.com",
		FullName:  "Test User",
		Bio:       "Hi there",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	token := "jwt-token-12345"

	suite.mockUsecase.On("Signup", mock.Anything, usecase.SignupRequest{
		FullName: "Test User",
		Email:    "test@example.com",
		Password: "password123",
		Bio:      "Hi there",
	}).Return(user, token, nil)

	// Act
	resp := suite.postJSON("/api/auth/signup", map[string]string{
		"fullName": "Test User",
		"email":    "test@example.com",
		"password": "password123",
		"bio":      "Hi there",
	})

	// Assert
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(suite.T(), resp)
	assert.True(suite.T(), env.Success)
	assert.Equal(suite.T(), "Account created successfully", env.Message)
	assert.Equal(suite.T(), token, env.Token)
	require.NotNil(suite.T(), env.UserData)
	assert.Equal(suite.T(), user.ID, env.UserData.ID)
	assert.Equal(suite.T(), user.Email, env.UserData.Email)

	suite.mockUsecase.AssertExpectations(suite.T())
}

func (suite *AuthHTTPTestSuite) TestSignup_UserJSONHasNoPasswordField() {
	user := &model.User{
		ID:    "user-123",
		Email: "test@example.com",
		// The hash never leaves the usecase, but even a populated value
		// must not serialize.
		PasswordHash: "bcrypt-hash",
	}

	suite.mockUsecase.On("Signup", mock.Anything, mock.Anything).Return(user, "tok", nil)

	resp := suite.postJSON("/api/auth/signup", map[string]string{
		"fullName": "Test User",
		"email":    "test@example.com",
		"password": "password123",
		"bio":      "Hi",
	})

	var raw map[string]interface{}
	require.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&raw))
	userData := raw["userData"].(map[string]interface{})
	assert.Equal(suite.T(), "user-123", userData["_id"])
	for key := range userData {
		assert.NotContains(suite.T(), strings.ToLower(key), "password")
	}
}

func (suite *AuthHTTPTestSuite) TestSignup_MissingDetails() {
	suite.mockUsecase.On("Signup", mock.Anything, mock.Anything).
		Return(nil, "", usecase.ErrMissingFields)

	resp := suite.postJSON("/api/auth/signup", map[string]string{
		"email": "test@example.com",
	})

	// Business failures keep a 200 status; the envelope carries the outcome.
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(suite.T(), resp)
	assert.False(suite.T(), env.Success)
	assert.Equal(suite.T(), "Missing Details", env.Message)
	assert.Empty(suite.T(), env.Token)
	assert.Nil(suite.T(), env.UserData)
}

func (suite *AuthHTTPTestSuite) TestSignup_AccountAlreadyExists() {
	suite.mockUsecase.On("Signup", mock.Anything, mock.Anything).
		Return(nil, "", usecase.ErrEmailTaken)

	resp := suite.postJSON("/api/auth/signup", map[string]string{
		"fullName": "Test User",
		"email":    "existing@example.com",
		"password": "password123",
		"bio":      "Hi",
	})

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(suite.T(), resp)
	assert.False(suite.T(), env.Success)
	assert.Equal(suite.T(), "Account already exists", env.Message)
}

func (suite *AuthHTTPTestSuite) TestLogin_Success() {
	user := &model.User{ID: "user-123", Email: "test@example.com", FullName: "Test User"}
	token := "jwt-token-54321"

	suite.mockUsecase.On("Login", mock.Anything, usecase.LoginRequest{
		Email:    "test@example.com",
		Password: "password123",
	}).Return(user, token, nil)

	resp := suite.postJSON("/api/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "password123",
	})

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(suite.T(), resp)
	assert.True(suite.T(), env.Success)
	assert.Equal(suite.T(), "Login successful", env.Message)
	assert.Equal(suite.T(), token, env.Token)
	require.NotNil(suite.T(), env.UserData)
	assert.Equal(suite.T(), user.ID, env.UserData.ID)

	suite.mockUsecase.AssertExpectations(suite.T())
}

func (suite *AuthHTTPTestSuite) TestLogin_InvalidCredentials() {
	suite.mockUsecase.On("Login", mock.Anything, mock.Anything).
		Return(nil, "", usecase.ErrInvalidCredentials)

	resp := suite.postJSON("/api/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "wrongpassword",
	})

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(suite.T(), resp)
	assert.False(suite.T(), env.Success)
	assert.Equal(suite.T(), "Invalid credentials", env.Message)
}

func (suite *AuthHTTPTestSuite) TestLogin_UnknownUser() {
	suite.mockUsecase.On("Login", mock.Anything, mock.Anything).
		Return(nil, "", usecase.ErrUserNotFound)

	resp := suite.postJSON("/api/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	})

	env := decodeEnvelope(suite.T(), resp)
	assert.False(suite.T(), env.Success)
	assert.Equal(suite.T(), "User not found", env.Message)
}

func (suite *AuthHTTPTestSuite) TestCheck_Success() {
	user := &model.User{ID: "user-123", Email: "test@example.com", FullName: "Test User"}
	claims := &repository.Claims{UserID: "user-123", Email: "test@example.com"}

	suite.mockUsecase.On("ValidateToken", mock.Anything, "valid-token").Return(claims, nil)
	suite.mockUsecase.On("GetUserByID", mock.Anything, "user-123").Return(user, nil)

	req := httptest.NewRequest("GET", "/api/auth/check", nil)
	req.Header.Set("Authorization", "Bearer valid-token")

	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(suite.T(), resp)
	assert.True(suite.T(), env.Success)
	require.NotNil(suite.T(), env.UserData)
	assert.Equal(suite.T(), user.ID, env.UserData.ID)

	suite.mockUsecase.AssertExpectations(suite.T())
}

func (suite *AuthHTTPTestSuite) TestCheck_NoToken() {
	req := httptest.NewRequest("GET", "/api/auth/check", nil)

	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)

	env := decodeEnvelope(suite.T(), resp)
	assert.False(suite.T(), env.Success)
	assert.Equal(suite.T(), "No token provided", env.Message)

	suite.mockUsecase.AssertNotCalled(suite.T(), "ValidateToken")
}

func (suite *AuthHTTPTestSuite) TestUpdateProfile_Success() {
	claims := &repository.Claims{UserID: "user-123", Email: "test@example.com"}
	current := &model.User{ID: "user-123", Email: "test@example.com"}
	updated := &model.User{ID: "user-123", Email: "test@example.com", Bio: "New bio"}

	suite.mockUsecase.On("ValidateToken", mock.Anything, "valid-token").Return(claims, nil)
	suite.mockUsecase.On("GetUserByID", mock.Anything, "user-123").Return(current, nil)
	suite.mockUsecase.On("UpdateProfile", mock.Anything, "user-123",
		usecase.UpdateProfileRequest{Bio: "New bio"}).Return(updated, nil)

	body, _ := json.Marshal(map[string]string{"bio": "New bio"})
	req := httptest.NewRequest("PUT", "/api/auth/update-profile", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer valid-token")

	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(suite.T(), resp)
	assert.True(suite.T(), env.Success)
	require.NotNil(suite.T(), env.UserData)
	assert.Equal(suite.T(), "New bio", env.UserData.Bio)

	suite.mockUsecase.AssertExpectations(suite.T())
}

func (suite *AuthHTTPTestSuite) TestUpdateProfile_UploadFailure() {
	claims := &repository.Claims{UserID: "user-123", Email: "test@example.com"}
	current := &model.User{ID: "user-123", Email: "test@example.com"}

	suite.mockUsecase.On("ValidateToken", mock.Anything, "valid-token").Return(claims, nil)
	suite.mockUsecase.On("GetUserByID", mock.Anything, "user-123").Return(current, nil)
	suite.mockUsecase.On("UpdateProfile", mock.Anything, "user-123", mock.Anything).
		Return(nil, usecase.ErrUploadFailed)

	body, _ := json.Marshal(map[string]string{"profilePic": "data:image/png;base64,AAA"})
	req := httptest.NewRequest("PUT", "/api/auth/update-profile", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer valid-token")

	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(suite.T(), resp)
	assert.False(suite.T(), env.Success)
	assert.Equal(suite.T(), "Image upload failed", env.Message)
}

func (suite *AuthHTTPTestSuite) TestMalformedJSON() {
	req := httptest.NewRequest("POST", "/api/auth/signup", strings.NewReader("{invalid json"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(suite.T(), resp)
	assert.False(suite.T(), env.Success)
	assert.Equal(suite.T(), "Invalid request body", env.Message)

	suite.mockUsecase.AssertNotCalled(suite.T(), "Signup")
}

func TestAuthHTTPTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHTTPTestSuite))
}
