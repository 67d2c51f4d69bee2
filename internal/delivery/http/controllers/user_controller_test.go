package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuebooking/internal/delivery/http/helpers"
	"venuebooking/internal/delivery/http/middleware"
	"venuebooking/internal/domain"
)

func TestUserController_SignUp(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{name: "created", body: `{"name":"Ana","email":"ana@example.com","password":"correct-horse"}`, wantStatus: http.StatusCreated},
		{name: "missing fields", body: `{"email":"ana@example.com"}`, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "email taken", body: `{"name":"Ana","email":"ana@example.com","password":"correct-horse"}`, svcErr: domain.ErrDuplicateEmail, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "weak password", body: `{"name":"Ana","email":"ana@example.com","password":"short"}`, svcErr: domain.ErrInvalidInput, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAuthService{token: "jwt", user: &domain.User{ID: testUserID, Email: "ana@example.com"}, err: tt.svcErr}
			ctrl := NewUserController(discardLogger(), svc)
			rec := httptest.NewRecorder()

			ctrl.SignUp(rec, httptest.NewRequest(http.MethodPost, "/users/signup", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			env := decodeEnvelope(t, rec)
			if tt.wantCode != "" {
				require.NotNil(t, env.Error)
				assert.Equal(t, tt.wantCode, env.Error.Code)
				return
			}
			var data LoginResponse
			require.NoError(t, json.Unmarshal(env.Data, &data))
			assert.Equal(t, "jwt", data.Token)
			assert.Equal(t, "Bearer", data.TokenType)
			assert.Equal(t, "Ana", svc.lastName)
		})
	}
}

func TestUserController_Login(t *testing.T) {
	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
	}{
		{name: "ok", wantStatus: http.StatusOK},
		{name: "wrong password", svcErr: domain.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAuthService{token: "jwt", user: &domain.User{ID: testUserID}, err: tt.svcErr}
			ctrl := NewUserController(discardLogger(), svc)
			body := `{"email":"ana@example.com","password":"correct-horse"}`
			rec := httptest.NewRecorder()

			ctrl.Login(rec, httptest.NewRequest(http.MethodPost, "/users/login", strings.NewReader(body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "ana@example.com", svc.lastEmail)
		})
	}
}

func TestUserController_GetMe(t *testing.T) {
	svc := &fakeAuthService{user: &domain.User{ID: testUserID, Name: "Ana", Salt: "pepper"}}
	ctrl := NewUserController(discardLogger(), svc)
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req = req.WithContext(middleware.SetPrincipal(req.Context(), participant))
	rec := httptest.NewRecorder()

	ctrl.GetMe(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testUserID, svc.lastID)
	assert.NotContains(t, rec.Body.String(), "pepper")
}

func TestUserController_DeleteUser(t *testing.T) {
	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
	}{
		{name: "own account", wantStatus: http.StatusNoContent},
		{name: "someone else", svcErr: domain.ErrForbidden, wantStatus: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAuthService{err: tt.svcErr}
			ctrl := NewUserController(discardLogger(), svc)
			req := httptest.NewRequest(http.MethodDelete, "/users/"+testUserID, nil)
			req.SetPathValue("userID", testUserID)
			req = req.WithContext(middleware.SetPrincipal(req.Context(), participant))
			rec := httptest.NewRecorder()

			ctrl.DeleteUser(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, participant, svc.lastActor)
		})
	}
}
