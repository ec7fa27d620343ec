package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jortega/backoffice-api/internal/model"
	"github.com/jortega/backoffice-api/internal/utils"
)

func TestMe(t *testing.T) {
	e := echo.New()
	users := newFakeUserStore()
	u := users.add(model.User{Email: "a@x.com", Role: model.RoleUser, IsActive: true, FirstName: "Ana"})
	h := NewMeHandler(testConfig(), users)

	rec := doAs(e, h.Me, u, http.MethodGet, "/api/accounts/me/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "a@x.com", body["email"])
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestUpdateMePartial(t *testing.T) {
	e := echo.New()
	users := newFakeUserStore()
	u := users.add(model.User{Email: "a@x.com", Role: model.RoleUser, IsActive: true, FirstName: "Ana", LastName: "García"})
	h := NewMeHandler(testConfig(), users)

	// Only first_name in the body: last_name must survive.
	rec := doAs(e, h.UpdateMe, u, http.MethodPatch, "/api/accounts/me/", "", `{"first_name":"Anita"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	stored, err := users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anita", stored.FirstName)
	assert.Equal(t, "García", stored.LastName)
}

func TestChangePassword(t *testing.T) {
	e := echo.New()
	users := newFakeUserStore()
	hash, err := utils.HashPassword("OldPass123", 4)
	require.NoError(t, err)
	u := users.add(model.User{Email: "a@x.com", PasswordHash: hash, Role: model.RoleUser, IsActive: true})
	h := NewMeHandler(testConfig(), users)

	cases := []struct {
		name       string
		body       string
		wantStatus int
		wantField  string
	}{
		{"wrong current", `{"current_password":"nope","new_password":"NewPass123","new_password2":"NewPass123"}`, http.StatusBadRequest, "current_password"},
		{"mismatch", `{"current_password":"OldPass123","new_password":"NewPass123","new_password2":"other"}`, http.StatusBadRequest, "new_password2"},
		{"weak", `{"current_password":"OldPass123","new_password":"12345678","new_password2":"12345678"}`, http.StatusBadRequest, "new_password"},
		{"ok", `{"current_password":"OldPass123","new_password":"NewPass123","new_password2":"NewPass123"}`, http.StatusOK, "detail"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doAs(e, h.ChangePassword, u, http.MethodPost, "/api/accounts/me/change-password/", "", tc.body)
			require.Equal(t, tc.wantStatus, rec.Code)
			assert.Contains(t, decodeBody(t, rec), tc.wantField)
		})
	}

	stored, err := users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, utils.VerifyPassword(stored.PasswordHash, "NewPass123"))
	assert.False(t, utils.VerifyPassword(stored.PasswordHash, "OldPass123"))
}
