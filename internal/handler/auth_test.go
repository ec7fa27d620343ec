package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jortega/backoffice-api/internal/config"
	"github.com/jortega/backoffice-api/internal/model"
	"github.com/jortega/backoffice-api/internal/utils"
)

const testSecret = "test-secret"

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      testSecret,
		AccessTTLMin:   5,
		RefreshTTLDays: 1,
		BcryptCost:     4, // bcrypt.MinCost keeps the suite fast
	}
}

type authFixture struct {
	h         *AuthHandler
	users     *fakeUserStore
	companies *fakeCompanyStore
	blacklist *fakeBlacklist
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newFakeUserStore()
	companies := newFakeCompanyStore()
	require.NoError(t, companies.Create(context.Background(), &model.Company{Name: "Mi Empresa", IsPrimary: true}))
	bl := newFakeBlacklist()
	return &authFixture{
		h:         NewAuthHandler(testConfig(), users, companies, bl, nil),
		users:     users,
		companies: companies,
		blacklist: bl,
	}
}

func (f *authFixture) addUser(t *testing.T, email, password, role string, active bool) model.User {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	require.NoError(t, err)
	return f.users.add(model.User{
		Email: email, PasswordHash: hash, Role: role, IsActive: active, CompanyID: 1,
	})
}

func doJSON(e *echo.Echo, h echo.HandlerFunc, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = h(c)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestRegister(t *testing.T) {
	e := echo.New()
	f := newAuthFixture(t)

	rec := doJSON(e, f.h.Register, http.MethodPost, "/api/accounts/register/",
		`{"email":"a@x.com","password":"Str0ngPass!","password2":"Str0ngPass!"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "a@x.com", body["email"])
	assert.Equal(t, "user", body["role"], "self-registration always yields a plain user")
	assert.Equal(t, float64(1), body["company_id"], "new account attaches to the primary company")
	assert.NotContains(t, rec.Body.String(), "password")

	// Same email again: the store's uniqueness constraint wins.
	rec = doJSON(e, f.h.Register, http.MethodPost, "/api/accounts/register/",
		`{"email":"a@x.com","password":"Str0ngPass!","password2":"Str0ngPass!"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email ya registrado.", decodeBody(t, rec)["email"])
}

func TestRegisterValidation(t *testing.T) {
	e := echo.New()
	f := newAuthFixture(t)

	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"password mismatch", `{"email":"b@x.com","password":"Str0ngPass!","password2":"other"}`, "password2"},
		{"too short", `{"email":"b@x.com","password":"abc1","password2":"abc1"}`, "password"},
		{"all numeric", `{"email":"b@x.com","password":"12345678","password2":"12345678"}`, "password"},
		{"bad email", `{"email":"not-an-email","password":"Str0ngPass!","password2":"Str0ngPass!"}`, "email"},
		{"missing email", `{"password":"Str0ngPass!","password2":"Str0ngPass!"}`, "email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(e, f.h.Register, http.MethodPost, "/api/accounts/register/", tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeBody(t, rec), tc.field)
		})
	}
}

func TestTokenFailurePrecedence(t *testing.T) {
	e := echo.New()
	f := newAuthFixture(t)
	f.addUser(t, "active@x.com", "Str0ngPass!", model.RoleUser, true)
	f.addUser(t, "inactive@x.com", "Str0ngPass!", model.RoleUser, false)

	cases := []struct {
		name string
		body string
		code string
	}{
		{"unknown email", `{"email":"ghost@x.com","password":"whatever1"}`, "user_not_found"},
		// A malformed address is treated as an address with no account,
		// not as a validation error.
		{"malformed email", `{"email":"not-an-email","password":"whatever1"}`, "user_not_found"},
		// Inactive wins over the wrong password: the active check runs
		// before the hash comparison.
		{"inactive with wrong password", `{"email":"inactive@x.com","password":"wrongwrong"}`, "user_inactive"},
		{"inactive with right password", `{"email":"inactive@x.com","password":"Str0ngPass!"}`, "user_inactive"},
		{"wrong password", `{"email":"active@x.com","password":"wrongwrong"}`, "invalid_password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(e, f.h.Token, http.MethodPost, "/api/accounts/token/", tc.body)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tc.code, decodeBody(t, rec)["code"])
		})
	}
}

func TestTokenSuccess(t *testing.T) {
	e := echo.New()
	f := newAuthFixture(t)
	u := f.addUser(t, "a@x.com", "Str0ngPass!", model.RoleUser, true)

	rec := doJSON(e, f.h.Token, http.MethodPost, "/api/accounts/token/",
		`{"email":"a@x.com","password":"Str0ngPass!"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)

	access, _ := body["access"].(string)
	refresh, _ := body["refresh"].(string)
	claims, err := utils.ParseToken(testSecret, access, utils.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "a@x.com", claims.Email)
	_, err = utils.ParseToken(testSecret, refresh, utils.TokenTypeRefresh)
	require.NoError(t, err)

	stored, err := f.users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin, "login must stamp last_login")
}

func TestRefreshRotation(t *testing.T) {
	e := echo.New()
	f := newAuthFixture(t)
	u := f.addUser(t, "a@x.com", "Str0ngPass!", model.RoleUser, true)

	refresh, err := utils.NewRefreshToken(testSecret, u.ID, u.Role, u.Email, 1)
	require.NoError(t, err)

	rec := doJSON(e, f.h.Refresh, http.MethodPost, "/api/accounts/token/refresh/",
		`{"refresh":"`+refresh.Token+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["access"])
	assert.NotEmpty(t, body["refresh"])
	assert.NotEqual(t, refresh.Token, body["refresh"], "rotation must mint a new refresh token")

	// Single use: redeeming the same token again is rejected even though
	// its signature and expiry are still fine.
	rec = doJSON(e, f.h.Refresh, http.MethodPost, "/api/accounts/token/refresh/",
		`{"refresh":"`+refresh.Token+`"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "token_invalid", decodeBody(t, rec)["code"])
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	e := echo.New()
	f := newAuthFixture(t)
	u := f.addUser(t, "a@x.com", "Str0ngPass!", model.RoleUser, true)

	access, err := utils.NewAccessToken(testSecret, u.ID, u.Role, u.Email, 5)
	require.NoError(t, err)
	rec := doJSON(e, f.h.Refresh, http.MethodPost, "/api/accounts/token/refresh/",
		`{"refresh":"`+access.Token+`"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "token_invalid", decodeBody(t, rec)["code"])
}

func TestRefreshFailsClosedWithoutBlacklist(t *testing.T) {
	e := echo.New()
	f := newAuthFixture(t)
	u := f.addUser(t, "a@x.com", "Str0ngPass!", model.RoleUser, true)
	f.blacklist.down = true

	refresh, err := utils.NewRefreshToken(testSecret, u.ID, u.Role, u.Email, 1)
	require.NoError(t, err)
	rec := doJSON(e, f.h.Refresh, http.MethodPost, "/api/accounts/token/refresh/",
		`{"refresh":"`+refresh.Token+`"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestVerify(t *testing.T) {
	e := echo.New()
	f := newAuthFixture(t)
	u := f.addUser(t, "a@x.com", "Str0ngPass!", model.RoleUser, true)

	access, err := utils.NewAccessToken(testSecret, u.ID, u.Role, u.Email, 5)
	require.NoError(t, err)
	rec := doJSON(e, f.h.Verify, http.MethodPost, "/api/accounts/token/verify/",
		`{"token":"`+access.Token+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, f.h.Verify, http.MethodPost, "/api/accounts/token/verify/",
		`{"token":"garbage"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "token_invalid", decodeBody(t, rec)["code"])
}
