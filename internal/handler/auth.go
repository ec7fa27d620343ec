package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/labstack/echo/v4"

	"github.com/jortega/backoffice-api/internal/config"
	"github.com/jortega/backoffice-api/internal/model"
	"github.com/jortega/backoffice-api/internal/queue"
	"github.com/jortega/backoffice-api/internal/repository"
	"github.com/jortega/backoffice-api/internal/utils"
)

// AuthHandler bundles dependencies for the token and registration
// endpoints. Audit may be nil, in which case no events are published.
type AuthHandler struct {
	Cfg       config.Config
	Users     UserStore
	Companies CompanyStore
	Blacklist RefreshBlacklist
	Audit     AuditPublisher
}

func NewAuthHandler(cfg config.Config, users UserStore, companies CompanyStore, bl RefreshBlacklist, audit AuditPublisher) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Companies: companies, Blacklist: bl, Audit: audit}
}

// ----- DTOs -----

type tokenReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	Refresh string `json:"refresh"`
}

type verifyReq struct {
	Token string `json:"token"`
}

type registerReq struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

type tokenPairResp struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// authError is the body for every 401 on this surface: a machine-readable
// code plus a human-readable Spanish detail.
func authError(c echo.Context, code, detail string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"code": code, "detail": detail})
}

// Token handles POST /api/accounts/token/: exchanges credentials for a
// signed access/refresh pair. Failure precedence is fixed and deliberate:
// unknown email, then inactive account, then wrong password. The inactive
// check before the password comparison leaks account status to
// unauthenticated callers; that behaviour is part of the API contract and
// is preserved as-is.
func (h *AuthHandler) Token(c echo.Context) error {
	var req tokenReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	// Login takes the email as an opaque string: a malformed address is
	// simply an address that matches no account (401), not a 400. The
	// format rule applies on registration only.
	if err := (validation.Errors{
		"email":    validation.Validate(req.Email, validation.Required),
		"password": validation.Validate(req.Password, validation.Required),
	}).Filter(); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return authError(c, "user_not_found", "No existe un usuario con este email")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}
	if !u.IsActive {
		return authError(c, "user_inactive", "Esta cuenta está desactivada")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return authError(c, "invalid_password", "Contraseña incorrecta")
	}

	pair, err := h.issuePair(u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "issue token failed"})
	}
	// Observable side effect of a successful login; refresh does not touch it.
	if err := h.Users.TouchLastLogin(ctx, u.ID); err != nil {
		log.Printf("auth: update last_login for user %d: %v", u.ID, err)
	}
	return c.JSON(http.StatusOK, pair)
}

// Refresh handles POST /api/accounts/token/refresh/: validates the
// presented refresh token, blacklists it and issues a brand-new pair.
// Rotation is strict: redemption happens exactly once even when two
// requests race on the same token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Refresh) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"refresh": "Este campo es requerido."})
	}

	claims, err := utils.ParseToken(h.Cfg.JWTSecret, strings.TrimSpace(req.Refresh), utils.TokenTypeRefresh)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return authError(c, "token_expired", "El token ha expirado.")
		}
		return authError(c, "token_invalid", "El token no es válido.")
	}

	// Blacklist first. The entry lives as long as the token would have, so
	// the set stays bounded by the refresh horizon.
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Blacklist.Redeem(ctx, claims.JTI, time.Until(claims.ExpiresAt)); err != nil {
		if errors.Is(err, repository.ErrTokenReused) {
			return authError(c, "token_invalid", "El token no es válido.")
		}
		// Fail closed while the blacklist backend is down: a replayed
		// token must never mint a new pair.
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"detail": "refresh no disponible"})
	}

	u, err := h.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		return authError(c, "token_invalid", "El token no es válido.")
	}
	if !u.IsActive {
		return authError(c, "user_inactive", "Esta cuenta está desactivada")
	}

	pair, err := h.issuePair(u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "issue token failed"})
	}
	return c.JSON(http.StatusOK, pair)
}

// Verify handles POST /api/accounts/token/verify/: checks signature and
// expiry of either token type without touching any store.
func (h *AuthHandler) Verify(c echo.Context) error {
	var req verifyReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"token": "Este campo es requerido."})
	}
	if _, err := utils.ParseToken(h.Cfg.JWTSecret, strings.TrimSpace(req.Token), ""); err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return authError(c, "token_expired", "El token ha expirado.")
		}
		return authError(c, "token_invalid", "El token no es válido.")
	}
	return c.JSON(http.StatusOK, echo.Map{})
}

// Register handles POST /api/accounts/register/: public self-registration.
// The role is always forced to "user" and the account is attached to the
// primary company. Duplicate emails are caught by the store's unique key,
// so concurrent registrations of the same address leave exactly one row.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := (validation.Errors{
		"email":     validation.Validate(req.Email, validation.Required, is.EmailFormat),
		"password":  validation.Validate(req.Password, validation.Required),
		"password2": validation.Validate(req.Password2, validation.Required),
	}).Filter(); err != nil {
		return c.JSON(http.StatusBadRequest, err)
	}
	if req.Password != req.Password2 {
		return c.JSON(http.StatusBadRequest, echo.Map{"password2": "Las contraseñas no coinciden."})
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"password": err.Error()})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "hash failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	primary, err := h.Companies.GetPrimary(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "no primary company configured"})
	}

	u := model.User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		IsActive:     true,
		CompanyID:    primary.ID,
	}
	if err := h.Users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"email": "Email ya registrado."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "create user failed"})
	}

	h.publish(ctx, queue.AccountEvent{
		Type:       queue.EventUserRegistered,
		UserID:     u.ID,
		Email:      u.Email,
		Role:       u.Role,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})

	created, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		created = u
	}
	return c.JSON(http.StatusCreated, created)
}

// issuePair mints an access/refresh pair snapshotting role and email at
// issuance time. A later role change does not retroactively invalidate an
// already-issued access token.
func (h *AuthHandler) issuePair(u model.User) (tokenPairResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return tokenPairResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.JWTSecret, u.ID, u.Role, u.Email, h.Cfg.RefreshTTLDays)
	if err != nil {
		return tokenPairResp{}, err
	}
	return tokenPairResp{Access: access.Token, Refresh: refresh.Token}, nil
}

func (h *AuthHandler) publish(ctx context.Context, ev queue.AccountEvent) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit(ctx, ev); err != nil {
		log.Printf("audit: publish %s for user %d: %v", ev.Type, ev.UserID, err)
	}
}
