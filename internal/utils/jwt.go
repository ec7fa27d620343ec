package utils // package utils provides helpers for token creation and hashing

import (
	"crypto/rand" // secure random generation for jti values
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// Token type values carried in the token_type claim. Validation always
// checks the claim so an access token can never be replayed as a refresh
// token or vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Sentinel errors returned by ParseToken. Handlers map these onto the
// token_expired / token_invalid wire codes.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// SignedToken is a serialized JWT together with the metadata callers need
// after minting: the expiry returned to the client and the jti used as the
// blacklist key for refresh tokens.
type SignedToken struct {
	Token string    // the serialized JWT string
	JTI   string    // unique token identifier (hex)
	Exp   time.Time // UTC expiration time
}

// Claims is the decoded, validated view of one of our tokens. Both access
// and refresh tokens carry the same claim set; role and email are
// snapshotted at issuance time, so a later role change does not invalidate
// an already-issued access token until it expires.
type Claims struct {
	UserID    uint64
	Role      string
	Email     string
	TokenType string
	JTI       string
	ExpiresAt time.Time
}

// NewAccessToken builds and signs an HS256 access JWT for a user. The JWT
// carries sub, role, email, token_type, jti, exp and iat claims.
func NewAccessToken(secret string, userID uint64, role, email string, ttlMin int) (SignedToken, error) {
	return newToken(secret, userID, role, email, TokenTypeAccess,
		time.Duration(ttlMin)*time.Minute)
}

// NewRefreshToken builds and signs an HS256 refresh JWT. Refresh tokens are
// longer-lived and strictly single-use: the jti claim is what gets recorded
// in the blacklist when the token is redeemed.
func NewRefreshToken(secret string, userID uint64, role, email string, ttlDays int) (SignedToken, error) {
	return newToken(secret, userID, role, email, TokenTypeRefresh,
		time.Duration(ttlDays)*24*time.Hour)
}

func newToken(secret string, userID uint64, role, email, tokenType string, ttl time.Duration) (SignedToken, error) {
	jti, err := randomHex(16)
	if err != nil {
		return SignedToken{}, err
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":        userID,
		"role":       role,
		"email":      email,
		"token_type": tokenType,
		"jti":        jti,
		"exp":        exp.Unix(),
		"iat":        now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, JTI: jti, Exp: exp}, nil
}

// ParseToken validates signature and expiry of a serialized token and
// returns its claims. wantType must match the token_type claim; pass an
// empty string to accept either type (used by the verify endpoint).
// Expired tokens yield ErrTokenExpired, everything else ErrTokenInvalid.
func ParseToken(secret, raw, wantType string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject any signing method other than HMAC to prevent alg
		// confusion with the "none" or asymmetric methods.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return Claims{}, ErrTokenInvalid
	}

	var c Claims
	// Numeric claims come back as float64 from encoding/json.
	sub, ok := mc["sub"].(float64)
	if !ok {
		return Claims{}, ErrTokenInvalid
	}
	c.UserID = uint64(sub)
	c.Role, _ = mc["role"].(string)
	c.Email, _ = mc["email"].(string)
	c.TokenType, _ = mc["token_type"].(string)
	c.JTI, _ = mc["jti"].(string)
	if exp, ok := mc["exp"].(float64); ok {
		c.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}
	if wantType != "" && c.TokenType != wantType {
		return Claims{}, ErrTokenInvalid
	}
	return c, nil
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
