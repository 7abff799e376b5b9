package utils // package utils provides helpers for token creation, hashing and verification

import (
	"errors"  // sentinel error definitions and matching
	"fmt"     // error wrapping
	"strconv" // numeric subject encoding
	"time"    // expiry arithmetic

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens

	"github.com/iliyamo/venue-ordering/internal/model" // closed role enum
)

// Sentinel errors returned by ParseAccessToken.  Handlers map both to the
// same 401 response; the split exists for logs and tests only.
var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the fixed shape of every access token issued by this service.
// Subject carries the session's user id: the credential owner for host
// logins, the impersonated host for impersonation grants, and the borrowed
// host id for guest PIN grants.  ImpersonatedBy is non-zero only on
// impersonation grants and survives for the token's whole lifetime.
type Claims struct {
	jwt.RegisteredClaims
	Role           model.Role `json:"role"`
	IsSuperAdmin   bool       `json:"is_super_admin"`
	ReservationID  uint64     `json:"reservation_id,omitempty"`
	ImpersonatedBy uint64     `json:"impersonated_by,omitempty"`
}

// UserID decodes the numeric subject claim.
func (c *Claims) UserID() (uint64, error) {
	return strconv.ParseUint(c.Subject, 10, 64)
}

// AccessToken is a signed JWT together with its expiry instant.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT.  The expiry is always
// computed here as now + ttl; callers can never supply their own expiry.
// reservationID and impersonatedBy are optional and omitted from the token
// when zero.
func NewAccessToken(secret string, ttl time.Duration, userID uint64, role model.Role, isSuperAdmin bool, reservationID, impersonatedBy uint64) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role:           role,
		IsSuperAdmin:   isSuperAdmin,
		ReservationID:  reservationID,
		ImpersonatedBy: impersonatedBy,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, fmt.Errorf("signing access token: %w", err)
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies the signature and embedded expiry of a token
// and returns its claims.  Only HS256 is accepted; any other algorithm,
// a bad signature or a malformed payload yields ErrTokenInvalid, while a
// correctly signed but expired token yields ErrTokenExpired.  This check
// is independent of the session store's own expiry bookkeeping; both
// must pass before a request is authenticated.
func ParseAccessToken(secret, raw string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	if _, ok := model.ParseRole(string(claims.Role)); !ok {
		return nil, fmt.Errorf("%w: unknown role", ErrTokenInvalid)
	}
	return claims, nil
}
