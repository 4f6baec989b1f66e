// Package adminsession issues and verifies the signed token that identifies
// an administrator. It is independent of the user session cookie and signed
// with its own secret.
package adminsession

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dbgen "github.com/codr1/golfleague/internal/db/generated"
	"github.com/codr1/golfleague/internal/identity"
	"github.com/codr1/golfleague/internal/models"
)

const (
	CookieName = "golfleague_admin"
	DefaultTTL = 8 * time.Hour
	issuer     = "golfleague-admin"
)

var (
	ErrInvalidCredentials = errors.New("invalid admin credentials")
	errSecretMissing      = errors.New("admin session secret missing")
)

// AdminPayload is what a verified admin token asserts.
type AdminPayload struct {
	UserID    int64
	Email     string
	Role      models.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type adminClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (dbgen.User, error)
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	users  UserLookup
	now    func() time.Time
}

type Options struct {
	TTL time.Duration
	// Secure marks the cookie Secure; disable only for local development.
	Secure bool
	Now    func() time.Time
}

func NewManager(secret string, users UserLookup, opts Options) (*Manager, error) {
	if secret == "" {
		return nil, errSecretMissing
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    opts.TTL,
		secure: opts.Secure,
		users:  users,
		now:    opts.Now,
	}, nil
}

// CreateAdminSession signs a token for admin.
func (m *Manager) CreateAdminSession(admin dbgen.User) (string, error) {
	if models.ParseRole(admin.Role) != models.RoleAdmin {
		return "", fmt.Errorf("user %d is not an admin", admin.ID)
	}
	now := m.now()
	claims := adminClaims{
		Email: admin.Email,
		Role:  string(models.RoleAdmin),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(admin.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// VerifyAdminSession returns the payload of a valid admin token, or nil for
// anything malformed, expired, tampered with or not carrying the ADMIN role.
func (m *Manager) VerifyAdminSession(tokenString string) *AdminPayload {
	if tokenString == "" {
		return nil
	}

	var claims adminClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil
	}
	if models.Role(claims.Role) != models.RoleAdmin {
		return nil
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil
	}

	payload := &AdminPayload{
		UserID: userID,
		Email:  claims.Email,
		Role:   models.RoleAdmin,
	}
	if claims.IssuedAt != nil {
		payload.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		payload.ExpiresAt = claims.ExpiresAt.Time
	}
	return payload
}

// FromRequest verifies the admin cookie on r.
func (m *Manager) FromRequest(r *http.Request) *AdminPayload {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}
	return m.VerifyAdminSession(cookie.Value)
}

func (m *Manager) SetAdminSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  m.now().Add(m.ttl),
		MaxAge:   int(m.ttl.Seconds()),
	})
}

func (m *Manager) ClearAdminSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// VerifyAdminCredentials checks email and password and requires the ADMIN
// role. Every failure maps to ErrInvalidCredentials.
func (m *Manager) VerifyAdminCredentials(ctx context.Context, email, password string) (dbgen.User, error) {
	email = identity.NormalizeEmail(email)
	if email == "" || password == "" {
		return dbgen.User{}, ErrInvalidCredentials
	}

	user, err := m.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.User{}, ErrInvalidCredentials
		}
		return dbgen.User{}, fmt.Errorf("load admin: %w", err)
	}
	if !user.PasswordHash.Valid || !identity.VerifyPassword(user.PasswordHash.String, password) {
		return dbgen.User{}, ErrInvalidCredentials
	}
	if models.ParseRole(user.Role) != models.RoleAdmin {
		return dbgen.User{}, ErrInvalidCredentials
	}
	return user, nil
}
