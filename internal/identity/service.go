// Package identity owns user registration, password authentication and email
// verification.
package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/codr1/golfleague/internal/apperr"
	appdb "github.com/codr1/golfleague/internal/db"
	dbgen "github.com/codr1/golfleague/internal/db/generated"
	"github.com/codr1/golfleague/internal/models"
)

const defaultVerificationTTL = 24 * time.Hour

var (
	ErrInvalidCredentials = apperr.Auth("Invalid credentials")
	ErrEmailNotVerified   = apperr.Auth("Email not verified")
	ErrInvalidToken       = apperr.Validation("Invalid verification token")
	ErrTokenExpired       = apperr.Validation("Verification token expired")
	ErrEmailTaken         = apperr.Conflict("Email already registered", nil)
	ErrUserNotFound       = apperr.NotFound("User not found")
)

// VerificationMailer delivers verification links. *email.Dispatcher
// satisfies it.
type VerificationMailer interface {
	SendVerification(ctx context.Context, to, firstName, link string, expiresAt time.Time) error
	URL(path string) string
}

type Options struct {
	VerificationTTL time.Duration
	PhoneRegion     string
	Now             func() time.Time
}

type Service struct {
	db              *appdb.DB
	mailer          VerificationMailer
	verificationTTL time.Duration
	phoneRegion     string
	now             func() time.Time
}

func NewService(database *appdb.DB, mailer VerificationMailer, opts Options) *Service {
	if opts.VerificationTTL <= 0 {
		opts.VerificationTTL = defaultVerificationTTL
	}
	if opts.PhoneRegion == "" {
		opts.PhoneRegion = "ES"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		db:              database,
		mailer:          mailer,
		verificationTTL: opts.VerificationTTL,
		phoneRegion:     opts.PhoneRegion,
		now:             opts.Now,
	}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	City      string
	Handicap  *float64
}

// Register creates a USER pending payment and sends a verification email.
// A failed verification email is logged; the registration still succeeds.
func (s *Service) Register(ctx context.Context, input RegisterInput) (dbgen.User, error) {
	email := NormalizeEmail(input.Email)
	if err := validateEmail(email); err != nil {
		return dbgen.User{}, apperr.Validation(err.Error())
	}
	if len(input.Password) < minPasswordLength {
		return dbgen.User{}, apperr.Validation(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	city, err := models.ParseCity(input.City)
	if err != nil {
		return dbgen.User{}, apperr.Validation(err.Error())
	}
	phone, err := NormalizePhone(input.Phone, s.phoneRegion)
	if err != nil {
		return dbgen.User{}, apperr.Validation(err.Error())
	}
	if err := validateHandicap(input.Handicap); err != nil {
		return dbgen.User{}, apperr.Validation(err.Error())
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return dbgen.User{}, fmt.Errorf("hash password: %w", err)
	}

	params := dbgen.CreateUserParams{
		Email:        email,
		PasswordHash: sql.NullString{String: hash, Valid: true},
		Role:         string(models.RoleUser),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Phone:        sql.NullString{String: phone, Valid: phone != ""},
		City:         sql.NullString{String: string(city), Valid: true},
		Status:       string(models.UserStatusPendingPayment),
	}
	if input.Handicap != nil {
		params.Handicap = sql.NullFloat64{Float64: *input.Handicap, Valid: true}
	}

	user, err := s.db.Queries.CreateUser(ctx, params)
	if err != nil {
		if appdb.IsUniqueViolation(err) {
			return dbgen.User{}, ErrEmailTaken
		}
		return dbgen.User{}, fmt.Errorf("create user: %w", err)
	}

	if err := s.sendVerification(ctx, user); err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("user_id", user.ID).Msg("Failed to send verification email")
	}

	return user, nil
}

// Authenticate checks email and password. The returned user's role is the
// one persisted at this moment.
func (s *Service) Authenticate(ctx context.Context, email, password string) (dbgen.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return dbgen.User{}, ErrInvalidCredentials
	}

	user, err := s.db.Queries.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.User{}, ErrInvalidCredentials
		}
		return dbgen.User{}, fmt.Errorf("load user: %w", err)
	}
	if !user.PasswordHash.Valid || !VerifyPassword(user.PasswordHash.String, password) {
		return dbgen.User{}, ErrInvalidCredentials
	}
	if !user.EmailVerified.Valid {
		return dbgen.User{}, ErrEmailNotVerified
	}
	return user, nil
}

// VerifyEmail marks the user verified and consumes the token in one
// transaction. Expired or mismatched tokens leave both rows untouched.
func (s *Service) VerifyEmail(ctx context.Context, token, email string) error {
	token = strings.TrimSpace(token)
	email = NormalizeEmail(email)
	if token == "" || email == "" {
		return ErrInvalidToken
	}

	now := s.now().UTC()
	return s.db.RunInTx(ctx, func(tx *appdb.DB) error {
		record, err := tx.Queries.GetVerificationToken(ctx, token)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrInvalidToken
			}
			return fmt.Errorf("load verification token: %w", err)
		}
		if NormalizeEmail(record.Identifier) != email {
			return ErrInvalidToken
		}
		if record.Expires.Before(now) {
			return ErrTokenExpired
		}

		updated, err := tx.Queries.MarkUserEmailVerified(ctx, dbgen.MarkUserEmailVerifiedParams{
			VerifiedAt: now,
			Email:      email,
		})
		if err != nil {
			return fmt.Errorf("mark email verified: %w", err)
		}
		if updated == 0 {
			return ErrInvalidToken
		}

		if _, err := tx.Queries.DeleteVerificationToken(ctx, dbgen.DeleteVerificationTokenParams{
			Identifier: email,
			Token:      token,
		}); err != nil {
			return fmt.Errorf("delete verification token: %w", err)
		}
		return nil
	})
}

// ResendVerification issues a fresh token for an unverified account. Unknown
// or already verified emails are ignored so callers cannot probe accounts.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return apperr.Validation("email is required")
	}

	user, err := s.db.Queries.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("load user: %w", err)
	}
	if user.EmailVerified.Valid {
		return nil
	}
	return s.sendVerification(ctx, user)
}

func (s *Service) GetUser(ctx context.Context, id int64) (dbgen.User, error) {
	user, err := s.db.Queries.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.User{}, ErrUserNotFound
		}
		return dbgen.User{}, fmt.Errorf("load user %d: %w", id, err)
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]dbgen.User, error) {
	users, err := s.db.Queries.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// PurgeExpiredTokens removes verification tokens past their expiry.
func (s *Service) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.db.Queries.DeleteExpiredVerificationTokens(ctx, s.now().UTC())
}

func (s *Service) sendVerification(ctx context.Context, user dbgen.User) error {
	token := uuid.NewString()
	expires := s.now().UTC().Add(s.verificationTTL)

	if _, err := s.db.Queries.DeleteVerificationTokensForIdentifier(ctx, user.Email); err != nil {
		return fmt.Errorf("clear verification tokens: %w", err)
	}
	if err := s.db.Queries.CreateVerificationToken(ctx, dbgen.CreateVerificationTokenParams{
		Identifier: user.Email,
		Token:      token,
		Expires:    expires,
	}); err != nil {
		return fmt.Errorf("create verification token: %w", err)
	}

	if s.mailer == nil {
		return nil
	}
	query := url.Values{}
	query.Set("token", token)
	query.Set("email", user.Email)
	link := s.mailer.URL("/api/auth/verify?" + query.Encode())
	return s.mailer.SendVerification(ctx, user.Email, user.FirstName, link, expires)
}
