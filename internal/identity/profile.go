package identity

import (
	"time"

	dbgen "github.com/codr1/golfleague/internal/db/generated"
)

// Profile is the client-facing view of a user.
type Profile struct {
	ID            int64      `json:"id"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	Phone         string     `json:"phone,omitempty"`
	City          string     `json:"city,omitempty"`
	Handicap      *float64   `json:"handicap,omitempty"`
	Status        string     `json:"status"`
	EmailVerified *time.Time `json:"emailVerified"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func ProfileFromUser(user dbgen.User) Profile {
	profile := Profile{
		ID:        user.ID,
		Email:     user.Email,
		Role:      user.Role,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone.String,
		City:      user.City.String,
		Status:    user.Status,
		CreatedAt: user.CreatedAt,
	}
	if user.Handicap.Valid {
		handicap := user.Handicap.Float64
		profile.Handicap = &handicap
	}
	if user.EmailVerified.Valid {
		verified := user.EmailVerified.Time
		profile.EmailVerified = &verified
	}
	if user.PaidAt.Valid {
		paid := user.PaidAt.Time
		profile.PaidAt = &paid
	}
	return profile
}

// DisplayName joins first and last name, falling back to the email.
func DisplayName(user dbgen.User) string {
	name := user.FirstName
	if user.LastName != "" {
		if name != "" {
			name += " "
		}
		name += user.LastName
	}
	if name == "" {
		return user.Email
	}
	return name
}
