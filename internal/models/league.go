package models

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole maps a stored role to the closed set, defaulting to RoleUser.
func ParseRole(raw string) Role {
	if Role(strings.ToUpper(strings.TrimSpace(raw))) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

type UserStatus string

const (
	UserStatusPendingPayment UserStatus = "PENDING_PAYMENT"
	UserStatusActive         UserStatus = "ACTIVE"
)

type City string

const (
	CityMadrid    City = "MADRID"
	CityBarcelona City = "BARCELONA"
	CityValencia  City = "VALENCIA"
	CitySevilla   City = "SEVILLA"
	CityMalaga    City = "MALAGA"
	CityBilbao    City = "BILBAO"
	CityZaragoza  City = "ZARAGOZA"
	CityAlicante  City = "ALICANTE"
)

var knownCities = []City{
	CityMadrid,
	CityBarcelona,
	CityValencia,
	CitySevilla,
	CityMalaga,
	CityBilbao,
	CityZaragoza,
	CityAlicante,
}

func Cities() []City {
	out := make([]City, len(knownCities))
	copy(out, knownCities)
	return out
}

// ParseCity normalizes raw to an upper-case known city.
func ParseCity(raw string) (City, error) {
	city := City(strings.ToUpper(strings.TrimSpace(raw)))
	if city == "" {
		return "", fmt.Errorf("city is required")
	}
	for _, known := range knownCities {
		if city == known {
			return city, nil
		}
	}
	return "", fmt.Errorf("invalid city: %s", raw)
}

type CompetitionType string

const (
	CompetitionTypeLeague CompetitionType = "LEAGUE"
	CompetitionTypeCup    CompetitionType = "CUP"
)

func ParseCompetitionType(raw string) (CompetitionType, error) {
	switch t := CompetitionType(strings.ToUpper(strings.TrimSpace(raw))); t {
	case "":
		return CompetitionTypeLeague, nil
	case CompetitionTypeLeague, CompetitionTypeCup:
		return t, nil
	default:
		return "", fmt.Errorf("invalid competition type: %s", raw)
	}
}

type CompetitionStatus string

const (
	CompetitionStatusDraft      CompetitionStatus = "DRAFT"
	CompetitionStatusOpen       CompetitionStatus = "OPEN"
	CompetitionStatusInProgress CompetitionStatus = "IN_PROGRESS"
	CompetitionStatusFinished   CompetitionStatus = "FINISHED"
)

func ParseCompetitionStatus(raw string) (CompetitionStatus, error) {
	switch s := CompetitionStatus(strings.ToUpper(strings.TrimSpace(raw))); s {
	case "":
		return CompetitionStatusDraft, nil
	case CompetitionStatusDraft, CompetitionStatusOpen, CompetitionStatusInProgress, CompetitionStatusFinished:
		return s, nil
	default:
		return "", fmt.Errorf("invalid competition status: %s", raw)
	}
}

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "PENDING"
	MatchStatusReported  MatchStatus = "REPORTED"
	MatchStatusConfirmed MatchStatus = "CONFIRMED"
	// MatchStatusExpired is never stored; it is derived from the deadline.
	MatchStatusExpired MatchStatus = "EXPIRED"
)

type Locale string

const (
	LocaleES Locale = "es"
	LocaleEN Locale = "en"
)

// ParseLocale picks a supported locale from a lang parameter or an
// Accept-Language header value, defaulting to Spanish.
func ParseLocale(raw string) Locale {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(raw, string(LocaleEN)) {
		return LocaleEN
	}
	return LocaleES
}
