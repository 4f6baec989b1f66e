package email

import (
	"fmt"
	"strings"
	"time"
)

type VerificationDetails struct {
	AppName   string
	FirstName string
	Link      string
	ExpiresAt time.Time
}

type WelcomeDetails struct {
	AppName   string
	FirstName string
	LoginURL  string
}

type ContactDetails struct {
	AppName string
	From    string
	Subject string
	Message string
}

type MatchReportedDetails struct {
	AppName      string
	ReporterName string
	OpponentName string
	GroupName    string
	Round        int64
	Result       string
	ConfirmURL   string
}

func BuildVerificationEmail(to string, details VerificationDetails) Message {
	appName := fallback(details.AppName, "Golf League")
	lines := []string{
		fmt.Sprintf("Hola %s,", fallback(details.FirstName, "golfista")),
		"",
		fmt.Sprintf("Confirm your email address to finish registering with %s:", appName),
		details.Link,
	}
	if !details.ExpiresAt.IsZero() {
		lines = append(lines, "", fmt.Sprintf("This link expires on %s.", details.ExpiresAt.UTC().Format("Jan 2, 2006 15:04 MST")))
	}
	lines = append(lines, "", "If you did not create an account you can ignore this message.")

	return Message{
		To:      to,
		Subject: fmt.Sprintf("Verify your email - %s", appName),
		Body:    strings.Join(lines, "\n"),
	}
}

func BuildWelcomeEmail(to string, details WelcomeDetails) Message {
	appName := fallback(details.AppName, "Golf League")
	lines := []string{
		fmt.Sprintf("Hola %s,", fallback(details.FirstName, "golfista")),
		"",
		fmt.Sprintf("Your payment was received and your %s registration is now active.", appName),
		"You will be placed in a group as soon as the next competition in your city starts.",
	}
	if details.LoginURL != "" {
		lines = append(lines, "", fmt.Sprintf("Sign in: %s", details.LoginURL))
	}

	return Message{
		To:      to,
		Subject: fmt.Sprintf("Welcome to %s", appName),
		Body:    strings.Join(lines, "\n"),
	}
}

// BuildContactEmail relays a contact form submission to the league inbox.
func BuildContactEmail(to string, details ContactDetails) Message {
	appName := fallback(details.AppName, "Golf League")
	lines := []string{
		fmt.Sprintf("New contact message from %s", details.From),
		"",
		fmt.Sprintf("Subject: %s", strings.TrimSpace(details.Subject)),
		"",
		strings.TrimSpace(details.Message),
	}

	return Message{
		To:      to,
		Subject: fmt.Sprintf("[%s contact] %s", appName, strings.TrimSpace(details.Subject)),
		Body:    strings.Join(lines, "\n"),
		ReplyTo: details.From,
	}
}

func BuildMatchReportedEmail(to string, details MatchReportedDetails) Message {
	appName := fallback(details.AppName, "Golf League")
	group := fallback(details.GroupName, "your group")
	lines := []string{
		fmt.Sprintf("Hola %s,", fallback(details.OpponentName, "golfista")),
		"",
		fmt.Sprintf("%s reported the result of your round %d match in %s: %s.", fallback(details.ReporterName, "Your opponent"), details.Round, group, details.Result),
		"Please confirm it so it counts towards the standings.",
	}
	if details.ConfirmURL != "" {
		lines = append(lines, "", details.ConfirmURL)
	}

	return Message{
		To:      to,
		Subject: fmt.Sprintf("Match result reported - %s", appName),
		Body:    strings.Join(lines, "\n"),
	}
}

func fallback(value, def string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	return value
}
