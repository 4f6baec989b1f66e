// Package pages renders the server-side HTML pages.
package pages

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/codr1/golfleague/internal/identity"
	"github.com/codr1/golfleague/internal/leagues"
	"github.com/codr1/golfleague/internal/templates/layouts"
)

const dateLayout = "02/01/2006"

type SignInData struct {
	AppName     string
	CallbackURL string
	Error       string
	Notice      string
}

type DashboardData struct {
	AppName string
	Profile identity.Profile
	Matches []leagues.MatchView
	Payment string
}

type AdminDashboardData struct {
	AppName      string
	AdminEmail   string
	Competitions []leagues.CompetitionSummary
}

func SignIn(data SignInData) templ.Component {
	return layouts.Base(data.AppName, "Iniciar sesión", rawHTML(buildSignInHTML(data)))
}

func AdminLogin(appName, errMsg string) templ.Component {
	var builder strings.Builder
	builder.WriteString(`<section class="mx-auto max-w-sm rounded-lg bg-white p-6 shadow"><h1 class="mb-4 text-xl font-semibold">Administración</h1>`)
	writeAlert(&builder, errMsg, "error")
	builder.WriteString(`<form id="admin-login" method="post" action="/api/admin/login" class="space-y-3">`)
	builder.WriteString(`<input type="email" name="email" required class="w-full rounded border p-2" placeholder="Email">`)
	builder.WriteString(`<input type="password" name="password" required class="w-full rounded border p-2" placeholder="Contraseña">`)
	builder.WriteString(`<button type="submit" class="w-full rounded bg-[var(--color-primary)] p-2 text-white">Entrar</button></form></section>`)
	return layouts.Base(appName, "Administración", rawHTML(builder.String()))
}

func Verified(appName string) templ.Component {
	body := `<section class="rounded-lg bg-white p-6 text-center shadow"><h1 class="text-xl font-semibold">Email verificado</h1><p class="mt-2 text-gray-600">Ya puedes iniciar sesión.</p><a class="mt-4 inline-block underline" href="/auth/signin">Iniciar sesión</a></section>`
	return layouts.Base(appName, "Email verificado", rawHTML(body))
}

func Dashboard(data DashboardData) templ.Component {
	return layouts.Base(data.AppName, "Mi panel", rawHTML(buildDashboardHTML(data)))
}

func Profile(appName string, profile identity.Profile) templ.Component {
	return layouts.Base(appName, "Mi perfil", rawHTML(buildProfileHTML(profile)))
}

func AdminDashboard(data AdminDashboardData) templ.Component {
	return layouts.Base(data.AppName, "Panel de administración", rawHTML(buildAdminDashboardHTML(data)))
}

func rawHTML(markup string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, markup)
		return err
	})
}

func writeAlert(builder *strings.Builder, message, kind string) {
	if message == "" {
		return
	}
	color := "bg-green-50 text-green-800"
	if kind == "error" {
		color = "bg-red-50 text-red-800"
	}
	builder.WriteString(fmt.Sprintf(`<div role="alert" class="mb-4 rounded p-3 text-sm %s">%s</div>`, color, html.EscapeString(message)))
}

func buildSignInHTML(data SignInData) string {
	action := "/api/auth/callback/credentials"
	if data.CallbackURL != "" {
		action += "?callbackUrl=" + url.QueryEscape(data.CallbackURL)
	}

	var builder strings.Builder
	builder.WriteString(`<section class="mx-auto max-w-sm rounded-lg bg-white p-6 shadow"><h1 class="mb-4 text-xl font-semibold">Iniciar sesión</h1>`)
	writeAlert(&builder, data.Error, "error")
	writeAlert(&builder, data.Notice, "notice")
	builder.WriteString(fmt.Sprintf(`<form id="signin" method="post" action="%s" class="space-y-3">`, html.EscapeString(action)))
	builder.WriteString(`<input type="email" name="email" required class="w-full rounded border p-2" placeholder="Email">`)
	builder.WriteString(`<input type="password" name="password" required class="w-full rounded border p-2" placeholder="Contraseña">`)
	builder.WriteString(`<button type="submit" class="w-full rounded bg-[var(--color-primary)] p-2 text-white">Entrar</button></form></section>`)
	return builder.String()
}

func buildDashboardHTML(data DashboardData) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(`<div class="space-y-6"><h1 class="text-2xl font-semibold">Hola, %s</h1>`, html.EscapeString(data.Profile.FirstName)))
	switch data.Payment {
	case "success":
		writeAlert(&builder, "Pago recibido. Tu inscripción se activará en unos instantes.", "notice")
	case "cancelled":
		writeAlert(&builder, "El pago se canceló.", "error")
	}
	if data.Profile.Status != "ACTIVE" {
		builder.WriteString(`<form method="post" action="/api/stripe/checkout"><button type="submit" class="rounded bg-[var(--color-accent)] px-4 py-2">Completar inscripción</button></form>`)
	}
	builder.WriteString(`<h2 class="text-lg font-semibold">Próximos partidos</h2>`)
	builder.WriteString(buildMatchListHTML(data.Matches))
	builder.WriteString(`</div>`)
	return builder.String()
}

func buildMatchListHTML(matches []leagues.MatchView) string {
	if len(matches) == 0 {
		return `<div class="rounded border border-dashed p-6 text-center text-sm text-gray-500">No tienes partidos pendientes.</div>`
	}

	var builder strings.Builder
	builder.WriteString(`<ul class="grid gap-3">`)
	for _, match := range matches {
		opponent := html.EscapeString(strings.TrimSpace(match.Opponent.FirstName + " " + match.Opponent.LastName))
		side := "Visitante"
		if match.IsHome {
			side = "Local"
		}
		builder.WriteString(fmt.Sprintf(
			`<li class="rounded bg-white p-4 shadow" data-match-id="%d"><div class="font-medium">vs %s</div><div class="text-sm text-gray-600">%s · %s · Jornada %d · %s</div><div class="text-sm">Fecha límite: %s</div>`,
			match.ID,
			opponent,
			html.EscapeString(match.CompetitionName),
			html.EscapeString(match.GroupName),
			match.RoundNumber,
			side,
			match.DeadlineDate.Format(dateLayout),
		))
		if match.CanReportResult {
			builder.WriteString(`<span class="text-xs text-green-700">Puedes registrar el resultado</span>`)
		}
		builder.WriteString(`</li>`)
	}
	builder.WriteString(`</ul>`)
	return builder.String()
}

func buildProfileHTML(profile identity.Profile) string {
	handicap := "-"
	if profile.Handicap != nil {
		handicap = fmt.Sprintf("%.1f", *profile.Handicap)
	}
	rows := [][2]string{
		{"Nombre", profile.FirstName + " " + profile.LastName},
		{"Email", profile.Email},
		{"Teléfono", profile.Phone},
		{"Ciudad", profile.City},
		{"Hándicap", handicap},
		{"Estado", profile.Status},
	}

	var builder strings.Builder
	builder.WriteString(`<section class="rounded-lg bg-white p-6 shadow"><h1 class="mb-4 text-xl font-semibold">Mi perfil</h1><dl class="grid grid-cols-2 gap-2">`)
	for _, row := range rows {
		builder.WriteString(fmt.Sprintf(`<dt class="text-gray-500">%s</dt><dd>%s</dd>`, row[0], html.EscapeString(row[1])))
	}
	builder.WriteString(`</dl></section>`)
	return builder.String()
}

func buildAdminDashboardHTML(data AdminDashboardData) string {
	var builder strings.Builder
	builder.WriteString(`<div class="space-y-6"><div class="flex items-center justify-between"><h1 class="text-2xl font-semibold">Competiciones</h1>`)
	builder.WriteString(fmt.Sprintf(`<div class="text-xs text-gray-500">%s</div></div>`, html.EscapeString(data.AdminEmail)))
	if len(data.Competitions) == 0 {
		builder.WriteString(`<div class="rounded border border-dashed p-6 text-center text-sm text-gray-500">No hay competiciones.</div></div>`)
		return builder.String()
	}
	builder.WriteString(`<table class="w-full text-sm"><thead><tr><th>Nombre</th><th>Ciudad</th><th>Fechas</th><th>Activa</th><th>Jugadores</th><th>Grupos</th><th>Partidos</th></tr></thead><tbody>`)
	for _, competition := range data.Competitions {
		active := "No"
		if competition.IsActive {
			active = "Sí"
		}
		builder.WriteString(fmt.Sprintf(
			`<tr data-competition-id="%d"><td>%s</td><td>%s</td><td>%s - %s</td><td>%s</td><td>%d</td><td>%d</td><td>%d</td></tr>`,
			competition.ID,
			html.EscapeString(competition.Name),
			html.EscapeString(competition.City),
			competition.StartDate.Format(dateLayout),
			competition.EndDate.Format(dateLayout),
			active,
			competition.PlayerCount,
			competition.GroupCount,
			competition.MatchCount,
		))
	}
	builder.WriteString(`</tbody></table></div>`)
	return builder.String()
}
