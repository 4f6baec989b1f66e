// internal/api/dashboard/handlers.go
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/golfleague/internal/api/apiutil"
	"github.com/codr1/golfleague/internal/api/authz"
	"github.com/codr1/golfleague/internal/apperr"
	"github.com/codr1/golfleague/internal/config"
	dbgen "github.com/codr1/golfleague/internal/db/generated"
	"github.com/codr1/golfleague/internal/identity"
	"github.com/codr1/golfleague/internal/leagues"
	"github.com/codr1/golfleague/internal/templates/pages"
)

const dashboardQueryTimeout = 5 * time.Second

var (
	appConfig   *config.Config
	identitySvc *identity.Service
	leaguesSvc  *leagues.Service
	timeNow     = time.Now
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(cfg *config.Config, idSvc *identity.Service, lgSvc *leagues.Service) {
	appConfig = cfg
	identitySvc = idSvc
	leaguesSvc = lgSvc
}

// HandleDashboardPage renders the member dashboard for GET /dashboard.
func HandleDashboardPage(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), dashboardQueryTimeout)
	defer cancel()

	user, ok := loadSessionUser(ctx, w, r)
	if !ok {
		return
	}

	matches, err := leaguesSvc.ListUpcomingForUser(ctx, user.ID, timeNow())
	if err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to load upcoming matches")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	apiutil.RenderHTML(w, r, pages.Dashboard(pages.DashboardData{
		AppName: appName(),
		Profile: identity.ProfileFromUser(user),
		Matches: matches,
		Payment: paymentNotice(r.URL.Query().Get("payment")),
	}))
}

// HandleProfilePage renders GET /profile.
func HandleProfilePage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), dashboardQueryTimeout)
	defer cancel()

	user, ok := loadSessionUser(ctx, w, r)
	if !ok {
		return
	}
	apiutil.RenderHTML(w, r, pages.Profile(appName(), identity.ProfileFromUser(user)))
}

// loadSessionUser sends visitors without a usable session to the sign-in
// page and reports whether rendering should continue.
func loadSessionUser(ctx context.Context, w http.ResponseWriter, r *http.Request) (dbgen.User, bool) {
	sessionUser := authz.UserFromContext(r.Context())
	if sessionUser == nil {
		redirectToSignIn(w, r)
		return dbgen.User{}, false
	}

	user, err := identitySvc.GetUser(ctx, sessionUser.ID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) || apperr.Is(err, apperr.KindNotFound) {
			redirectToSignIn(w, r)
			return dbgen.User{}, false
		}
		log.Ctx(r.Context()).Error().Err(err).Int64("user_id", sessionUser.ID).Msg("Failed to load session user")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return dbgen.User{}, false
	}
	return user, true
}

func redirectToSignIn(w http.ResponseWriter, r *http.Request) {
	target := "/auth/signin?callbackUrl=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func paymentNotice(raw string) string {
	switch raw {
	case "success", "cancelled":
		return raw
	default:
		return ""
	}
}

func appName() string {
	if appConfig == nil || appConfig.App.Name == "" {
		return "Liga de Golf"
	}
	return appConfig.App.Name
}
