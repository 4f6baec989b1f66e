package leagues

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/codr1/golfleague/internal/apperr"
	dbgen "github.com/codr1/golfleague/internal/db/generated"
)

const (
	pointsForWin   = 3
	pointsForHalve = 1
)

type PlayerStanding struct {
	PlayerID         int64  `json:"playerId"`
	PlayerName       string `json:"playerName"`
	MatchesPlayed    int    `json:"matchesPlayed"`
	Wins             int    `json:"wins"`
	Halves           int    `json:"halves"`
	Losses           int    `json:"losses"`
	HolesFor         int    `json:"holesFor"`
	HolesAgainst     int    `json:"holesAgainst"`
	HoleDifferential int    `json:"holeDifferential"`
	Points           int    `json:"points"`
}

type playerStats struct {
	PlayerStanding
	headToHeadWins map[int64]int
}

// CalculateStandings builds the table of a group from its confirmed matches.
// Players are ordered by points, then by wins against the other players tied
// on points, then hole differential, then name.
func CalculateStandings(ctx context.Context, q *dbgen.Queries, groupID int64) ([]PlayerStanding, error) {
	if q == nil {
		return nil, errors.New("queries are required")
	}
	if groupID <= 0 {
		return nil, errors.New("group ID is required")
	}

	roster, err := q.ListGroupPlayers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	matches, err := q.ListConfirmedMatchesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	players := make(map[int64]*playerStats, len(roster))
	for _, row := range roster {
		players[row.PlayerID] = &playerStats{
			PlayerStanding: PlayerStanding{
				PlayerID:   row.PlayerID,
				PlayerName: fullName(row.FirstName, row.LastName),
			},
			headToHeadWins: make(map[int64]int),
		}
	}

	for _, match := range matches {
		if !match.HomeScore.Valid || !match.AwayScore.Valid {
			return nil, fmt.Errorf("match %d is missing scores", match.ID)
		}
		home, ok := players[match.HomePlayerID]
		if !ok {
			return nil, fmt.Errorf("match %d home player %d is not in group %d", match.ID, match.HomePlayerID, groupID)
		}
		away, ok := players[match.AwayPlayerID]
		if !ok {
			return nil, fmt.Errorf("match %d away player %d is not in group %d", match.ID, match.AwayPlayerID, groupID)
		}

		homeScore := int(match.HomeScore.Int64)
		awayScore := int(match.AwayScore.Int64)
		home.record(awayScore, homeScore, match.AwayPlayerID)
		away.record(homeScore, awayScore, match.HomePlayerID)
	}

	ordered := make([]*playerStats, 0, len(players))
	for _, player := range players {
		ordered = append(ordered, player)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Points != ordered[j].Points {
			return ordered[i].Points > ordered[j].Points
		}
		return ordered[i].PlayerName < ordered[j].PlayerName
	})

	sortStandingsByTiebreakers(ordered)

	standings := make([]PlayerStanding, 0, len(ordered))
	for _, player := range ordered {
		standings = append(standings, player.PlayerStanding)
	}
	return standings, nil
}

func (p *playerStats) record(opponentScore, score int, opponentID int64) {
	p.MatchesPlayed++
	p.HolesFor += score
	p.HolesAgainst += opponentScore
	p.HoleDifferential = p.HolesFor - p.HolesAgainst

	switch {
	case score > opponentScore:
		p.Wins++
		p.Points += pointsForWin
		p.headToHeadWins[opponentID]++
	case score < opponentScore:
		p.Losses++
	default:
		p.Halves++
		p.Points += pointsForHalve
	}
}

func sortStandingsByTiebreakers(ordered []*playerStats) {
	if len(ordered) < 2 {
		return
	}

	start := 0
	for start < len(ordered) {
		end := start + 1
		for end < len(ordered) && ordered[end].Points == ordered[start].Points {
			end++
		}

		if end-start > 1 {
			tied := ordered[start:end]
			tiedSet := make(map[int64]struct{}, len(tied))
			for _, player := range tied {
				tiedSet[player.PlayerID] = struct{}{}
			}

			sort.SliceStable(tied, func(i, j int) bool {
				winsI := headToHeadWins(tied[i], tiedSet)
				winsJ := headToHeadWins(tied[j], tiedSet)
				if winsI != winsJ {
					return winsI > winsJ
				}
				if tied[i].HoleDifferential != tied[j].HoleDifferential {
					return tied[i].HoleDifferential > tied[j].HoleDifferential
				}
				return tied[i].PlayerName < tied[j].PlayerName
			})
		}

		start = end
	}
}

func headToHeadWins(player *playerStats, tied map[int64]struct{}) int {
	total := 0
	for opponentID, wins := range player.headToHeadWins {
		if _, ok := tied[opponentID]; ok {
			total += wins
		}
	}
	return total
}

// GroupStandings checks the group exists before computing its table.
func (s *Service) GroupStandings(ctx context.Context, groupID int64) ([]PlayerStanding, error) {
	if _, err := s.db.Queries.GetGroup(ctx, groupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Group not found")
		}
		return nil, fmt.Errorf("load group: %w", err)
	}
	standings, err := CalculateStandings(ctx, s.db.Queries, groupID)
	if err != nil {
		return nil, fmt.Errorf("calculate standings: %w", err)
	}
	return standings, nil
}
