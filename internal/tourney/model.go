package tourney

import (
	"fmt"
	"sort"
	"time"

	"github.com/cohortclub/berger/internal/util/clone"
	"github.com/cohortclub/berger/internal/util/timeutil"
)

type PlayerStatus string

const (
	PlayerActive    PlayerStatus = "ACTIVE"
	PlayerWithdrawn PlayerStatus = "WITHDRAWN"
)

// GameSite identifies the external server a game was played on.
type GameSite string

const (
	SiteLichess  GameSite = "lichess"
	SiteChesscom GameSite = "chesscom"
)

// Player is a registrant's identity bindings within a single waitlist or
// tournament. The status transitions ACTIVE -> WITHDRAWN at most once and is
// never reset.
type Player struct {
	Username         string       `json:"username"`
	DisplayName      string       `json:"displayName"`
	LichessUsername  string       `json:"lichessUsername"`
	ChesscomUsername string       `json:"chesscomUsername"`
	DiscordUsername  string       `json:"discordUsername,omitempty"`
	Status           PlayerStatus `json:"status"`
	JoinedAt         time.Time    `json:"joinedAt"`
}

func (p Player) Clone() Player {
	return p
}

func (p Player) SiteUsername(site GameSite) string {
	switch site {
	case SiteLichess:
		return p.LichessUsername
	case SiteChesscom:
		return p.ChesscomUsername
	default:
		return ""
	}
}

// Validate checks the identity bindings of a registering player.
func (p Player) Validate() error {
	if p.Username == "" {
		return fmt.Errorf("%w: no username", ErrBadPlayer)
	}
	if p.DisplayName == "" {
		return fmt.Errorf("%w: no display name", ErrBadPlayer)
	}
	if p.LichessUsername == "" && p.ChesscomUsername == "" {
		return fmt.Errorf("%w: neither lichess nor chess.com username is linked", ErrBadPlayer)
	}
	return nil
}

type Result string

const (
	ResultUnset    Result = ""
	ResultWhiteWon Result = "1-0"
	ResultBlackWon Result = "0-1"
	ResultDraw     Result = "1/2-1/2"
)

func (r Result) Valid() bool {
	switch r {
	case ResultWhiteWon, ResultBlackWon, ResultDraw:
		return true
	default:
		return false
	}
}

// Pairing is a single scheduled game. Forfeit marks results awarded due to
// withdrawal instead of play; a forfeited pairing with an unset result is a
// double forfeit and scores for neither side.
type Pairing struct {
	White   string `json:"white"`
	Black   string `json:"black"`
	Result  Result `json:"result,omitempty"`
	URL     string `json:"url,omitempty"`
	Forfeit bool   `json:"forfeit,omitempty"`
}

func (p Pairing) Clone() Pairing {
	return p
}

// Resolved reports whether the pairing no longer awaits a game.
func (p Pairing) Resolved() bool {
	return p.Forfeit || p.Result != ResultUnset
}

func (p Pairing) Has(username string) bool {
	return p.White == username || p.Black == username
}

func (p Pairing) Opponent(username string) (string, bool) {
	switch username {
	case p.White:
		return p.Black, true
	case p.Black:
		return p.White, true
	default:
		return "", false
	}
}

type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusActive   Status = "ACTIVE"
	StatusComplete Status = "COMPLETE"
)

func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusActive, StatusComplete:
		return true
	default:
		return false
	}
}

// Tournament is a single round-robin from creation to completion. PlayerOrder
// is fixed at creation and indexes the pairing schedule; it must never be
// reordered.
type Tournament struct {
	Cohort      Cohort            `json:"cohort"`
	StartsAt    string            `json:"startsAt"`
	Name        string            `json:"name"`
	StartDate   timeutil.UTCTime  `json:"startDate"`
	EndDate     timeutil.UTCTime  `json:"endDate"`
	Status      Status            `json:"status"`
	Players     map[string]Player `json:"players"`
	PlayerOrder []string          `json:"playerOrder"`
	Pairings    [][]Pairing       `json:"pairings"`
	Winners     []string          `json:"winners,omitempty"`
}

func (t *Tournament) Clone() *Tournament {
	if t == nil {
		return nil
	}
	res := *t
	res.Players = clone.DeepMap(t.Players)
	res.PlayerOrder = clone.TrivialSlice(t.PlayerOrder)
	res.Winners = clone.TrivialSlice(t.Winners)
	if t.Pairings != nil {
		res.Pairings = make([][]Pairing, len(t.Pairings))
		for i, round := range t.Pairings {
			res.Pairings[i] = clone.DeepSlice(round)
		}
	}
	return &res
}

// ID is the tournament's stable address: the cohort plus the scheduled start
// timestamp. Two tournaments of one cohort never share a start.
func (t *Tournament) ID() string {
	return string(t.Cohort) + "/" + t.StartsAt
}

func (t *Tournament) Player(username string) (Player, bool) {
	p, ok := t.Players[username]
	return p, ok
}

func (t *Tournament) Rounds() int {
	return len(t.Pairings)
}

// NewTournament builds an active tournament from an ordered group of
// players. The order determines the pairing schedule, so it must be
// deterministic for the group (the waitlist join order is used).
func NewTournament(cohort Cohort, name string, players []Player, start time.Time, duration time.Duration) (*Tournament, error) {
	order := make([]string, len(players))
	playerMap := make(map[string]Player, len(players))
	for i, p := range players {
		if _, ok := playerMap[p.Username]; ok {
			return nil, fmt.Errorf("duplicate player %q", p.Username)
		}
		order[i] = p.Username
		p.Status = PlayerActive
		playerMap[p.Username] = p
	}
	pairings, err := GeneratePairings(order)
	if err != nil {
		return nil, fmt.Errorf("generate pairings: %w", err)
	}
	start = start.UTC()
	return &Tournament{
		Cohort:      cohort,
		StartsAt:    start.Format(time.RFC3339Nano),
		Name:        name,
		StartDate:   timeutil.UTCTime(start),
		EndDate:     timeutil.UTCTime(start.Add(duration)),
		Status:      StatusActive,
		Players:     playerMap,
		PlayerOrder: order,
		Pairings:    pairings,
	}, nil
}

// Waitlist holds the pending registrants of a cohort until the group reaches
// capacity and is promoted into a tournament. Number counts the tournaments
// already promoted from this cohort; the next one gets Number+1.
type Waitlist struct {
	Cohort  Cohort            `json:"cohort"`
	Number  int               `json:"number"`
	Players map[string]Player `json:"players"`
}

func (w *Waitlist) Clone() *Waitlist {
	if w == nil {
		return nil
	}
	res := *w
	res.Players = clone.DeepMap(w.Players)
	return &res
}

// Ordered returns the waitlist players by join time. This order seeds the
// tournament's player order on promotion.
func (w *Waitlist) Ordered() []Player {
	res := make([]Player, 0, len(w.Players))
	for _, p := range w.Players {
		res = append(res, p)
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].JoinedAt.Equal(res[j].JoinedAt) {
			return res[i].JoinedAt.Before(res[j].JoinedAt)
		}
		return res[i].Username < res[j].Username
	})
	return res
}
