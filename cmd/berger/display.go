package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/cohortclub/berger/internal/tourney"
	"github.com/cohortclub/berger/internal/tourneyapi"
	"github.com/cohortclub/berger/internal/util/style"
)

func formatPoints(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// scoreColor maps a score onto a red-to-green gradient relative to the best
// score in the table.
func scoreColor(score, best float64) string {
	if !style.StdoutSupportsColor() {
		return ""
	}
	frac := 0.0
	if best > 0 {
		frac = score / best
	}
	r, g, b := colorful.Hsv(120*frac, 0.65, 0.95).RGB255()
	return style.FgRGB(r, g, b)
}

func displayName(p tourney.Player) string {
	if p.DisplayName != "" && p.DisplayName != p.Username {
		return fmt.Sprintf("%v (%v)", p.DisplayName, p.Username)
	}
	return p.Username
}

func displayTournament(w io.Writer, d *tourneyapi.TournamentData) {
	t := d.Tournament
	fmt.Fprintf(w, "%v\n", style.WithS(t.Name, 1))
	fmt.Fprintf(w, "id:     %v\n", d.ID)
	fmt.Fprintf(w, "status: %v\n", t.Status)
	fmt.Fprintf(w, "dates:  %v .. %v\n", t.StartDate, t.EndDate)
	if len(t.Winners) != 0 {
		fmt.Fprintf(w, "winner: %v\n", strings.Join(t.Winners, ", "))
	}

	fmt.Fprintf(w, "\n%v\n", style.WithS("Standings", 1))
	nameWidth := len("player")
	for _, s := range d.Standings {
		if len(s.DisplayName) > nameWidth {
			nameWidth = len(s.DisplayName)
		}
	}
	best := 0.0
	if len(d.Standings) != 0 {
		best = d.Standings[0].Stats.Score
	}
	fmt.Fprintf(w, "  %3v  %-*v  %5v  %2v %2v %2v  %v\n",
		"#", nameWidth, "player", "pts", "+", "=", "-", "sb")
	for _, s := range d.Standings {
		st := s.Stats
		fmt.Fprintf(w, "  %3v  %-*v  %v%5v%v  %2v %2v %2v  %v\n",
			s.Rank, nameWidth, s.DisplayName,
			scoreColor(st.Score, best), formatPoints(st.Score), style.S(),
			st.Wins, st.Draws, st.Losses, formatPoints(st.TiebreakScore))
	}

	fmt.Fprintf(w, "\n%v\n", style.WithS("Crosstable", 1))
	nameWidth = 0
	for _, row := range d.Crosstable {
		if len(row.DisplayName) > nameWidth {
			nameWidth = len(row.DisplayName)
		}
	}
	for i, row := range d.Crosstable {
		name := row.DisplayName
		if row.Status == tourney.PlayerWithdrawn {
			name = style.WithS(name, 9) + strings.Repeat(" ", nameWidth-len(row.DisplayName))
		} else {
			name = fmt.Sprintf("%-*v", nameWidth, name)
		}
		fmt.Fprintf(w, "  %3d  %v ", i+1, name)
		for _, cell := range row.Cells {
			fmt.Fprintf(w, " %v", cell)
		}
		fmt.Fprintf(w, "  %v\n", formatPoints(row.Score))
	}
}

func displayTournamentList(w io.Writer, infos []tourneyapi.TournamentInfo) {
	if len(infos) == 0 {
		fmt.Fprintln(w, "no tournaments")
		return
	}
	for _, info := range infos {
		line := fmt.Sprintf("%-9v  %-8v  %v .. %v  %v",
			info.Cohort, info.Status, info.StartDate, info.EndDate, info.Name)
		if len(info.Winners) != 0 {
			line += fmt.Sprintf("  winner: %v", strings.Join(info.Winners, ", "))
		}
		fmt.Fprintln(w, line)
		fmt.Fprintf(w, "  id: %v\n", info.ID)
	}
}

func displayWaitlist(w io.Writer, rsp *tourneyapi.GetWaitlistResponse) {
	fmt.Fprintf(w, "%v\n",
		style.WithS(fmt.Sprintf("Waitlist %v (tournament #%v up next)", rsp.Cohort, rsp.Number+1), 1))
	if len(rsp.Players) == 0 {
		fmt.Fprintln(w, "empty")
		return
	}
	for i, p := range rsp.Players {
		fmt.Fprintf(w, "  %3d  %v\n", i+1, displayName(p))
	}
}
