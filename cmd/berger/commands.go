package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cohortclub/berger/internal/tourney"
	"github.com/cohortclub/berger/internal/tourneyapi"
)

func mustFlags(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Args:  cobra.ExactArgs(0),
	Short: "Join the waitlist of a cohort",
}

var leaveCmd = &cobra.Command{
	Use:   "leave",
	Args:  cobra.ExactArgs(0),
	Short: "Leave a waitlist before the tournament starts",
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Args:  cobra.ExactArgs(0),
	Short: "Withdraw from a running tournament, forfeiting the remaining games",
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Args:  cobra.ExactArgs(0),
	Short: "Submit a finished game by its lichess.org or chess.com link",
}

var showCmd = &cobra.Command{
	Use:   "show",
	Args:  cobra.ExactArgs(0),
	Short: "Show a tournament with standings and crosstable",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Args:  cobra.ExactArgs(0),
	Short: "List tournaments",
}

var waitlistCmd = &cobra.Command{
	Use:   "waitlist",
	Args:  cobra.ExactArgs(0),
	Short: "Show the waitlist of a cohort",
}

func init() {
	p := registerCmd.Flags()
	cohort := p.StringP("cohort", "c", "", "cohort rating range to register in, e.g. 1500-1600")
	playerCohort := p.String("player-cohort", "", "the player's own cohort (defaults to --cohort)")
	user := p.StringP("user", "u", "", "club username")
	name := p.StringP("name", "n", "", "display name (defaults to the username)")
	lichess := p.String("lichess", "", "lichess.org username")
	chesscom := p.String("chesscom", "", "chess.com username")
	discord := p.String("discord", "", "discord username")
	mustFlags(registerCmd, "cohort", "user")
	registerCmd.RunE = func(cmd *cobra.Command, _args []string) error {
		displayName := *name
		if displayName == "" {
			displayName = *user
		}
		own := *playerCohort
		if own == "" {
			own = *cohort
		}
		rsp, err := apiClient().Register(cmd.Context(), &tourneyapi.RegisterRequest{
			Cohort:       tourney.Cohort(*cohort),
			PlayerCohort: tourney.Cohort(own),
			Player: tourney.Player{
				Username:         *user,
				DisplayName:      displayName,
				LichessUsername:  *lichess,
				ChesscomUsername: *chesscom,
				DiscordUsername:  *discord,
			},
		})
		if err != nil {
			return err
		}
		if rsp.Promoted {
			fmt.Printf("tournament started: %v\n\n", rsp.Tournament.ID)
			displayTournament(os.Stdout, rsp.Tournament)
			return nil
		}
		fmt.Printf("registered, waitlist position %v\n", rsp.Position)
		return nil
	}
}

func init() {
	p := leaveCmd.Flags()
	cohort := p.StringP("cohort", "c", "", "cohort rating range")
	user := p.StringP("user", "u", "", "club username")
	mustFlags(leaveCmd, "cohort", "user")
	leaveCmd.RunE = func(cmd *cobra.Command, _args []string) error {
		_, err := apiClient().WithdrawWaitlist(cmd.Context(), &tourneyapi.WithdrawWaitlistRequest{
			Cohort:   tourney.Cohort(*cohort),
			Username: *user,
		})
		if err != nil {
			return err
		}
		fmt.Println("left the waitlist")
		return nil
	}
}

func init() {
	p := withdrawCmd.Flags()
	id := p.StringP("id", "i", "", "tournament id")
	user := p.StringP("user", "u", "", "club username")
	mustFlags(withdrawCmd, "id", "user")
	withdrawCmd.RunE = func(cmd *cobra.Command, _args []string) error {
		rsp, err := apiClient().Withdraw(cmd.Context(), &tourneyapi.WithdrawRequest{
			TournamentID: *id,
			Username:     *user,
		})
		if err != nil {
			return err
		}
		displayTournament(os.Stdout, rsp.Tournament)
		return nil
	}
}

func init() {
	p := submitCmd.Flags()
	id := p.StringP("id", "i", "", "tournament id")
	user := p.StringP("user", "u", "", "club username of the submitting player")
	url := p.String("url", "", "game url")
	mustFlags(submitCmd, "id", "user", "url")
	submitCmd.RunE = func(cmd *cobra.Command, _args []string) error {
		rsp, err := apiClient().Submit(cmd.Context(), &tourneyapi.SubmitRequest{
			TournamentID: *id,
			Username:     *user,
			GameURL:      *url,
		})
		if err != nil {
			return err
		}
		displayTournament(os.Stdout, rsp.Tournament)
		return nil
	}
}

func init() {
	p := showCmd.Flags()
	id := p.StringP("id", "i", "", "tournament id")
	mustFlags(showCmd, "id")
	showCmd.RunE = func(cmd *cobra.Command, _args []string) error {
		rsp, err := apiClient().GetTournament(cmd.Context(), &tourneyapi.GetTournamentRequest{
			TournamentID: *id,
		})
		if err != nil {
			return err
		}
		displayTournament(os.Stdout, rsp.Tournament)
		return nil
	}
}

func init() {
	p := listCmd.Flags()
	cohort := p.StringP("cohort", "c", "", "only tournaments of this cohort")
	status := p.StringP("status", "s", "", "only tournaments in this status (ACTIVE or COMPLETE)")
	listCmd.RunE = func(cmd *cobra.Command, _args []string) error {
		rsp, err := apiClient().ListTournaments(cmd.Context(), &tourneyapi.ListTournamentsRequest{
			Cohort: tourney.Cohort(*cohort),
			Status: tourney.Status(*status),
		})
		if err != nil {
			return err
		}
		displayTournamentList(os.Stdout, rsp.Tournaments)
		return nil
	}
}

func init() {
	p := waitlistCmd.Flags()
	cohort := p.StringP("cohort", "c", "", "cohort rating range")
	mustFlags(waitlistCmd, "cohort")
	waitlistCmd.RunE = func(cmd *cobra.Command, _args []string) error {
		rsp, err := apiClient().GetWaitlist(cmd.Context(), &tourneyapi.GetWaitlistRequest{
			Cohort: tourney.Cohort(*cohort),
		})
		if err != nil {
			return err
		}
		displayWaitlist(os.Stdout, rsp)
		return nil
	}
}
