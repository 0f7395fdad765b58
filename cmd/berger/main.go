// Command berger is the CLI client for the tournament server: it registers
// players, submits game links and renders standings and crosstables.
package main

import (
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cohortclub/berger/internal/tourneyapi"
	"github.com/cohortclub/berger/internal/version"
)

var rootCmd = &cobra.Command{
	Use:     "berger",
	Version: version.Version,
	Short:   "Client for the round-robin tournament server",
}

var (
	flagEndpoint string
	flagToken    string
)

func apiClient() tourneyapi.API {
	token := flagToken
	if token == "" {
		token = os.Getenv("BERGER_TOKEN")
	}
	return tourneyapi.NewClient(tourneyapi.ClientOptions{
		Endpoint: flagEndpoint,
		Token:    token,
	}, &http.Client{Timeout: 30 * time.Second})
}

func main() {
	p := rootCmd.PersistentFlags()
	p.StringVarP(&flagEndpoint, "endpoint", "e", "http://127.0.0.1:8080/api/v1", "server api endpoint")
	p.StringVarP(&flagToken, "token", "t", "", "api token (defaults to $BERGER_TOKEN)")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(leaveCmd)
	rootCmd.AddCommand(withdrawCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(waitlistCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
