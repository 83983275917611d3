package main

import (
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	var (
		scope string
		limit int
	)
	leaderboardCmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the weekly or all-time leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResponse(client().R().
				SetQueryParam("scope", scope).
				SetQueryParam("limit", strconv.Itoa(limit)).
				Get("/gamification/leaderboard"))
		},
	}
	leaderboardCmd.Flags().StringVarP(&scope, "scope", "s", "weekly", "Leaderboard scope: weekly or alltime")
	leaderboardCmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of entries")
	rootCmd.AddCommand(leaderboardCmd)
}
