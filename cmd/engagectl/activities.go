package main

import (
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	var limit int
	activitiesCmd := &cobra.Command{
		Use:   "activities",
		Short: "Show recent grant activity, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResponse(client().R().
				SetQueryParam("limit", strconv.Itoa(limit)).
				Get("/gamification/activities"))
		},
	}
	activitiesCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of records")
	rootCmd.AddCommand(activitiesCmd)
}
