package main

import (
	"github.com/spf13/cobra"
)

func init() {
	xpCmd := &cobra.Command{
		Use:   "xp USER_ID",
		Short: "Show a user's XP, level and weekly rank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResponse(client().R().
				SetQueryParam("userId", args[0]).
				Get("/gamification/user-xp"))
		},
	}
	rootCmd.AddCommand(xpCmd)
}
