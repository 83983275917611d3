package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	accountCmd := &cobra.Command{Use: "account", Short: "Account operations"}

	var displayName, avatarRef string
	setCmd := &cobra.Command{
		Use:   "set USER_ID",
		Short: "Upsert display metadata for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if displayName == "" {
				return fmt.Errorf("--name required")
			}
			payload := map[string]interface{}{"displayName": displayName}
			if avatarRef != "" {
				payload["avatarRef"] = avatarRef
			}
			return printResponse(client().R().
				SetBody(payload).
				Put("/gamification/accounts/" + args[0]))
		},
	}
	setCmd.Flags().StringVarP(&displayName, "name", "n", "", "Display name (required)")
	setCmd.Flags().StringVarP(&avatarRef, "avatar", "p", "", "Avatar reference")
	_ = setCmd.MarkFlagRequired("name")
	accountCmd.AddCommand(setCmd)

	rebuildCmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Replay the XP ledger and rewrite account aggregates",
		RunE: func(cmd *cobra.Command, args []string) error {
			fromSeq, _ := cmd.Flags().GetInt64("from")
			return printResponse(client().R().
				SetBody(map[string]interface{}{"fromSeq": fromSeq}).
				Post("/gamification/accounts:rebuild"))
		},
	}
	rebuildCmd.Flags().Int64("from", 0, "Ledger sequence to resume from")
	accountCmd.AddCommand(rebuildCmd)

	rootCmd.AddCommand(accountCmd)
}
