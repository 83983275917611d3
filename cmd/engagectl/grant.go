package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	var (
		userId      string
		kind        string
		description string
		xpAmount    int64
		eventId     string
		override    bool
	)
	grantCmd := &cobra.Command{
		Use:   "grant",
		Short: "Grant XP for a user action",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userId == "" || kind == "" {
				return fmt.Errorf("--user and --kind required")
			}
			payload := map[string]interface{}{"userId": userId, "kind": kind}
			if description != "" {
				payload["description"] = description
			}
			if xpAmount != 0 {
				payload["xpAmount"] = xpAmount
			}
			if eventId != "" {
				payload["eventId"] = eventId
			}
			if override {
				payload["xpOverride"] = true
			}
			req := client().R().SetBody(payload)
			if override {
				req.SetHeader("X-Internal-Override", "true")
			}
			return printResponse(req.Post("/gamification/activities:grant"))
		},
	}
	grantCmd.Flags().StringVarP(&userId, "user", "u", "", "User ID (required)")
	grantCmd.Flags().StringVarP(&kind, "kind", "k", "", "Action kind, e.g. read_article (required)")
	grantCmd.Flags().StringVarP(&description, "description", "d", "", "Human-readable description")
	grantCmd.Flags().Int64VarP(&xpAmount, "xp", "x", 0, "Explicit XP amount (must match policy unless --override)")
	grantCmd.Flags().StringVarP(&eventId, "event", "e", "", "Idempotency event ID (server-generated if omitted)")
	grantCmd.Flags().BoolVar(&override, "override", false, "Send the internal override header with a custom amount")
	_ = grantCmd.MarkFlagRequired("user")
	_ = grantCmd.MarkFlagRequired("kind")
	rootCmd.AddCommand(grantCmd)
}
