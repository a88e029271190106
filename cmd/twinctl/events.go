package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	eventsCmd := &cobra.Command{Use: "events", Short: "Play event operations"}

	var userId, game string
	var minutes int
	sendCmd := &cobra.Command{
		Use:   "send",
		Short: "Send a play event",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userId == "" {
				return fmt.Errorf("--user required")
			}
			payload := map[string]interface{}{
				"user_id":   userId,
				"game_name": game,
				"duration":  minutes,
			}
			data, err := doPostJSON(apiFlag, "/events", payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	sendCmd.Flags().StringVarP(&userId, "user", "u", "", "User ID (required)")
	sendCmd.Flags().StringVarP(&game, "game", "g", "", "Game name")
	sendCmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "Play duration in minutes")
	_ = sendCmd.MarkFlagRequired("user")
	eventsCmd.AddCommand(sendCmd)

	rootCmd.AddCommand(eventsCmd)
}
