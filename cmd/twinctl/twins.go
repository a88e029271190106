package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	twinsCmd := &cobra.Command{Use: "twins", Short: "Digital twin operations"}

	getCmd := &cobra.Command{
		Use:   "get USER_ID",
		Short: "Get the digital twin for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(apiFlag, fmt.Sprintf("/digital-twin/%s", args[0]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	twinsCmd.AddCommand(getCmd)

	reportCmd := &cobra.Command{
		Use:   "report USER_ID",
		Short: "Get the dashboard report for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(apiFlag, fmt.Sprintf("/reports/%s", args[0]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	twinsCmd.AddCommand(reportCmd)

	var daily, night int
	thresholdCmd := &cobra.Command{
		Use:   "set-thresholds USER_ID",
		Short: "Update daily/night minute thresholds for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{}
			if cmd.Flags().Changed("daily") {
				payload["daily"] = daily
			}
			if cmd.Flags().Changed("night") {
				payload["night"] = night
			}
			if len(payload) == 0 {
				return fmt.Errorf("at least one of --daily or --night required")
			}
			data, err := doPostJSON(apiFlag, fmt.Sprintf("/digital-twin/%s/threshold", args[0]), payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	thresholdCmd.Flags().IntVarP(&daily, "daily", "d", 0, "Daily threshold in minutes")
	thresholdCmd.Flags().IntVarP(&night, "night", "n", 0, "Night threshold in minutes")
	twinsCmd.AddCommand(thresholdCmd)

	rootCmd.AddCommand(twinsCmd)
}
