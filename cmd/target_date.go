package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"sftpfetch/internal/models"
	"sftpfetch/internal/selection"
	"sftpfetch/pkg/utils"
)

var targetDateCmd = &cobra.Command{
	Use:   "target-date",
	Short: "Print the date a run would fetch",
	Long: `Print the target date and its one-day fallback for today, or for the day
given with --today. No connection is made.`,
	Example: `  sftpfetch target-date
  sftpfetch target-date --today 2025-09-29`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		today, err := todayFunc(cmd)
		if err != nil {
			utils.FprintError(cmd.OutOrStdout(), err, "target-date")
			return err
		}
		return utils.FprintJSON(cmd.OutOrStdout(), targetDateInfo(today()))
	},
}

func targetDateInfo(today time.Time) models.TargetDateInfo {
	target := selection.ResolveTargetDate(today)
	return models.TargetDateInfo{
		Today:        today.Format(dateFlagLayout),
		Weekday:      today.Weekday().String(),
		TargetDate:   target.Format(dateFlagLayout),
		FallbackDate: target.AddDate(0, 0, -1).Format(dateFlagLayout),
	}
}
