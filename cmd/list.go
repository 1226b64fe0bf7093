package cmd

import (
	"github.com/spf13/cobra"

	"sftpfetch/internal/selection"
	"sftpfetch/pkg/utils"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show which remote files a fetch would pick",
	Long: `Connect to the remote endpoint and print, as JSON, the files that match the
target date (or the fallback day) without downloading anything.`,
	Example: `  # Files of today's run
  sftpfetch list

  # Files a run on a given day would pick
  sftpfetch list --today 2025-10-06`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd)
	},
}

func runList(cmd *cobra.Command) error {
	c := runConfig(cmd)
	if err := c.ValidateRemote(); err != nil {
		utils.FprintError(cmd.OutOrStdout(), err, "list")
		return err
	}

	today, err := todayFunc(cmd)
	if err != nil {
		utils.FprintError(cmd.OutOrStdout(), err, "list")
		return err
	}

	logger := newLogger(cmd)
	ctx := commandContext(cmd)

	session, err := openSession(ctx, c)
	if err != nil {
		utils.FprintError(cmd.OutOrStdout(), err, "list")
		return err
	}
	defer closeSession(session, logger)

	sel, err := selection.NewFinder(session, c.Criteria, today, logger).FindTargetFiles(ctx, c.RemoteDir)
	if err != nil {
		utils.FprintError(cmd.OutOrStdout(), err, "list")
		return err
	}

	if err := utils.FprintJSON(cmd.OutOrStdout(), sel); err != nil {
		utils.FprintError(cmd.OutOrStdout(), err, "list")
		return err
	}
	return nil
}
