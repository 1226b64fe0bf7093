package cmd

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"sftpfetch/internal/pipeline"
	"sftpfetch/internal/progress"
	"sftpfetch/internal/rename"
	"sftpfetch/pkg/utils"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download and rename the files of the target date",
	Long: `Connect to the remote endpoint, select the files of the target date and
download them one at a time with live progress.

Files whose name contains CLASS_A_MARKER go to LOCAL_DIR_A, every other file
goes to LOCAL_DIR_B. Downloaded files are renamed to <prefix>-<YYYYMMDD>.csv,
then <prefix>-<YYYYMMDD>_2.csv and so on for more files of the same date.

If no file matches the target date the previous day is tried once. An empty
selection is not an error.

The run summary is printed as JSON on stdout, progress and logs go to stderr.`,
	Example: `  # Regular scheduled run
  sftpfetch fetch

  # Re-run Monday's job for a given week
  sftpfetch fetch --today 2025-09-29

  # Fetch from another directory with a progress bar
  sftpfetch fetch --remote-dir /exports/archive --progress bar

  # Use the S3 backend
  sftpfetch fetch --transport s3 --verbose`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetch(cmd)
	},
}

func runFetch(cmd *cobra.Command) error {
	c := runConfig(cmd)
	if style, _ := cmd.Flags().GetString("progress"); style != "" {
		c.ProgressStyle = style
	}

	if err := c.Validate(); err != nil {
		utils.FprintError(cmd.OutOrStdout(), err, "fetch")
		return err
	}

	today, err := todayFunc(cmd)
	if err != nil {
		utils.FprintError(cmd.OutOrStdout(), err, "fetch")
		return err
	}

	runID := uuid.New().String()
	logger := newLogger(cmd).With("run_id", runID)
	ctx := commandContext(cmd)

	logger.Info("connecting", "transport", c.Transport, "host", c.Host, "remote_dir", c.RemoteDir)
	session, err := openSession(ctx, c)
	if err != nil {
		utils.FprintError(cmd.OutOrStdout(), err, "fetch")
		return err
	}
	defer closeSession(session, logger)

	progressOut := cmd.ErrOrStderr()
	p := pipeline.New(session, pipeline.Options{
		RunID:     runID,
		Transport: c.Transport,
		RemoteDir: c.RemoteDir,
		Criteria:  c.Criteria,
		Classifier: rename.Classifier{
			MarkerA: c.Classification.MarkerA,
			PrefixA: c.Classification.PrefixA,
			PrefixB: c.Classification.PrefixB,
			DirA:    c.LocalDirA,
			DirB:    c.LocalDirB,
		},
		Today: today,
		NewRenderer: func(fileName string, total int64) progress.Renderer {
			return progress.NewRenderer(c.ProgressStyle, progressOut)
		},
		Logger: logger,
	})

	result, err := p.Run(ctx)
	if err != nil {
		utils.FprintError(cmd.OutOrStdout(), err, "fetch")
		return err
	}

	if err := utils.FprintJSON(cmd.OutOrStdout(), result); err != nil {
		utils.FprintError(cmd.OutOrStdout(), err, "fetch")
		return err
	}

	if isVerbose(cmd) {
		logger.Debug("fetch completed", "files", result.TotalFiles, "duration", result.Duration)
	}
	return nil
}

func init() {
	fetchCmd.Flags().String("progress", "", "Progress style: line or bar (default from PROGRESS_STYLE)")
}
