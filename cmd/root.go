package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"sftpfetch/config"
)

var (
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sftpfetch",
	Short: "Scheduled retrieval of dated files from a remote endpoint",
	Long: `sftpfetch connects to an SFTP (or S3 / FTP) endpoint, picks the files of the
target date, downloads them with live progress and renames them into a fixed
local layout.

The target date is yesterday, or two days back when run on a Monday. When
nothing matches the target date the previous day is tried once.
Configuration is loaded from .env file or environment variables`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(config *config.Config) error {
	cfg = config
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(targetDateCmd)

	rootCmd.PersistentFlags().StringP("transport", "t", "", "Override transport from config (sftp, s3, ftp)")
	rootCmd.PersistentFlags().String("remote-dir", "", "Override REMOTE_DIR from config")
	rootCmd.PersistentFlags().String("today", "", "Run as if today were this date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}

// runConfig returns a copy of the loaded configuration with command-line
// overrides applied.
func runConfig(cmd *cobra.Command) *config.Config {
	c := *cfg
	if transport, _ := cmd.Flags().GetString("transport"); transport != "" && transport != c.Transport {
		if c.Port == config.DefaultPort(c.Transport) {
			c.Port = config.DefaultPort(transport)
		}
		c.Transport = transport
	}
	if remoteDir, _ := cmd.Flags().GetString("remote-dir"); remoteDir != "" {
		c.RemoteDir = remoteDir
	}
	return &c
}

func isVerbose(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if isVerbose(cmd) {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
