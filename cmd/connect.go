package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"sftpfetch/config"
	"sftpfetch/internal/ftpclient"
	"sftpfetch/internal/models"
	"sftpfetch/internal/remote"
	"sftpfetch/internal/s3client"
	"sftpfetch/internal/sftpclient"
)

const dateFlagLayout = "2006-01-02"

// openSession connects the backend named by c.Transport. Tests replace it.
var openSession = connect

func connect(ctx context.Context, c *config.Config) (remote.Session, error) {
	switch c.Transport {
	case config.TransportSFTP:
		client, err := sftpclient.New(ctx, c)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.TransportS3:
		client, err := s3client.New(ctx, c)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.TransportFTP:
		client, err := ftpclient.New(ctx, c)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("%w: unknown transport %q", models.ErrConfig, c.Transport)
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func closeSession(session remote.Session, logger *slog.Logger) {
	if err := session.Close(); err != nil {
		logger.Warn("failed to close remote session", "error", err)
	}
}

// todayFunc returns the calendar reference of the run: the --today flag
// when set, the local clock otherwise.
func todayFunc(cmd *cobra.Command) (func() time.Time, error) {
	value, _ := cmd.Flags().GetString("today")
	if value == "" {
		return time.Now, nil
	}
	day, err := parseToday(value)
	if err != nil {
		return nil, err
	}
	return func() time.Time { return day }, nil
}

func parseToday(value string) (time.Time, error) {
	day, err := time.ParseInLocation(dateFlagLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: --today must be YYYY-MM-DD: %w", models.ErrConfig, err)
	}
	return day, nil
}
