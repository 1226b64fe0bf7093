package ftpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/jlaffaye/ftp"

	appConfig "sftpfetch/config"
	"sftpfetch/internal/models"
	"sftpfetch/internal/remote"
)

type Client struct {
	conn   *ftp.ServerConn
	config *appConfig.Config
}

var _ remote.Session = (*Client)(nil)

func New(ctx context.Context, cfg *appConfig.Config) (*Client, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	conn, err := ftp.Dial(addr, dialOptions(ctx, cfg)...)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", models.ErrConnection, addr, err)
	}

	if err := conn.Login(cfg.Username, cfg.Password); err != nil {
		conn.Quit()
		return nil, fmt.Errorf("%w: login as %s: %w", models.ErrConnection, cfg.Username, err)
	}

	return &Client{
		conn:   conn,
		config: cfg,
	}, nil
}

// dialOptions selects plain FTP, explicit TLS (AUTH TLS on port 21) or
// implicit TLS (usually port 990).
func dialOptions(ctx context.Context, cfg *appConfig.Config) []ftp.DialOption {
	opts := []ftp.DialOption{
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(cfg.DialTimeout),
	}

	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.FTPInsecureSkipVerify,
		ServerName:         cfg.Host,
	}

	switch cfg.FTPTLS {
	case "implicit":
		opts = append(opts, ftp.DialWithTLS(tlsConfig))
	case "explicit":
		opts = append(opts, ftp.DialWithExplicitTLS(tlsConfig))
	}
	return opts
}

func (c *Client) ListDirectory(_ context.Context, dir string) ([]models.RemoteEntry, error) {
	list, err := c.conn.List(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", models.ErrListing, dir, err)
	}
	return toEntries(dir, list), nil
}

func toEntries(dir string, list []*ftp.Entry) []models.RemoteEntry {
	entries := make([]models.RemoteEntry, 0, len(list))
	for _, e := range list {
		if e.Type != ftp.EntryTypeFile {
			continue
		}
		entries = append(entries, models.RemoteEntry{
			Path:    remote.JoinPath(dir, e.Name),
			ModTime: e.Time,
			Name:    e.Name,
			Size:    int64(e.Size),
		})
	}
	return entries
}

// OpenRead starts a RETR. The response must be closed before the next
// command is sent on the connection.
func (c *Client) OpenRead(_ context.Context, path string) (io.ReadCloser, error) {
	resp, err := c.conn.Retr(path)
	if err != nil {
		return nil, fmt.Errorf("retr %s: %w", path, err)
	}
	return resp, nil
}

func (c *Client) Close() error {
	return c.conn.Quit()
}
