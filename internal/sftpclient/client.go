package sftpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	appConfig "sftpfetch/config"
	"sftpfetch/internal/models"
	"sftpfetch/internal/remote"
)

type Client struct {
	sshClient  *ssh.Client
	sftpClient *sftp.Client
	config     *appConfig.Config
}

var _ remote.Session = (*Client)(nil)

// New authenticates against the SFTP server and opens one SFTP session over
// it.
func New(ctx context.Context, cfg *appConfig.Config) (*Client, error) {
	auth, err := authMethods(cfg)
	if err != nil {
		return nil, err
	}

	hostKeyCallback, err := hostKeyCallback(cfg)
	if err != nil {
		return nil, err
	}

	sshConfig := &ssh.ClientConfig{
		User:            cfg.Username,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         cfg.DialTimeout,
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	dialer := net.Dialer{Timeout: cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", models.ErrConnection, addr, err)
	}

	// NewClientConn ignores sshConfig.Timeout; bound the handshake here.
	if cfg.DialTimeout > 0 {
		conn.SetDeadline(time.Now().Add(cfg.DialTimeout))
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, sshConfig)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: ssh handshake with %s: %w", models.ErrConnection, addr, err)
	}
	conn.SetDeadline(time.Time{})
	sshClient := ssh.NewClient(sshConn, chans, reqs)

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("%w: start sftp subsystem: %w", models.ErrConnection, err)
	}

	return &Client{
		sshClient:  sshClient,
		sftpClient: sftpClient,
		config:     cfg,
	}, nil
}

func (c *Client) ListDirectory(_ context.Context, dir string) ([]models.RemoteEntry, error) {
	infos, err := c.sftpClient.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read dir %s: %w", models.ErrListing, dir, err)
	}

	entries := make([]models.RemoteEntry, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		entries = append(entries, models.RemoteEntry{
			Path:    remote.JoinPath(dir, info.Name()),
			ModTime: info.ModTime(),
			Name:    info.Name(),
			Size:    info.Size(),
		})
	}
	return entries, nil
}

func (c *Client) OpenRead(_ context.Context, path string) (io.ReadCloser, error) {
	file, err := c.sftpClient.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return file, nil
}

func (c *Client) Close() error {
	return errors.Join(c.sftpClient.Close(), c.sshClient.Close())
}

func authMethods(cfg *appConfig.Config) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if cfg.KeyFile != "" {
		signer, err := loadSigner(cfg.KeyFile, cfg.Passphrase)
		switch {
		case err == nil:
			methods = append(methods, ssh.PublicKeys(signer))
		case errors.Is(err, os.ErrNotExist) && cfg.Password != "":
			slog.Warn("private key not found, using password authentication", "key_file", cfg.KeyFile)
		default:
			return nil, err
		}
	}

	if cfg.Password != "" {
		methods = append(methods, ssh.Password(cfg.Password))
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("%w: no SSH authentication method configured", models.ErrConfig)
	}
	return methods, nil
}

func loadSigner(path, passphrase string) (ssh.Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read private key %s: %w", models.ErrConnection, path, err)
	}

	var signer ssh.Signer
	if passphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(data, []byte(passphrase))
	} else {
		signer, err = ssh.ParsePrivateKey(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parse private key %s: %w", models.ErrConnection, path, err)
	}
	return signer, nil
}

func hostKeyCallback(cfg *appConfig.Config) (ssh.HostKeyCallback, error) {
	if cfg.KnownHosts == "" {
		slog.Warn("KNOWN_HOSTS not set, host key will not be verified", "host", cfg.Host)
		return ssh.InsecureIgnoreHostKey(), nil
	}
	callback, err := knownhosts.New(cfg.KnownHosts)
	if err != nil {
		return nil, fmt.Errorf("%w: known hosts %s: %w", models.ErrConfig, cfg.KnownHosts, err)
	}
	return callback, nil
}
