package s3client

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appConfig "sftpfetch/config"
	"sftpfetch/internal/models"
	"sftpfetch/internal/remote"
)

// ObjectAPI is the subset of the S3 client the session uses.
type ObjectAPI interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Client treats a key prefix of one bucket as a remote directory.
type Client struct {
	s3Client ObjectAPI
	config   *appConfig.Config
}

var _ remote.Session = (*Client)(nil)

func New(ctx context.Context, cfg *appConfig.Config) (*Client, error) {
	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     cfg.AccessKey,
				SecretAccessKey: cfg.SecretKey,
			},
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load AWS config: %w", models.ErrConnection, err)
	}

	var s3Client *s3.Client
	if cfg.ApiURL != "" {
		s3Client = s3.NewFromConfig(awsConfig, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.ApiURL)
			o.UsePathStyle = true
		})
	} else {
		s3Client = s3.NewFromConfig(awsConfig)
	}

	return NewWithAPI(s3Client, cfg), nil
}

func NewWithAPI(api ObjectAPI, cfg *appConfig.Config) *Client {
	return &Client{
		s3Client: api,
		config:   cfg,
	}
}

// ListDirectory lists the objects directly under dir. Common prefixes
// (sub-"directories") are skipped.
func (c *Client) ListDirectory(ctx context.Context, dir string) ([]models.RemoteEntry, error) {
	prefix := directoryPrefix(dir)

	var entries []models.RemoteEntry
	paginator := s3.NewListObjectsV2Paginator(c.s3Client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(c.config.BucketName),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to list objects under %q: %w", models.ErrListing, prefix, err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			name := path.Base(key)
			if key == prefix || strings.HasSuffix(key, "/") {
				continue
			}

			entry := models.RemoteEntry{
				Path: key,
				Name: name,
				Size: aws.ToInt64(obj.Size),
			}
			if obj.LastModified != nil {
				entry.ModTime = *obj.LastModified
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

func (c *Client) OpenRead(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	return out.Body, nil
}

func (c *Client) Close() error {
	return nil
}

func directoryPrefix(dir string) string {
	prefix := strings.TrimPrefix(dir, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}
