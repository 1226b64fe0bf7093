package s3client

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	appConfig "sftpfetch/config"
	"sftpfetch/internal/models"
)

type fakeAPI struct {
	pages   []*s3.ListObjectsV2Output
	inputs  []*s3.ListObjectsV2Input
	objects map[string]string
	listErr error
}

func (f *fakeAPI) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.inputs = append(f.inputs, in)
	if f.listErr != nil {
		return nil, f.listErr
	}
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func (f *fakeAPI) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func object(key string, size int64, modified time.Time) types.Object {
	return types.Object{Key: aws.String(key), Size: aws.Int64(size), LastModified: aws.Time(modified)}
}

func TestDirectoryPrefix(t *testing.T) {
	tests := map[string]string{
		"":          "",
		"/":         "",
		"exports":   "exports/",
		"/exports/": "exports/",
		"/a/b":      "a/b/",
	}

	for dir, expected := range tests {
		if got := directoryPrefix(dir); got != expected {
			t.Errorf("directoryPrefix(%q) = %q, want %q", dir, got, expected)
		}
	}
}

func TestListDirectory(t *testing.T) {
	modified := time.Date(2025, 10, 2, 6, 0, 0, 0, time.UTC)
	api := &fakeAPI{
		pages: []*s3.ListObjectsV2Output{
			{
				Contents: []types.Object{
					object("exports/", 0, modified),
					object("exports/2025-10-02_A.csv", 10, modified),
				},
				CommonPrefixes:        []types.CommonPrefix{{Prefix: aws.String("exports/archive/")}},
				IsTruncated:           aws.Bool(true),
				NextContinuationToken: aws.String("page-2"),
			},
			{
				Contents:    []types.Object{object("exports/2025-10-02_B.csv", 20, modified)},
				IsTruncated: aws.Bool(false),
			},
		},
	}

	client := NewWithAPI(api, &appConfig.Config{BucketName: "reports"})
	entries, err := client.ListDirectory(context.Background(), "/exports")
	if err != nil {
		t.Fatalf("ListDirectory() error = %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}

	if entries[0].Name != "2025-10-02_A.csv" || entries[0].Path != "exports/2025-10-02_A.csv" {
		t.Errorf("entries[0] = %+v", entries[0])
	}

	if entries[1].Size != 20 || !entries[1].ModTime.Equal(modified) {
		t.Errorf("entries[1] = %+v", entries[1])
	}

	if len(api.inputs) != 2 {
		t.Fatalf("ListObjectsV2 calls = %d, want 2", len(api.inputs))
	}

	first := api.inputs[0]
	if aws.ToString(first.Bucket) != "reports" || aws.ToString(first.Prefix) != "exports/" || aws.ToString(first.Delimiter) != "/" {
		t.Errorf("first input = bucket %q prefix %q delimiter %q",
			aws.ToString(first.Bucket), aws.ToString(first.Prefix), aws.ToString(first.Delimiter))
	}

	if aws.ToString(api.inputs[1].ContinuationToken) != "page-2" {
		t.Errorf("second ContinuationToken = %q, want page-2", aws.ToString(api.inputs[1].ContinuationToken))
	}
}

func TestListDirectoryError(t *testing.T) {
	api := &fakeAPI{listErr: errors.New("AccessDenied")}

	client := NewWithAPI(api, &appConfig.Config{BucketName: "reports"})
	_, err := client.ListDirectory(context.Background(), "exports")

	if !errors.Is(err, models.ErrListing) {
		t.Errorf("ListDirectory() error = %v, want ErrListing", err)
	}
}

func TestOpenRead(t *testing.T) {
	api := &fakeAPI{objects: map[string]string{"exports/a.csv": "a,b,c"}}
	client := NewWithAPI(api, &appConfig.Config{BucketName: "reports"})

	body, err := client.OpenRead(context.Background(), "exports/a.csv")
	if err != nil {
		t.Fatalf("OpenRead() error = %v", err)
	}
	defer body.Close()

	data, _ := io.ReadAll(body)
	if string(data) != "a,b,c" {
		t.Errorf("body = %q, want %q", data, "a,b,c")
	}

	if _, err := client.OpenRead(context.Background(), "exports/missing.csv"); err == nil {
		t.Error("OpenRead() of missing key returned nil error")
	}
}

// Integration tests for S3 client
// These tests require a real S3 connection and are skipped by default
// To run these tests, set the environment variable S3_INTEGRATION_TEST=true

func TestListDirectoryIntegration(t *testing.T) {
	if os.Getenv("S3_INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test; set S3_INTEGRATION_TEST=true to run")
	}

	cfg := &appConfig.Config{
		BucketName: os.Getenv("TEST_BUCKET_NAME"),
		Region:     os.Getenv("TEST_REGION"),
		ApiURL:     os.Getenv("TEST_API_URL"),
		AccessKey:  os.Getenv("TEST_ACCESS_KEY"),
		SecretKey:  os.Getenv("TEST_SECRET_KEY"),
	}

	client, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	if _, err := client.ListDirectory(context.Background(), os.Getenv("TEST_REMOTE_DIR")); err != nil {
		t.Fatalf("ListDirectory() error = %v", err)
	}
}
