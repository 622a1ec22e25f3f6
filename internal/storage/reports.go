package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrNotArchived is returned when no archived copy exists for the key.
var ErrNotArchived = errors.New("report not archived")

// Config holds S3-compatible object storage settings
type Config struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
}

// Enabled reports whether a bucket is configured.
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

// ReportArchive stores one copy of each customer's verification report per
// day, so repeated downloads on the same day do not go back to the backend.
type ReportArchive struct {
	client *s3.Client
	bucket string
}

func NewReportArchive(cfg Config) *ReportArchive {
	opts := s3.Options{
		UsePathStyle: true,
		Region:       cfg.Region,
		Credentials:  aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	}
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		opts.BaseEndpoint = &endpoint
	}
	return &ReportArchive{client: s3.New(opts), bucket: cfg.Bucket}
}

// ReportKey is the object key of a customer's report archived on day.
func ReportKey(customerID string, day time.Time) string {
	return fmt.Sprintf("reports/%s/%s.pdf", customerID, day.UTC().Format("2006-01-02"))
}

// ArchivedReport is an open archived object. The caller closes Body.
type ArchivedReport struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

func (a *ReportArchive) Get(ctx context.Context, key string) (ArchivedReport, error) {
	result, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return ArchivedReport{}, ErrNotArchived
		}
		return ArchivedReport{}, fmt.Errorf("failed to get S3 object: %w", err)
	}

	report := ArchivedReport{Body: result.Body, ContentType: "application/pdf"}
	if result.ContentType != nil {
		report.ContentType = *result.ContentType
	}
	if result.ContentLength != nil {
		report.Size = *result.ContentLength
	}
	return report, nil
}

func (a *ReportArchive) Put(ctx context.Context, key, contentType string, data []byte) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	return err
}
