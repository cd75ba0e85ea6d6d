package history

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aristath/megasena/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// S3Config locates a CSV dataset snapshot in an S3-compatible bucket
// (AWS, MinIO, R2 and similar providers via Endpoint).
type S3Config struct {
	// Endpoint is empty for AWS S3
	Endpoint       string
	Region         string
	Bucket         string
	Key            string
	AccessKey      string
	SecretKey      string
	UseSSL         bool
	ForcePathStyle bool
}

// Enabled reports whether enough is configured to fetch a snapshot.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.Key != ""
}

// S3Source downloads a CSV snapshot object and parses it.
type S3Source struct {
	downloader *manager.Downloader
	bucket     string
	key        string
	log        zerolog.Logger
}

// NewS3Source builds the S3 client and downloader for cfg.
func NewS3Source(ctx context.Context, cfg S3Config, log zerolog.Logger) (*S3Source, error) {
	if cfg.Bucket == "" || cfg.Key == "" {
		return nil, fmt.Errorf("s3 source: bucket and key are required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3 source: failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(normaliseEndpoint(cfg.Endpoint, cfg.UseSSL))
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return &S3Source{
		downloader: manager.NewDownloader(client),
		bucket:     cfg.Bucket,
		key:        cfg.Key,
		log:        log.With().Str("component", "s3_source").Logger(),
	}, nil
}

// Name identifies the source in logs.
func (s *S3Source) Name() string {
	return "s3://" + s.bucket + "/" + s.key
}

// Fetch downloads the snapshot into memory and parses it as CSV.
func (s *S3Source) Fetch(ctx context.Context) ([]domain.Draw, error) {
	buf := manager.NewWriteAtBuffer(nil)

	n, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", s.Name(), err)
	}

	s.log.Debug().Int64("bytes", n).Str("object", s.Name()).Msg("Downloaded dataset snapshot")

	draws, err := ParseCSV(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name(), err)
	}
	return draws, nil
}

// normaliseEndpoint prepends a scheme when the endpoint has none.
func normaliseEndpoint(endpoint string, useSSL bool) string {
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}
