// Gigwire - Concert and Event Listings Aggregator
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gigwire

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/tomtom215/gigwire/internal/logging"
	"github.com/tomtom215/gigwire/internal/metrics"
)

// R2Config holds Cloudflare R2 credentials. R2 speaks the S3 API, so the
// client is a stock S3 client pointed at the account endpoint.
type R2Config struct {
	AccountID       string `koanf:"account_id"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
	Bucket          string `koanf:"bucket"`
	Prefix          string `koanf:"prefix"`
}

// Enabled reports whether the config carries enough to build a client.
func (c R2Config) Enabled() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" && c.Bucket != ""
}

// R2Sync mirrors the data directory to an R2 bucket: state files are pulled
// down before a run so merges see the canonical feed, and pushed back up
// after persistence.
type R2Sync struct {
	client *s3.Client
	bucket string
	prefix string
	store  *Store
}

// NewR2Sync builds a sync client from config. Returns nil (and no error)
// when R2 is not configured; callers treat a nil sync as disabled.
func NewR2Sync(ctx context.Context, cfg R2Config, store *Store) (*R2Sync, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build r2 client config: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	return &R2Sync{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		store:  store,
	}, nil
}

func (r *R2Sync) key(name string) string {
	if r.prefix == "" {
		return name
	}
	return r.prefix + "/" + name
}

// Download pulls the known state files into the data directory. A key absent
// from the bucket is first-run state and skipped; any other error aborts the
// download so the run does not merge against a partial feed.
func (r *R2Sync) Download(ctx context.Context) error {
	for _, name := range r.store.SyncedFiles() {
		out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(r.bucket),
			Key:    aws.String(r.key(name)),
		})
		if err != nil {
			var noKey *types.NoSuchKey
			if errors.As(err, &noKey) {
				continue
			}
			metrics.R2Transfers.WithLabelValues("download", "error").Inc()
			return fmt.Errorf("r2 get %s: %w", name, err)
		}

		data, err := io.ReadAll(out.Body)
		out.Body.Close()
		if err != nil {
			metrics.R2Transfers.WithLabelValues("download", "error").Inc()
			return fmt.Errorf("r2 read %s: %w", name, err)
		}

		if err := os.WriteFile(r.store.Path(name), data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		metrics.R2Transfers.WithLabelValues("download", "ok").Inc()
	}
	logging.Debug().Str("bucket", r.bucket).Msg("R2 state download complete")
	return nil
}

// Upload pushes the state files back to the bucket. Upload failures are
// per-file: the feed was already persisted locally, so a partial mirror beats
// an aborted run, and the next run retries everything anyway.
func (r *R2Sync) Upload(ctx context.Context) error {
	var firstErr error
	uploaded := 0

	for _, name := range r.store.SyncedFiles() {
		data, err := os.ReadFile(r.store.Path(name))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("read %s: %w", name, err)
			}
			continue
		}

		contentType := "application/json"
		if name == RunLogFile {
			contentType = "text/plain"
		}

		_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(r.bucket),
			Key:         aws.String(r.key(name)),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		if err != nil {
			metrics.R2Transfers.WithLabelValues("upload", "error").Inc()
			logging.Error().Err(err).Str("file", name).Msg("R2 upload failed")
			if firstErr == nil {
				firstErr = fmt.Errorf("r2 put %s: %w", name, err)
			}
			continue
		}
		metrics.R2Transfers.WithLabelValues("upload", "ok").Inc()
		uploaded++
	}

	logging.Info().Int("files", uploaded).Str("bucket", r.bucket).Msg("R2 state upload complete")
	return firstErr
}
