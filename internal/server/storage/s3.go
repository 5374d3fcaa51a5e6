package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/vaultbox/internal/common"
	"github.com/dmitrijs2005/vaultbox/internal/logging"
	sc "github.com/dmitrijs2005/vaultbox/internal/server/config"
)

// s3API is the subset of the S3 client used by the adapter; a seam for tests.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3BlobStore implements BlobStore against an S3-compatible backend
// (AWS S3 or MinIO via a custom base endpoint).
type S3BlobStore struct {
	client s3API
	bucket string
	log    logging.Logger
}

// NewS3BlobStore builds the adapter from server config using static
// credentials and the configured base endpoint.
func NewS3BlobStore(ctx context.Context, cfg *sc.Config, log logging.Logger) (*S3BlobStore, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("%w: bucket is not configured", common.ErrConfig)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrConfig, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3BlobStore{client: client, bucket: cfg.S3Bucket, log: log}, nil
}

// fail logs the backend diagnostic server-side and returns only the
// user-safe category, marked retryable for transient classes.
func (s *S3BlobStore) fail(ctx context.Context, op, name string, err error) error {
	s.log.Warn(ctx, "s3 request failed", "op", op, "key", name, "error", err.Error())
	return retryable(classify(err))
}

// retryPolicy bounds transient-class retries. Only network and timeout
// categories are retried; everything else surfaces immediately.
func retryPolicy() retry.Backoff {
	return retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
}

func retryable(err error) error {
	if errors.Is(err, common.ErrStorageNetwork) || errors.Is(err, common.ErrStorageTimeout) {
		return retry.RetryableError(err)
	}
	return err
}

func (s *S3BlobStore) Put(ctx context.Context, name string, data []byte, contentType string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: blob name is blank", common.ErrValidation)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: blob is empty", common.ErrValidation)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return retry.Do(ctx, retryPolicy(), func(ctx context.Context) error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(name),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		if err != nil {
			return s.fail(ctx, "put", name, err)
		}
		return nil
	})
}

func (s *S3BlobStore) Get(ctx context.Context, name string) ([]byte, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: blob name is blank", common.ErrValidation)
	}

	var data []byte
	err := retry.Do(ctx, retryPolicy(), func(ctx context.Context) error {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(name),
		})
		if err != nil {
			return s.fail(ctx, "get", name, err)
		}
		defer out.Body.Close()

		data, err = io.ReadAll(out.Body)
		if err != nil {
			s.log.Warn(ctx, "s3 body read failed", "key", name, "error", err.Error())
			return retryable(common.ErrStorageNetwork)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *S3BlobStore) Delete(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: blob name is blank", common.ErrValidation)
	}

	return retry.Do(ctx, retryPolicy(), func(ctx context.Context) error {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(name),
		})
		if err != nil {
			return s.fail(ctx, "delete", name, err)
		}
		return nil
	})
}

// classify translates backend failures into the user-safe categories. The
// returned error carries only the category: backend diagnostics go to the
// adapter's log and never into the error chain, so no boundary that
// renders err.Error() can leak S3 error codes.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return common.ErrStorageTimeout
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return common.ErrStorageAccessDenied
		case "NoSuchBucket":
			return common.ErrStorageConfig
		case "RequestTimeout", "SlowDown":
			return common.ErrStorageTimeout
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: object missing", common.ErrUpstreamStorage)
		}
	}

	return common.ErrStorageNetwork
}
