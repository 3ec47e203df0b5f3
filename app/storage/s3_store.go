package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/lysyi3m/ims-sessions/app/ims"
)

const fetchedAtMetadataKey = "fetched-at"

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	_ S3API             = (*s3.Client)(nil)
	_ ims.SnapshotStore = (*S3Store)(nil)
)

// S3Store keeps the snapshot as one object so several instances behind a
// load balancer can share it.
type S3Store struct {
	client S3API
	bucket string
	key    string
}

func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

func NewS3Store(client S3API, bucket, key string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		key:    key,
	}
}

func (s *S3Store) Name() string {
	return "s3"
}

func (s *S3Store) Load(ctx context.Context) (*ims.Snapshot, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", s.bucket, s.key, err)
	}

	snapshot := &ims.Snapshot{Body: data}
	if raw, ok := out.Metadata[fetchedAtMetadataKey]; ok {
		if fetchedAt, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			snapshot.FetchedAt = fetchedAt
			return snapshot, nil
		}
	}
	if out.LastModified != nil {
		snapshot.FetchedAt = *out.LastModified
	}

	return snapshot, nil
}

func (s *S3Store) Save(ctx context.Context, snapshot ims.Snapshot) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          bytes.NewReader(snapshot.Body),
		ContentLength: aws.Int64(int64(len(snapshot.Body))),
		ContentType:   aws.String("application/xml"),
		Metadata: map[string]string{
			fetchedAtMetadataKey: snapshot.FetchedAt.UTC().Format(time.RFC3339Nano),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to put s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return nil
}
