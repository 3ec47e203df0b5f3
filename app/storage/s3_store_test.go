package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/lysyi3m/ims-sessions/app/ims"
)

type MockS3Client struct {
	objects      map[string][]byte
	metadata     map[string]map[string]string
	lastModified *time.Time
	getErr       error
}

func NewMockS3Client() *MockS3Client {
	return &MockS3Client{
		objects:  make(map[string][]byte),
		metadata: make(map[string]map[string]string),
	}
}

func (m *MockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	key := aws.ToString(params.Bucket) + "/" + aws.ToString(params.Key)
	data, ok := m.objects[key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:         io.NopCloser(bytes.NewReader(data)),
		Metadata:     m.metadata[key],
		LastModified: m.lastModified,
	}, nil
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(params.Bucket) + "/" + aws.ToString(params.Key)
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	m.objects[key] = data
	m.metadata[key] = params.Metadata
	return &s3.PutObjectOutput{}, nil
}

func TestS3StoreLoadMissing(t *testing.T) {
	store := NewS3Store(NewMockS3Client(), "bucket", "ims/ims.xml")

	snapshot, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if snapshot != nil {
		t.Errorf("Expected no snapshot, got: %+v", snapshot)
	}
}

func TestS3StoreRoundTrip(t *testing.T) {
	client := NewMockS3Client()
	store := NewS3Store(client, "bucket", "ims/ims.xml")
	fetchedAt := time.Date(2025, 3, 1, 12, 0, 0, 123, time.UTC)

	err := store.Save(context.Background(), ims.Snapshot{Body: []byte("<IMS/>"), FetchedAt: fetchedAt})
	if err != nil {
		t.Fatalf("Expected no error on save, got: %v", err)
	}

	if _, ok := client.objects["bucket/ims/ims.xml"]; !ok {
		t.Fatal("Expected object to be stored under bucket/ims/ims.xml")
	}

	snapshot, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Expected no error on load, got: %v", err)
	}
	if string(snapshot.Body) != "<IMS/>" {
		t.Errorf("Expected body '<IMS/>', got '%s'", snapshot.Body)
	}
	if !snapshot.FetchedAt.Equal(fetchedAt) {
		t.Errorf("Expected fetched at %v, got %v", fetchedAt, snapshot.FetchedAt)
	}
}

func TestS3StoreFallsBackToLastModified(t *testing.T) {
	client := NewMockS3Client()
	lastModified := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	client.objects["bucket/ims.xml"] = []byte("<IMS/>")
	client.lastModified = &lastModified

	snapshot, err := NewS3Store(client, "bucket", "ims.xml").Load(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !snapshot.FetchedAt.Equal(lastModified) {
		t.Errorf("Expected fetched at %v, got %v", lastModified, snapshot.FetchedAt)
	}
}

func TestS3StoreLoadError(t *testing.T) {
	client := NewMockS3Client()
	client.getErr = errors.New("access denied")

	_, err := NewS3Store(client, "bucket", "ims.xml").Load(context.Background())
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "access denied") {
		t.Errorf("Expected wrapped access denied error, got: %v", err)
	}
}
