package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"matapi/internal/config"
	"matapi/internal/model"
)

// envelope is the stored JSON wrapper around a transport-encoded payload.
type envelope struct {
	TaskID string   `json:"task_id"`
	Data   []string `json:"data"`
}

// minioStore implements ObjectStore against an S3-compatible backend
// (MinIO, AWS S3, etc.). It is safe for concurrent use by multiple goroutines.
type minioStore struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinIO creates a new S3-compatible object store client backed by MinIO.
// It validates connectivity and ensures the bucket exists (creates it if missing).
func NewMinIO(cfg config.MinIOConfig) (ObjectStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	prefix := cfg.ObjectPrefix
	if prefix == "" {
		prefix = "objects/"
	}
	ms := &minioStore{client: cli, bucket: cfg.Bucket, prefix: prefix}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Ensure bucket exists.
	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return ms, nil
}

func (m *minioStore) objectKey(taskID string) string {
	return m.prefix + taskID + ".json"
}

// FetchObject retrieves and unwraps the stored envelope for a task id.
// A missing key and an envelope without data both mean the binary object
// was never materialized for the task: ErrNoObject.
func (m *minioStore) FetchObject(ctx context.Context, taskID string) (model.RawObject, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, m.objectKey(taskID), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("fetch object for task %s: %w", taskID, err)
	}
	defer obj.Close()

	raw, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("task %s: %w", taskID, ErrNoObject)
		}
		return nil, fmt.Errorf("read object for task %s: %w", taskID, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode object envelope for task %s: %w", taskID, err)
	}
	if len(env.Data) == 0 {
		return nil, fmt.Errorf("task %s: %w", taskID, ErrNoObject)
	}
	return model.RawObject(env.Data), nil
}

// PutObject wraps a payload in the envelope format and stores it under the
// task id key.
func (m *minioStore) PutObject(ctx context.Context, taskID string, payload model.RawObject) error {
	raw, err := json.Marshal(envelope{TaskID: taskID, Data: payload})
	if err != nil {
		return fmt.Errorf("encode object envelope for task %s: %w", taskID, err)
	}
	_, err = m.client.PutObject(ctx, m.bucket, m.objectKey(taskID), bytes.NewReader(raw), int64(len(raw)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("store object for task %s: %w", taskID, err)
	}
	return nil
}
