package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"ai-interviewer/internal/config"
	"ai-interviewer/internal/observability/logging"
	"ai-interviewer/internal/observability/metrics"
)

// ErrArtifactNotFound is returned when a key exists in neither backend.
var ErrArtifactNotFound = errors.New("artifact not found")

// ArtifactStore persists session artifacts. Writes go to local disk first and
// are mirrored to S3 best-effort; reads prefer S3 and fall back to disk, so a
// node can recover artifacts written by another instance.
type ArtifactStore interface {
	SaveJSON(ctx context.Context, sessionID, kind string, v any) (string, error)
	LoadJSON(ctx context.Context, sessionID, kind string, dest any) error
	SaveRaw(ctx context.Context, key string, data []byte, contentType string) (string, error)
	LoadRaw(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

type artifactStore struct {
	localDir string
	client   *minio.Client
	bucket   string
}

func NewArtifactStore(cfg config.StorageConfig) (ArtifactStore, error) {
	if err := os.MkdirAll(cfg.ArtifactPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}

	store := &artifactStore{
		localDir: cfg.ArtifactPath,
		bucket:   cfg.S3.Bucket,
	}

	log := logging.WithComponent("artifact_store")

	if cfg.S3.Enabled && cfg.S3.AccessKey != "" {
		client, err := minio.New(cfg.S3.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
			Secure: cfg.S3.UseSSL,
			Region: cfg.S3.Region,
		})
		if err != nil {
			log.Warn().Err(err).Msg("S3 client init failed, using local storage only")
		} else if err := ensureBucket(client, cfg.S3.Bucket, cfg.S3.Region); err != nil {
			log.Warn().Err(err).Str("bucket", cfg.S3.Bucket).Msg("S3 bucket unavailable, using local storage only")
		} else {
			store.client = client
			log.Info().Str("bucket", cfg.S3.Bucket).Msg("S3 artifact backup enabled")
		}
	}

	return store, nil
}

func ensureBucket(client *minio.Client, bucket, region string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}

	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// JSONArtifactKey builds the object key for a session's JSON artifact kind.
func JSONArtifactKey(sessionID, kind string) string {
	return fmt.Sprintf("sessions/%s/%s.json", sessionID, kind)
}

// AudioArtifactKey builds the object key for a session's audio file.
func AudioArtifactKey(sessionID, filename string) string {
	return fmt.Sprintf("sessions/%s/audio/%s", sessionID, filename)
}

func (s *artifactStore) localPath(key string) string {
	return filepath.Join(s.localDir, filepath.FromSlash(key))
}

func (s *artifactStore) SaveJSON(ctx context.Context, sessionID, kind string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s artifact: %w", kind, err)
	}

	return s.SaveRaw(ctx, JSONArtifactKey(sessionID, kind), data, "application/json")
}

func (s *artifactStore) LoadJSON(ctx context.Context, sessionID, kind string, dest any) error {
	data, err := s.LoadRaw(ctx, JSONArtifactKey(sessionID, kind))
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode %s artifact: %w", kind, err)
	}
	return nil
}

func (s *artifactStore) SaveRaw(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	path := s.localPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		metrics.DefaultMetrics.RecordArtifactOp("local", "write", err)
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		metrics.DefaultMetrics.RecordArtifactOp("local", "write", err)
		return "", fmt.Errorf("failed to write artifact %s: %w", key, err)
	}
	metrics.DefaultMetrics.RecordArtifactOp("local", "write", nil)

	// S3 mirror is best-effort; the local copy is authoritative for this node.
	if s.client != nil {
		_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType: contentType,
		})
		metrics.DefaultMetrics.RecordArtifactOp("s3", "write", err)
		if err != nil {
			logging.WithComponent("artifact_store").Warn().Err(err).Str("key", key).Msg("S3 backup failed")
		}
	}

	return key, nil
}

func (s *artifactStore) LoadRaw(ctx context.Context, key string) ([]byte, error) {
	if s.client != nil {
		obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
		if err == nil {
			data, readErr := io.ReadAll(obj)
			obj.Close()
			if readErr == nil {
				metrics.DefaultMetrics.RecordArtifactOp("s3", "read", nil)
				return data, nil
			}
			metrics.DefaultMetrics.RecordArtifactOp("s3", "read", readErr)
		} else {
			metrics.DefaultMetrics.RecordArtifactOp("s3", "read", err)
		}
	}

	data, err := os.ReadFile(s.localPath(key))
	if err != nil {
		metrics.DefaultMetrics.RecordArtifactOp("local", "read", err)
		if os.IsNotExist(err) {
			return nil, ErrArtifactNotFound
		}
		return nil, fmt.Errorf("failed to read artifact %s: %w", key, err)
	}

	metrics.DefaultMetrics.RecordArtifactOp("local", "read", nil)
	return data, nil
}

func (s *artifactStore) Delete(ctx context.Context, key string) error {
	if err := os.Remove(s.localPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete artifact %s: %w", key, err)
	}

	if s.client != nil {
		if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
			logging.WithComponent("artifact_store").Warn().Err(err).Str("key", key).Msg("S3 delete failed")
		}
	}

	return nil
}
