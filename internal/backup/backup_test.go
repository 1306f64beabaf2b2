package backup

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"bottender/internal/database"
)

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	mu       sync.Mutex
	objects  map[string][]byte
	modified map[string]time.Time
	putErr   error
	getErr   error
	delErr   error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{
		objects:  make(map[string][]byte),
		modified: make(map[string]time.Time),
	}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	m.modified[*input.Key] = time.Now().UTC()
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &s3NotFound{}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(data)),
	}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if m.delErr != nil {
		return nil, m.delErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	delete(m.modified, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (m *mockS3Client) ListObjectsV2(_ context.Context, input *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := &s3.ListObjectsV2Output{}
	for key := range m.objects {
		if input.Prefix != nil && !strings.HasPrefix(key, *input.Prefix) {
			continue
		}
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(key),
			LastModified: aws.Time(m.modified[key]),
		})
	}
	return out, nil
}

type s3NotFound struct{}

func (e *s3NotFound) Error() string { return "NoSuchKey" }

func TestManagerStateLifecycle(t *testing.T) {
	// Without S3 config -> disabled
	m := NewManager(Config{}, nil, slog.Default())
	if m.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", m.Status().State, StateDisabled)
	}

	// With S3 config -> idle
	m2 := NewManager(Config{
		S3: S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
	}, nil, slog.Default())
	if m2.Status().State != StateIdle {
		t.Errorf("state = %q, want %q", m2.Status().State, StateIdle)
	}
}

func TestManagerStopSafety(t *testing.T) {
	m := NewManager(Config{
		S3:       S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
		Interval: time.Hour,
	}, nil, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()
	m.Stop()

	// Double stop should not panic
	m.Stop()
}

func TestManagerDisabledNoStart(t *testing.T) {
	m := NewManager(Config{}, nil, slog.Default())

	ctx := context.Background()
	m.Start(ctx) // should be a no-op for disabled state

	// Stop should not block
	m.Stop()
}

func setupBackupDB(t *testing.T, dir string) (string, *Manager, *mockS3Client) {
	t.Helper()

	dbPath := filepath.Join(dir, "bottender.db")
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	m := NewManager(Config{
		S3:         S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
		DBPath:     dbPath,
		Prefix:     "bottender",
		Passphrase: "backup-pass",
	}, db, slog.Default())

	mock := newMockS3()
	m.client = mock
	return dbPath, m, mock
}

func TestRunNowUploadsEncryptedCopy(t *testing.T) {
	_, m, mock := setupBackupDB(t, t.TempDir())

	key, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}
	if !strings.HasPrefix(key, "bottender/backup-") || !strings.HasSuffix(key, ".db.enc") {
		t.Errorf("unexpected object key %q", key)
	}

	mock.mu.Lock()
	data, ok := mock.objects[key]
	mock.mu.Unlock()
	if !ok {
		t.Fatal("object missing from bucket")
	}
	if len(data) <= saltSize+nonceSize {
		t.Errorf("uploaded object too small: %d bytes", len(data))
	}
	// A plaintext SQLite file starts with the magic header; the upload must not.
	if bytes.HasPrefix(data, []byte("SQLite format 3")) {
		t.Error("uploaded object is not encrypted")
	}

	status := m.Status()
	if status.State != StateIdle {
		t.Errorf("state after backup = %q, want %q", status.State, StateIdle)
	}
	if status.LastBackup == nil {
		t.Error("last backup time not recorded")
	}
	if status.LastKey != key {
		t.Errorf("last key = %q, want %q", status.LastKey, key)
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	dbPath, m, _ := setupBackupDB(t, dir)

	key, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}

	if err := m.Restore(context.Background(), key); err != nil {
		t.Fatalf("restore: %v", err)
	}

	// The restored file must be a valid database again.
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open restored db: %v", err)
	}
	db.Close()
}

func TestRestoreUnknownKey(t *testing.T) {
	_, m, _ := setupBackupDB(t, t.TempDir())

	err := m.Restore(context.Background(), "bottender/backup-missing.db.enc")
	if err == nil {
		t.Fatal("expected error for missing object")
	}
}

func TestCleanupDeletesExpired(t *testing.T) {
	_, m, mock := setupBackupDB(t, t.TempDir())
	m.cfg.RetentionDays = 7

	key, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}

	// Age one object past the retention window.
	oldKey := "bottender/backup-old.db.enc"
	mock.mu.Lock()
	mock.objects[oldKey] = []byte("stale")
	mock.modified[oldKey] = time.Now().UTC().AddDate(0, 0, -30)
	mock.mu.Unlock()

	if err := m.cleanup(context.Background()); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	mock.mu.Lock()
	_, oldExists := mock.objects[oldKey]
	_, freshExists := mock.objects[key]
	mock.mu.Unlock()

	if oldExists {
		t.Error("expired object not deleted")
	}
	if !freshExists {
		t.Error("fresh object deleted")
	}
}
