// Package backup uploads encrypted copies of the SQLite database to
// S3-compatible storage on a fixed interval, and can restore the
// database from a previous upload.
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Config holds backup manager configuration.
type Config struct {
	S3     S3Config
	DBPath string

	// Prefix namespaces this server's objects within the bucket.
	Prefix string

	// Interval between scheduled uploads.
	Interval time.Duration

	// Passphrase enables encryption of uploaded copies. Empty means
	// plaintext uploads.
	Passphrase string

	// RetentionDays bounds how long old uploads are kept. Zero keeps
	// everything.
	RetentionDays int
}

// State represents the backup manager state.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

// Status holds the current backup manager status.
type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	LastKey    string     `json:"last_key,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Manager manages scheduled database backups.
type Manager struct {
	mu     sync.RWMutex
	cfg    Config
	status Status

	db     *sql.DB
	client s3Client
	logger *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a backup manager. The manager stays disabled when
// the S3 settings are incomplete.
func NewManager(cfg Config, db *sql.DB, logger *slog.Logger) *Manager {
	m := &Manager{
		cfg:    cfg,
		db:     db,
		logger: logger,
		status: Status{State: StateDisabled},
	}

	if cfg.S3.Bucket != "" && cfg.S3.AccessKey != "" && cfg.S3.SecretKey != "" {
		m.client = newS3Client(cfg.S3)
		m.status.State = StateIdle
	}

	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Start begins the scheduled backup loop.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.status.State == StateDisabled || m.cfg.Interval <= 0 {
		m.mu.Unlock()
		return
	}
	interval := m.cfg.Interval
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := m.RunNow(ctx); err != nil {
					m.logger.Error("scheduled backup", "error", err)
				}
				if err := m.cleanup(ctx); err != nil {
					m.logger.Error("backup cleanup", "error", err)
				}
			}
		}
	}()
}

// Stop gracefully stops the backup manager.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Status returns the current backup status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
}

// RunNow uploads one backup immediately and returns the object key.
func (m *Manager) RunNow(ctx context.Context) (string, error) {
	m.mu.RLock()
	client := m.client
	cfg := m.cfg
	m.mu.RUnlock()

	if client == nil {
		return "", fmt.Errorf("backup not configured: S3 credentials missing")
	}

	m.setStatus(Status{State: StateRunning})

	timestamp := time.Now().UTC().Format("2006-01-02T150405Z")
	name := fmt.Sprintf("backup-%s.db", timestamp)
	if cfg.Passphrase != "" {
		name += ".enc"
	}
	key := path.Join(cfg.Prefix, name)

	tmpDir := os.TempDir()
	dbCopy := filepath.Join(tmpDir, fmt.Sprintf("bottender-backup-%s.db", timestamp))
	defer os.Remove(dbCopy)

	// Checkpoint WAL so the copy is a complete snapshot.
	if _, err := m.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return "", fmt.Errorf("wal checkpoint: %w", err)
	}

	if err := copyFile(cfg.DBPath, dbCopy); err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return "", fmt.Errorf("copy database: %w", err)
	}

	upload := dbCopy
	if cfg.Passphrase != "" {
		encFile := dbCopy + ".enc"
		defer os.Remove(encFile)

		salt, err := GenerateSalt()
		if err != nil {
			m.setStatus(Status{State: StateError, Error: err.Error()})
			return "", err
		}
		if err := EncryptFile(dbCopy, encFile, cfg.Passphrase, salt); err != nil {
			m.setStatus(Status{State: StateError, Error: err.Error()})
			return "", fmt.Errorf("encrypt: %w", err)
		}
		upload = encFile
	}

	f, err := os.Open(upload)
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return "", fmt.Errorf("open upload file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return "", fmt.Errorf("stat upload file: %w", err)
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(cfg.S3.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(stat.Size()),
	})
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return "", fmt.Errorf("upload to s3: %w", err)
	}

	now := time.Now().UTC()
	m.setStatus(Status{State: StateIdle, LastBackup: &now, LastKey: key})
	m.logger.Info("backup uploaded", "key", key, "size_bytes", stat.Size())

	return key, nil
}

// Restore downloads the object at key, decrypts it when it carries the
// encrypted suffix, validates it, and replaces the database file. The
// caller is responsible for restarting the server afterwards.
func (m *Manager) Restore(ctx context.Context, key string) error {
	m.mu.RLock()
	client := m.client
	cfg := m.cfg
	m.mu.RUnlock()

	if client == nil {
		return fmt.Errorf("backup not configured")
	}

	tmpDir := os.TempDir()
	dlFile := filepath.Join(tmpDir, "bottender-restore"+filepath.Ext(key))
	decFile := filepath.Join(tmpDir, "bottender-restore.db")
	defer os.Remove(dlFile)
	defer os.Remove(decFile)

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(cfg.S3.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()

	out, err := os.Create(dlFile)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(out, result.Body); err != nil {
		out.Close()
		return fmt.Errorf("write downloaded file: %w", err)
	}
	out.Close()

	restored := dlFile
	if strings.HasSuffix(key, ".enc") {
		if cfg.Passphrase == "" {
			return fmt.Errorf("backup is encrypted but no passphrase configured")
		}
		if err := DecryptFile(dlFile, decFile, cfg.Passphrase); err != nil {
			return fmt.Errorf("decrypt backup: %w", err)
		}
		restored = decFile
	}

	if err := checkIntegrity(restored); err != nil {
		return err
	}

	if err := copyFile(restored, cfg.DBPath); err != nil {
		return fmt.Errorf("replace database: %w", err)
	}

	// Stale WAL/SHM files would shadow the restored content.
	os.Remove(cfg.DBPath + "-wal")
	os.Remove(cfg.DBPath + "-shm")

	m.logger.Info("database restored", "key", key)
	return nil
}

func checkIntegrity(dbFile string) error {
	db, err := sql.Open("sqlite", dbFile)
	if err != nil {
		return fmt.Errorf("open restored db: %w", err)
	}
	defer db.Close()

	var integrity string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&integrity); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if integrity != "ok" {
		return fmt.Errorf("integrity check failed: %s", integrity)
	}
	return nil
}

// cleanup deletes uploads older than the retention period.
func (m *Manager) cleanup(ctx context.Context) error {
	m.mu.RLock()
	client := m.client
	cfg := m.cfg
	m.mu.RUnlock()

	if client == nil || cfg.RetentionDays <= 0 {
		return nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -cfg.RetentionDays)

	list, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(cfg.S3.Bucket),
		Prefix: aws.String(cfg.Prefix),
	})
	if err != nil {
		return fmt.Errorf("list backups: %w", err)
	}

	for _, obj := range list.Contents {
		if obj.Key == nil || obj.LastModified == nil {
			continue
		}
		if obj.LastModified.After(cutoff) {
			continue
		}
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(cfg.S3.Bucket),
			Key:    obj.Key,
		}); err != nil {
			m.logger.Warn("delete expired backup", "key", *obj.Key, "error", err)
		}
	}

	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
