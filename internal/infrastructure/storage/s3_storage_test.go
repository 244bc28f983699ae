package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/estudio-contable/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func validS3Config() *config.StorageConfig {
	return &config.StorageConfig{
		Enabled:         true,
		Bucket:          "reportes",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:9000",
		UsePathStyle:    true,
	}
}

func TestNewS3ReportArchive_Validation(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3ReportArchive(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "configuration is required")
	})

	t.Run("missing bucket", func(t *testing.T) {
		cfg := validS3Config()
		cfg.Bucket = ""
		_, err := NewS3ReportArchive(cfg)
		assert.ErrorContains(t, err, "bucket is required")
	})

	t.Run("missing credentials", func(t *testing.T) {
		cfg := validS3Config()
		cfg.AccessKeyID = ""
		_, err := NewS3ReportArchive(cfg)
		assert.ErrorContains(t, err, "access key is required")

		cfg = validS3Config()
		cfg.SecretAccessKey = ""
		_, err = NewS3ReportArchive(cfg)
		assert.ErrorContains(t, err, "secret key is required")
	})

	t.Run("defaults", func(t *testing.T) {
		archive, err := NewS3ReportArchive(validS3Config(), WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		assert.Equal(t, "reportes", archive.Bucket())
		assert.Equal(t, 15*time.Minute, archive.presignExpiration)
	})

	t.Run("option overrides expiration", func(t *testing.T) {
		archive, err := NewS3ReportArchive(validS3Config(), WithPresignExpiration(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, archive.presignExpiration)
	})
}

func TestS3ReportArchive_GenerateDownloadURL(t *testing.T) {
	archive, err := NewS3ReportArchive(validS3Config())
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = archive.GenerateDownloadURL(ctx, "", time.Minute)
	assert.ErrorContains(t, err, "storage key is required")

	// presigning is local, no server needed
	url, expiresAt, err := archive.GenerateDownloadURL(ctx, "reportes/o/2025-01/completadas.csv", 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/reportes/reportes/o/2025-01/completadas.csv"))
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)
}

func TestS3ReportArchive_UploadRequiresKey(t *testing.T) {
	archive, err := NewS3ReportArchive(validS3Config())
	require.NoError(t, err)
	assert.ErrorContains(t, archive.Upload(context.Background(), "", []byte("x"), "text/csv"), "storage key is required")
}
