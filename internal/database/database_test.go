package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/killallgit/transcribe-api/internal/models"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name   string
		dbPath string
	}{
		{name: "in-memory database", dbPath: ":memory:"},
		{name: "file database", dbPath: filepath.Join(t.TempDir(), "nested", "test.db")},
		{name: "empty path creates in-memory database", dbPath: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := Initialize(tt.dbPath, false)
			require.NoError(t, err)
			require.NotNil(t, conn)
			defer conn.Close()

			assert.NoError(t, conn.HealthCheck())
		})
	}
}

func TestDB_HealthCheck(t *testing.T) {
	tests := []struct {
		name      string
		setupConn func() *DB
		wantErr   bool
	}{
		{
			name: "healthy connection",
			setupConn: func() *DB {
				conn, _ := Initialize(":memory:", false)
				t.Cleanup(func() { conn.Close() })
				return conn
			},
			wantErr: false,
		},
		{
			name: "closed connection",
			setupConn: func() *DB {
				conn, _ := Initialize(":memory:", false)
				conn.Close()
				return conn
			},
			wantErr: true,
		},
		{
			name:      "nil connection",
			setupConn: func() *DB { return nil },
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.setupConn().HealthCheck()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDB_Migrate(t *testing.T) {
	conn, err := Initialize(":memory:", false)
	require.NoError(t, err)
	defer conn.Close()

	before := conn.TableStatus()
	assert.Equal(t, map[string]bool{"audio_files": false, "transcriptions": false}, before)

	require.NoError(t, conn.Migrate())

	after := conn.TableStatus()
	assert.Equal(t, map[string]bool{"audio_files": true, "transcriptions": true}, after)

	// running twice is a no-op
	require.NoError(t, conn.Migrate())
}

func TestDB_TransactionRollback(t *testing.T) {
	conn, err := Initialize(":memory:", false)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.Migrate())

	err = conn.DB.Transaction(func(tx *gorm.DB) error {
		audio := models.AudioFile{ID: "a-1", OriginalFilename: "a.mp3", StoragePath: "/x/a.mp3", UploadedAt: time.Now()}
		if err := tx.Create(&audio).Error; err != nil {
			return err
		}
		return gorm.ErrInvalidTransaction
	})
	assert.Error(t, err)

	var count int64
	conn.DB.Model(&models.AudioFile{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestInitializeWithMigrations(t *testing.T) {
	tests := []struct {
		name    string
		setup   func()
		wantErr string
	}{
		{
			name: "in-memory database",
			setup: func() {
				viper.Set("database.path", ":memory:")
			},
		},
		{
			name: "file database",
			setup: func() {
				viper.Set("database.path", filepath.Join(t.TempDir(), "test.db"))
			},
		},
		{
			name:    "missing path",
			setup:   func() {},
			wantErr: "database path is not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			tt.setup()

			db, err := InitializeWithMigrations()
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				assert.Nil(t, db)
				return
			}
			require.NoError(t, err)
			defer db.Close()
			assert.True(t, db.Migrator().HasTable(&models.Transcription{}))
		})
	}
}
