package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/models"
)

// OpenDB opens the SQLite database backing DBStore and runs migrations
func OpenDB(url string, zlog zerolog.Logger) (*gorm.DB, error) {
	const (
		maxOpenConns = 8
		maxIdleConns = 4
		busyTimeout  = 5000 // 5 seconds
	)

	db, err := gorm.Open(sqlite.Open(url), &gorm.Config{
		Logger: logger.New(
			gormWriter{log: zlog.With().Str("component", "gorm").Logger()},
			logger.Config{
				LogLevel:                  logger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// WAL must be set first
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout),
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			zlog.Warn().Str("pragma", pragma).Err(err).Msg("Failed to apply pragma")
		}
	}

	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// gormWriter routes gorm's log lines into zerolog
type gormWriter struct {
	log zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Warn().Msgf(format, args...)
}

// DBStore keeps session entries in a SQL database through gorm
type DBStore struct {
	db *gorm.DB
}

// NewDBStore creates a store on an already migrated database
func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Load(ctx context.Context, sessionID, key string) ([]byte, error) {
	var entry models.SessionEntry
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND entry_key = ?", sessionID, key).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session entry: %w", err)
	}
	return []byte(entry.Value), nil
}

func (s *DBStore) Save(ctx context.Context, sessionID, key string, value []byte) error {
	entry := models.SessionEntry{
		SessionID: sessionID,
		Key:       key,
		Value:     string(value),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to save session entry: %w", err)
	}
	return nil
}

func (s *DBStore) Delete(ctx context.Context, sessionID, key string) error {
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND entry_key = ?", sessionID, key).
		Delete(&models.SessionEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete session entry: %w", err)
	}
	return nil
}

func (s *DBStore) Purge(ctx context.Context, before time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("updated_at < ?", before).
		Delete(&models.SessionEntry{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge session entries: %w", result.Error)
	}
	return result.RowsAffected, nil
}
