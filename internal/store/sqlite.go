package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SettingRecord is one serialized settings value of a profile.
type SettingRecord struct {
	Profile   string `gorm:"primaryKey;size:64"`
	Key       string `gorm:"primaryKey;column:record_key;size:64"`
	Value     []byte
	UpdatedAt time.Time
}

func (SettingRecord) TableName() string { return "settings" }

// SQLiteKV is a weather.KeyValueStore backed by a SQLite file.
type SQLiteKV struct {
	db *gorm.DB
}

// NewSQLiteKV opens (or creates) the database at path and migrates the schema.
func NewSQLiteKV(path string) (*SQLiteKV, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&SettingRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteKV{db: db}, nil
}

func (s *SQLiteKV) Get(ctx context.Context, profile, key string) ([]byte, bool, error) {
	var rec SettingRecord
	err := s.db.WithContext(ctx).
		Where("profile = ? AND record_key = ?", profile, key).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rec.Value, true, nil
}

func (s *SQLiteKV) Put(ctx context.Context, profile, key string, value []byte) error {
	rec := SettingRecord{Profile: profile, Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile"}, {Name: "record_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
}

func (s *SQLiteKV) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
