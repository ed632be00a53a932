package kvstore

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is a durable string key-value store. Values are whole documents:
// callers read, modify and write back entire entries, so concurrent writers
// to the same key can lose updates. Single active writer assumed.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

type KeyValue struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

// GormStore persists entries in the key_values table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(key string) (string, bool, error) {
	var kv KeyValue
	if err := s.db.First(&kv, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return kv.Value, true, nil
}

func (s *GormStore) Set(key, value string) error {
	kv := KeyValue{Key: key, Value: value, UpdatedAt: time.Now()}
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&kv).Error; err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

func (s *GormStore) Delete(key string) error {
	if err := s.db.Delete(&KeyValue{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}
