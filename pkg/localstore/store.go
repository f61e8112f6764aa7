package localstore

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Row is one mirrored record. Data holds the entity as JSON; Dirty marks a
// local write that has not yet been confirmed by the remote store.
type Row struct {
	Table     string    `gorm:"primaryKey;column:tbl"`
	ID        string    `gorm:"primaryKey"`
	Data      []byte    `gorm:"not null"`
	Dirty     bool      `gorm:"index;not null;default:false"`
	UpdatedAt time.Time
}

func (Row) TableName() string {
	return "mirror_rows"
}

// Store is the embedded offline mirror. It holds a subset of the remote
// tables (habits, habit completions) keyed by the same ids.
type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Row{}); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Put writes a row. dirty=true records an optimistic local mutation awaiting
// remote confirmation; dirty=false records remote truth (hydration or ack).
func (s *Store) Put(table, id string, data []byte, dirty bool) error {
	row := Row{Table: table, ID: id, Data: data, Dirty: dirty, UpdatedAt: time.Now().UTC()}
	return s.db.Save(&row).Error
}

func (s *Store) Get(table, id string) (*Row, error) {
	var row Row
	err := s.db.Where("tbl = ? AND id = ?", table, id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Query returns every mirrored row of a table.
func (s *Store) Query(table string) ([]Row, error) {
	var rows []Row
	err := s.db.Where("tbl = ?", table).Find(&rows).Error
	return rows, err
}

func (s *Store) Delete(table, id string) error {
	return s.db.Where("tbl = ? AND id = ?", table, id).Delete(&Row{}).Error
}

// ClearDirty marks a row as confirmed by the remote store. A row deleted
// locally while its delete intent was in flight is simply absent; that is
// not an error.
func (s *Store) ClearDirty(table, id string) error {
	return s.db.Model(&Row{}).
		Where("tbl = ? AND id = ?", table, id).
		Update("dirty", false).Error
}

// DirtyRows returns unconfirmed local writes, oldest first.
func (s *Store) DirtyRows() ([]Row, error) {
	var rows []Row
	err := s.db.Where("dirty = ?", true).Order("updated_at ASC").Find(&rows).Error
	return rows, err
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
