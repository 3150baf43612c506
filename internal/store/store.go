package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lizard045/Evolutionary-Computation/internal/evaluator"
)

// Record is one evaluated candidate of an archived run.
type Record struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	RunID      string    `json:"run_id" gorm:"not null;size:36;index"`
	Name       string    `json:"name" gorm:"not null;size:255"`
	Processors int       `json:"processors"`
	Makespan   float64   `json:"makespan" gorm:"index"`
	CommDelay  float64   `json:"comm_delay"`
	Violations int       `json:"violations"`
	Order      []int     `json:"order" gorm:"column:exec_order;type:text;serializer:json"`
	Assignment []int     `json:"assignment" gorm:"type:text;serializer:json"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Store archives evaluation runs in a SQLite database.
type Store struct {
	db *gorm.DB
}

// Open opens or creates the database at path and migrates its schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveRun archives every result under runID in a single transaction.
func (s *Store) SaveRun(runID string, results []*evaluator.Result) error {
	if len(results) == 0 {
		return nil
	}

	records := make([]Record, len(results))
	for i, r := range results {
		records[i] = Record{
			RunID:      runID,
			Name:       r.Name,
			Processors: r.Processors,
			Makespan:   r.Makespan,
			CommDelay:  r.CommDelay,
			Violations: len(r.Violations),
			Order:      r.Order,
			Assignment: r.Assignment,
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&records).Error; err != nil {
			return fmt.Errorf("save run %s: %w", runID, err)
		}
		return nil
	})
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	var records []Record
	err := s.db.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list recent runs: %w", err)
	}
	return records, nil
}

// Best returns up to limit records with the smallest makespans.
func (s *Store) Best(limit int) ([]Record, error) {
	var records []Record
	err := s.db.Order("makespan ASC").Order("id ASC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list best runs: %w", err)
	}
	return records, nil
}

// Run returns the records archived under runID in insertion order.
func (s *Store) Run(runID string) ([]Record, error) {
	var records []Record
	if err := s.db.Where("run_id = ?", runID).Order("id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	return records, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
