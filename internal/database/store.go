package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sdko-org/devops-status/internal/models"
	"gorm.io/gorm"
)

// ErrUnavailable is returned by every Store operation in degraded mode.
var ErrUnavailable = errors.New("database: persistence unavailable")

type State string

const (
	StateReady    State = "ready"
	StateDegraded State = "degraded"
)

// Store runs the page's queries on the pooled connections. A nil *Store is
// valid and stands for degraded mode.
type Store struct {
	db    *gorm.DB
	sqlDB *sql.DB
	pool  *pgxpool.Pool

	closeOnce sync.Once
	closeErr  error
}

type PoolStats struct {
	Acquired int32
	Idle     int32
	Total    int32
	Max      int32
}

func (s *Store) State() State {
	if s == nil {
		return StateDegraded
	}
	return StateReady
}

// RecordVisit inserts the visit; the server assigns visit_time.
func (s *Store) RecordVisit(ctx context.Context, visit *models.Visit) error {
	if s == nil {
		return ErrUnavailable
	}
	if err := s.db.WithContext(ctx).Create(visit).Error; err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

func (s *Store) CountVisits(ctx context.Context) (int64, error) {
	if s == nil {
		return 0, ErrUnavailable
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Visit{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count visits: %w", err)
	}
	return count, nil
}

// ListStudents returns every student in insertion order.
func (s *Store) ListStudents(ctx context.Context) ([]models.Student, error) {
	if s == nil {
		return nil, ErrUnavailable
	}
	var students []models.Student
	if err := s.db.WithContext(ctx).Order("id").Find(&students).Error; err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

func (s *Store) PoolStats() PoolStats {
	if s == nil {
		return PoolStats{}
	}
	stat := s.pool.Stat()
	return PoolStats{
		Acquired: stat.AcquiredConns(),
		Idle:     stat.IdleConns(),
		Total:    stat.TotalConns(),
		Max:      stat.MaxConns(),
	}
}

// Close releases every pooled connection. Safe to call more than once.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		s.closeErr = s.sqlDB.Close()
		s.pool.Close()
	})
	return s.closeErr
}
