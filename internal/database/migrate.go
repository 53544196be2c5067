package database

import (
	"context"
	"fmt"

	"github.com/sdko-org/devops-status/internal/models"
	"gorm.io/gorm"
)

// Table layouts are shared with existing deployments; keep them stable.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS visits (
		id SERIAL PRIMARY KEY,
		visit_time TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		client_ip VARCHAR(50),
		user_agent TEXT,
		path VARCHAR(255)
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100),
		group_name VARCHAR(50),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
}

// Migrate creates missing tables and seeds students in one transaction. It
// returns the number of seed rows inserted, zero when the table already had rows.
func Migrate(ctx context.Context, db *gorm.DB) (int, error) {
	var seeded int
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stmt := range schema {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("create schema: %w", err)
			}
		}

		n, err := Seed(tx)
		if err != nil {
			return err
		}
		seeded = n
		return nil
	})
	return seeded, err
}

// Seed inserts the reference students only when the table is empty. The
// check and insert are not atomic against other writers; it runs once at startup.
func Seed(tx *gorm.DB) (int, error) {
	var count int64
	if err := tx.Model(&models.Student{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	students := models.SeedStudents()
	if err := tx.Create(&students).Error; err != nil {
		return 0, fmt.Errorf("seed students: %w", err)
	}
	return len(students), nil
}
