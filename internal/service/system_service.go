package service

import (
	"database/sql"

	"github.com/stockbucket/backend/internal/database"
	"github.com/stockbucket/backend/internal/version"
)

// SystemService answers liveness and version queries.
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{
		db: db,
	}
}

// CheckHealth reports whether the database is reachable.
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion returns the version baked into the binary at build time.
func (s *SystemService) CheckVersion() string {
	return version.Version
}
