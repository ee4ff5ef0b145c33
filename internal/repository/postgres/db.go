// Package postgres persists the extraction audit trail.
package postgres

import (
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"docqa/internal/config"
)

// Audit writes are small and bursty; idle connections are recycled.
const connMaxIdleTime = 5 * time.Minute

// NewDB opens the audit database through the pgx stdlib driver and verifies
// it is reachable.
func NewDB(cfg *config.AuditConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres.NewDB: connecting to %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpen)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	logrus.Infof("postgres.NewDB: audit trail connected (%s:%d/%s, max open %d)", cfg.Host, cfg.Port, cfg.Name, cfg.MaxOpen)
	return db, nil
}
