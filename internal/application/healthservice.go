package application

import (
	"context"
	"time"

	"github.com/ericfisherdev/catalogapi/internal/domain/port/driven"
)

// Health status values.
const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
)

// HealthReport is the result of a health check.
type HealthReport struct {
	Status    string
	Database  string
	CheckedAt time.Time
}

// HealthService reports whether the service can reach its database. It
// depends only on port interfaces.
type HealthService struct {
	db      driven.Pinger
	timeout time.Duration
}

// NewHealthService creates a new HealthService. timeout bounds the database ping.
func NewHealthService(db driven.Pinger, timeout time.Duration) *HealthService {
	return &HealthService{
		db:      db,
		timeout: timeout,
	}
}

// Check pings the database. A failed ping reports the service as degraded;
// the error itself is returned for logging only.
func (s *HealthService) Check(ctx context.Context) (HealthReport, error) {
	report := HealthReport{
		Status:    HealthOK,
		Database:  HealthOK,
		CheckedAt: time.Now().UTC(),
	}

	if s.db == nil {
		return report, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.db.Ping(pingCtx); err != nil {
		report.Database = "unreachable"
		report.Status = HealthDegraded
		return report, err
	}

	return report, nil
}
