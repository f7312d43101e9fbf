package health

import (
	"context"
	"database/sql"
	"time"
)

// Pinger checks connectivity to a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	DB    *sql.DB
	Index Pinger
}

// NewService constructs a new health service.
func NewService(db *sql.DB, index Pinger) *Service {
	return &Service{DB: db, Index: index}
}

// Status pings both stores. A nil DB means the in-memory fallback is active
// and counts as healthy.
func (s *Service) Status(ctx context.Context) (map[string]bool, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	dbOK := true
	if s.DB != nil {
		dbOK = s.DB.PingContext(ctx) == nil
	}
	indexOK := true
	if s.Index != nil {
		indexOK = s.Index.Ping(ctx) == nil
	}

	return map[string]bool{
		"ok":       dbOK && indexOK,
		"database": dbOK,
		"search":   indexOK,
	}, dbOK && indexOK
}
