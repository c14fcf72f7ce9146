package affiliate

import (
	"time"

	"github.com/google/uuid"
)

// QueryAudit records one lookup attempt. Entries are append-only: they are
// never updated or deleted, and every attempt writes exactly one entry
// regardless of outcome. Local marks an answer served from storage instead of
// the remote registry.
type QueryAudit struct {
	ID               uuid.UUID
	DocumentNumber   string
	User             string
	Local            bool
	ErrorCode        *string
	ErrorDescription *string
	CreatedAt        time.Time
}

// Succeeded reports whether the attempt completed without a classified error.
func (q *QueryAudit) Succeeded() bool {
	return q.ErrorCode == nil
}

// RecordOptions qualifies an audit entry. A zero value records a successful
// remote fetch; Local records a cache hit (never combined with an error).
type RecordOptions struct {
	Local            bool
	ErrorCode        string
	ErrorDescription string
}
