package affiliate

import (
	"context"
)

// Repository persists affiliate records keyed by document number.
type Repository interface {
	// FindByDocument returns the record for a document number, or
	// shared.ErrNotFound when no record exists.
	FindByDocument(ctx context.Context, documentNumber string) (*Affiliate, error)

	// Upsert inserts a new record or merges the payload into the existing
	// record for the same document number. Fields absent from the payload are
	// left untouched. Returns the persisted record post-merge. The write is
	// staged on the repository's transaction; the caller owns the commit.
	Upsert(ctx context.Context, payload *Payload) (*Affiliate, error)
}

// QueryAuditRepository records lookup attempts and answers the daily-cache
// predicate.
type QueryAuditRepository interface {
	// WasQueriedSuccessfullyToday reports whether at least one error-free
	// entry exists for the document within the current local calendar day
	// (midnight to midnight in the repository's configured timezone).
	WasQueriedSuccessfullyToday(ctx context.Context, documentNumber string) (bool, error)

	// Record appends exactly one entry for a lookup attempt.
	Record(ctx context.Context, req LookupRequest, opts RecordOptions) error

	// FindByDocument returns the most recent entries for a document, newest
	// first, capped at limit.
	FindByDocument(ctx context.Context, documentNumber string, limit int) ([]QueryAudit, error)
}
