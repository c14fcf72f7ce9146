package affiliate

import (
	"context"

	"github.com/sisms/backend/internal/domain/affiliate"
)

// TransactionScope provides atomic execution of repository operations.
// One lookup runs inside exactly one scope: either all of its writes commit
// or none do.
type TransactionScope interface {
	// Execute runs fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to repositories bound to the
// current transaction.
type TransactionalRepositories interface {
	// AffiliateRepo returns the affiliate repository scoped to the transaction.
	AffiliateRepo() affiliate.Repository

	// AuditRepo returns the audit repository scoped to the transaction.
	AuditRepo() affiliate.QueryAuditRepository
}
