package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"

	appaff "github.com/sisms/backend/internal/application/affiliate"
	"github.com/sisms/backend/internal/domain/affiliate"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db       *gorm.DB
	clock    Clock
	location *time.Location
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB, location *time.Location) *GormTransactionScope {
	return NewGormTransactionScopeWithClock(db, location, systemClock{})
}

// NewGormTransactionScopeWithClock creates a scope with a custom clock.
func NewGormTransactionScopeWithClock(db *gorm.DB, location *time.Location, clock Clock) *GormTransactionScope {
	return &GormTransactionScope{db: db, clock: clock, location: location}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appaff.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx, clock: s.clock, location: s.location}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx       *gorm.DB
	clock    Clock
	location *time.Location
}

// AffiliateRepo returns the affiliate repository scoped to the current transaction.
func (r *gormTransactionalRepositories) AffiliateRepo() affiliate.Repository {
	return NewAffiliateRepository(r.tx)
}

// AuditRepo returns the audit repository scoped to the current transaction.
func (r *gormTransactionalRepositories) AuditRepo() affiliate.QueryAuditRepository {
	return NewQueryAuditRepositoryWithClock(r.tx, r.location, r.clock)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appaff.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appaff.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
