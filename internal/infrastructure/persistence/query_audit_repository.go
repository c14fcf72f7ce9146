package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sisms/backend/internal/domain/affiliate"
)

// Clock supplies the current time. Injected so the calendar-day window can be
// pinned in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// QueryAuditModel is the GORM model for lookup audit entries
type QueryAuditModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	DocumentNumber   string    `gorm:"type:varchar(20);index:idx_affiliate_queries_document_created;not null"`
	User             string    `gorm:"type:varchar(100)"`
	Local            bool      `gorm:"not null;default:false"`
	ErrorCode        *string   `gorm:"type:varchar(64)"`
	ErrorDescription *string   `gorm:"type:text"`
	CreatedAt        time.Time `gorm:"index:idx_affiliate_queries_document_created;not null"`
}

// TableName returns the table name for the model
func (QueryAuditModel) TableName() string {
	return "affiliate_queries"
}

// ToEntity converts the model to a domain entity
func (m *QueryAuditModel) ToEntity() *affiliate.QueryAudit {
	return &affiliate.QueryAudit{
		ID:               m.ID,
		DocumentNumber:   m.DocumentNumber,
		User:             m.User,
		Local:            m.Local,
		ErrorCode:        m.ErrorCode,
		ErrorDescription: m.ErrorDescription,
		CreatedAt:        m.CreatedAt,
	}
}

// QueryAuditRepository implements the affiliate.QueryAuditRepository
// interface. The calendar day that bounds the cache predicate is computed in
// the configured location, not in UTC.
type QueryAuditRepository struct {
	db       *gorm.DB
	clock    Clock
	location *time.Location
}

// NewQueryAuditRepository creates a new audit repository using the system clock
func NewQueryAuditRepository(db *gorm.DB, location *time.Location) *QueryAuditRepository {
	return NewQueryAuditRepositoryWithClock(db, location, systemClock{})
}

// NewQueryAuditRepositoryWithClock creates a new audit repository with a custom clock
func NewQueryAuditRepositoryWithClock(db *gorm.DB, location *time.Location, clock Clock) *QueryAuditRepository {
	return &QueryAuditRepository{db: db, clock: clock, location: location}
}

// WasQueriedSuccessfullyToday reports whether an error-free entry exists for
// the document within today's local calendar day. Cache-hit entries count:
// once a day starts with a success, every later attempt that day is local.
func (r *QueryAuditRepository) WasQueriedSuccessfullyToday(ctx context.Context, documentNumber string) (bool, error) {
	dayStart, dayEnd := r.today()

	var count int64
	err := r.db.WithContext(ctx).
		Model(&QueryAuditModel{}).
		Where("document_number = ?", documentNumber).
		Where("error_code IS NULL").
		Where("created_at >= ? AND created_at < ?", dayStart, dayEnd).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Record appends one audit entry for a lookup attempt
func (r *QueryAuditRepository) Record(ctx context.Context, req affiliate.LookupRequest, opts affiliate.RecordOptions) error {
	model := &QueryAuditModel{
		ID:             uuid.New(),
		DocumentNumber: req.DocumentNumber,
		User:           req.User,
		Local:          opts.Local,
		CreatedAt:      r.clock.Now(),
	}
	if opts.ErrorCode != "" {
		model.ErrorCode = &opts.ErrorCode
	}
	if opts.ErrorDescription != "" {
		model.ErrorDescription = &opts.ErrorDescription
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByDocument returns the most recent entries for a document, newest first
func (r *QueryAuditRepository) FindByDocument(ctx context.Context, documentNumber string, limit int) ([]affiliate.QueryAudit, error) {
	var models []QueryAuditModel
	err := r.db.WithContext(ctx).
		Where("document_number = ?", documentNumber).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entries := make([]affiliate.QueryAudit, len(models))
	for i, model := range models {
		entries[i] = *model.ToEntity()
	}
	return entries, nil
}

// today returns the [start, end) bounds of the current local calendar day.
func (r *QueryAuditRepository) today() (time.Time, time.Time) {
	now := r.clock.Now().In(r.location)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, r.location)
	return start, start.AddDate(0, 0, 1)
}

// Ensure QueryAuditRepository implements the domain interface
var _ affiliate.QueryAuditRepository = (*QueryAuditRepository)(nil)
