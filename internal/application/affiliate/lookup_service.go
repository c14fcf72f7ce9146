package affiliate

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sisms/backend/internal/domain/affiliate"
	"github.com/sisms/backend/internal/domain/shared"
	"github.com/sisms/backend/internal/infrastructure/metrics"
)

const (
	defaultQueryHistoryLimit = 50
	maxQueryHistoryLimit     = 200
)

// LookupService orchestrates affiliate eligibility lookups: answer from
// storage when the document already resolved successfully today, otherwise
// fetch from the remote registry, merge the result into storage and audit the
// attempt. Each lookup runs inside one transaction scope so the record and
// its audit entry commit together.
type LookupService struct {
	scope    TransactionScope
	sessions affiliate.SessionProvider
	registry affiliate.RegistryClient
	creds    affiliate.Credentials
	metrics  *metrics.Metrics
	logger   *zap.Logger

	affiliates affiliate.Repository
	audits     affiliate.QueryAuditRepository
}

// NewLookupService creates a new LookupService. creds is the service identity
// used to open registry sessions; affiliates and audits serve the read-only
// endpoints outside any transaction scope.
func NewLookupService(
	scope TransactionScope,
	sessions affiliate.SessionProvider,
	registry affiliate.RegistryClient,
	creds affiliate.Credentials,
	affiliates affiliate.Repository,
	audits affiliate.QueryAuditRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) *LookupService {
	return &LookupService{
		scope:      scope,
		sessions:   sessions,
		registry:   registry,
		creds:      creds,
		affiliates: affiliates,
		audits:     audits,
		metrics:    m,
		logger:     logger,
	}
}

// Lookup resolves one eligibility query. Every attempt that reaches storage
// writes exactly one audit entry; a failed session acquisition writes none.
//
// Classified outcomes (a registry failure, the defensive missing-record
// branch) are carried outside the transaction function so their audit entry
// still commits; only infrastructure errors roll the transaction back.
func (s *LookupService) Lookup(ctx context.Context, req LookupAffiliateRequest) (*AffiliateResponse, error) {
	start := time.Now()
	domReq := req.ToDomain()

	var result *affiliate.Affiliate
	var failure error

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		hit, err := repos.AuditRepo().WasQueriedSuccessfullyToday(ctx, domReq.DocumentNumber)
		if err != nil {
			return err
		}
		if hit {
			result, failure, err = s.resolveFromStorage(ctx, repos, domReq)
			return err
		}
		result, failure, err = s.resolveFromRegistry(ctx, repos, domReq, req.Token)
		return err
	})
	s.metrics.ObserveLookupLatency(time.Since(start))
	if err != nil {
		return nil, err
	}
	if failure != nil {
		return nil, failure
	}
	return ToAffiliateResponse(result), nil
}

// resolveFromStorage serves a cache hit. The local audit entry is written
// before the record is read so the hit is durable even when the record itself
// turns out to be missing.
func (s *LookupService) resolveFromStorage(ctx context.Context, repos TransactionalRepositories, req affiliate.LookupRequest) (*affiliate.Affiliate, error, error) {
	if err := repos.AuditRepo().Record(ctx, req, affiliate.RecordOptions{Local: true}); err != nil {
		return nil, nil, err
	}

	stored, err := repos.AffiliateRepo().FindByDocument(ctx, req.DocumentNumber)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// The audit trail says the document resolved today but the
			// record itself is gone. Keep the audit entry and surface
			// NOT_FOUND instead of retrying the registry.
			s.logger.Warn("Audit trail reports a success today but no record exists",
				zap.String("document", req.DocumentNumber))
			return nil, shared.ErrNotFound, nil
		}
		return nil, nil, err
	}

	s.metrics.IncrementOutcome(metrics.OutcomeCacheHit)
	s.logger.Info("Lookup served from storage",
		zap.String("document", req.DocumentNumber),
		zap.String("user", req.User))
	return stored, nil, nil
}

// resolveFromRegistry performs the remote fetch. A failed session acquisition
// aborts before any write; a classified lookup failure writes its audit entry
// and comes back as a committed failure. A caller-supplied token skips
// acquisition entirely.
func (s *LookupService) resolveFromRegistry(ctx context.Context, repos TransactionalRepositories, req affiliate.LookupRequest, token string) (*affiliate.Affiliate, error, error) {
	if token == "" {
		sessionStart := time.Now()
		acquired, err := s.sessions.Acquire(ctx, s.creds)
		s.metrics.ObserveRegistryLatency("get_session", time.Since(sessionStart))
		if err != nil {
			s.metrics.IncrementOutcome(metrics.OutcomeRemoteError)
			s.logger.Error("Session acquisition failed",
				zap.String("document", req.DocumentNumber),
				zap.Error(err))
			return nil, nil, err
		}
		token = acquired
	}

	queryStart := time.Now()
	payload, err := s.registry.QueryAffiliate(ctx, token, req)
	s.metrics.ObserveRegistryLatency("query_affiliate", time.Since(queryStart))
	if err != nil {
		if recErr := repos.AuditRepo().Record(ctx, req, affiliate.RecordOptions{
			ErrorCode:        affiliate.ErrorCode(err),
			ErrorDescription: errorDescription(err),
		}); recErr != nil {
			return nil, nil, recErr
		}
		s.metrics.IncrementOutcome(metrics.OutcomeRemoteError)
		s.logger.Error("Registry lookup failed",
			zap.String("document", req.DocumentNumber),
			zap.String("code", affiliate.ErrorCode(err)),
			zap.Error(err))
		return nil, err, nil
	}

	stored, err := repos.AffiliateRepo().Upsert(ctx, payload)
	if err != nil {
		return nil, nil, err
	}
	if err := repos.AuditRepo().Record(ctx, req, affiliate.RecordOptions{}); err != nil {
		return nil, nil, err
	}

	s.metrics.IncrementOutcome(metrics.OutcomeRemoteSuccess)
	s.logger.Info("Lookup resolved from registry",
		zap.String("document", req.DocumentNumber),
		zap.String("user", req.User))
	return stored, nil, nil
}

// GetAffiliate returns the stored record for a document number.
func (s *LookupService) GetAffiliate(ctx context.Context, documentNumber string) (*AffiliateResponse, error) {
	stored, err := s.affiliates.FindByDocument(ctx, documentNumber)
	if err != nil {
		return nil, err
	}
	return ToAffiliateResponse(stored), nil
}

// ListQueries returns the audit trail for a document, newest first.
func (s *LookupService) ListQueries(ctx context.Context, documentNumber string, limit int) ([]*QueryAuditResponse, error) {
	if limit <= 0 {
		limit = defaultQueryHistoryLimit
	}
	if limit > maxQueryHistoryLimit {
		limit = maxQueryHistoryLimit
	}

	entries, err := s.audits.FindByDocument(ctx, documentNumber, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*QueryAuditResponse, len(entries))
	for i := range entries {
		responses[i] = ToQueryAuditResponse(&entries[i])
	}
	return responses, nil
}

// OpenSession validates caller-supplied credentials against the registry and
// returns the opened session token.
func (s *LookupService) OpenSession(ctx context.Context, req SessionRequest) (*SessionResponse, error) {
	start := time.Now()
	token, err := s.sessions.Acquire(ctx, affiliate.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	s.metrics.ObserveRegistryLatency("get_session", time.Since(start))
	if err != nil {
		return nil, err
	}
	return &SessionResponse{Token: token}, nil
}

// errorDescription extracts the human-readable message from a classified
// error, falling back to the full error text.
func errorDescription(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}
