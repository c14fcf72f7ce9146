package affiliate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sisms/backend/internal/domain/affiliate"
	"github.com/sisms/backend/internal/domain/shared"
)

// mockAffiliateRepo is a mock implementation of affiliate.Repository
type mockAffiliateRepo struct {
	mock.Mock
}

func (m *mockAffiliateRepo) FindByDocument(ctx context.Context, documentNumber string) (*affiliate.Affiliate, error) {
	args := m.Called(ctx, documentNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*affiliate.Affiliate), args.Error(1)
}

func (m *mockAffiliateRepo) Upsert(ctx context.Context, payload *affiliate.Payload) (*affiliate.Affiliate, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*affiliate.Affiliate), args.Error(1)
}

// mockAuditRepo is a mock implementation of affiliate.QueryAuditRepository
type mockAuditRepo struct {
	mock.Mock
}

func (m *mockAuditRepo) WasQueriedSuccessfullyToday(ctx context.Context, documentNumber string) (bool, error) {
	args := m.Called(ctx, documentNumber)
	return args.Bool(0), args.Error(1)
}

func (m *mockAuditRepo) Record(ctx context.Context, req affiliate.LookupRequest, opts affiliate.RecordOptions) error {
	args := m.Called(ctx, req, opts)
	return args.Error(0)
}

func (m *mockAuditRepo) FindByDocument(ctx context.Context, documentNumber string, limit int) ([]affiliate.QueryAudit, error) {
	args := m.Called(ctx, documentNumber, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]affiliate.QueryAudit), args.Error(1)
}

// mockSessionProvider is a mock implementation of affiliate.SessionProvider
type mockSessionProvider struct {
	mock.Mock
}

func (m *mockSessionProvider) Acquire(ctx context.Context, creds affiliate.Credentials) (string, error) {
	args := m.Called(ctx, creds)
	return args.String(0), args.Error(1)
}

// mockRegistryClient is a mock implementation of affiliate.RegistryClient
type mockRegistryClient struct {
	mock.Mock
}

func (m *mockRegistryClient) GetSession(ctx context.Context, creds affiliate.Credentials) (string, error) {
	args := m.Called(ctx, creds)
	return args.String(0), args.Error(1)
}

func (m *mockRegistryClient) QueryAffiliate(ctx context.Context, token string, req affiliate.LookupRequest) (*affiliate.Payload, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*affiliate.Payload), args.Error(1)
}

// fakeScope runs the transaction function directly and records whether it
// would have committed.
type fakeScope struct {
	repos     TransactionalRepositories
	executed  bool
	committed bool
}

func (s *fakeScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	s.executed = true
	err := fn(s.repos)
	s.committed = err == nil
	return err
}

type fakeRepos struct {
	affiliates affiliate.Repository
	audits     affiliate.QueryAuditRepository
}

func (r *fakeRepos) AffiliateRepo() affiliate.Repository       { return r.affiliates }
func (r *fakeRepos) AuditRepo() affiliate.QueryAuditRepository { return r.audits }

type serviceFixture struct {
	service    *LookupService
	scope      *fakeScope
	affiliates *mockAffiliateRepo
	audits     *mockAuditRepo
	sessions   *mockSessionProvider
	registry   *mockRegistryClient
}

var serviceCreds = affiliate.Credentials{Username: "svc", Password: "secret"}

func newServiceFixture() *serviceFixture {
	affiliates := new(mockAffiliateRepo)
	audits := new(mockAuditRepo)
	sessions := new(mockSessionProvider)
	registry := new(mockRegistryClient)
	scope := &fakeScope{repos: &fakeRepos{affiliates: affiliates, audits: audits}}

	return &serviceFixture{
		service:    NewLookupService(scope, sessions, registry, serviceCreds, affiliates, audits, nil, zap.NewNop()),
		scope:      scope,
		affiliates: affiliates,
		audits:     audits,
		sessions:   sessions,
		registry:   registry,
	}
}

func lookupRequest() LookupAffiliateRequest {
	return LookupAffiliateRequest{
		Option:         1,
		NationalID:     "46118717",
		DocumentType:   "1",
		DocumentNumber: "46118717",
		User:           "jperez",
	}
}

func storedAffiliate() *affiliate.Affiliate {
	doc := "46118717"
	names := "MARIA"
	status := "ACTIVO"
	return affiliate.NewFromPayload(&affiliate.Payload{
		ResultID:       1,
		DocumentNumber: &doc,
		GivenNames:     &names,
		Status:         &status,
	})
}

func TestLookupService_Lookup_CacheHit(t *testing.T) {
	f := newServiceFixture()
	req := lookupRequest()
	domReq := req.ToDomain()

	f.audits.On("WasQueriedSuccessfullyToday", mock.Anything, "46118717").Return(true, nil)
	f.audits.On("Record", mock.Anything, domReq, affiliate.RecordOptions{Local: true}).Return(nil)
	f.affiliates.On("FindByDocument", mock.Anything, "46118717").Return(storedAffiliate(), nil)

	resp, err := f.service.Lookup(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "46118717", resp.DocumentNumber)
	assert.Equal(t, "MARIA", resp.GivenNames)
	assert.True(t, f.scope.committed)

	// The registry is never touched on a hit.
	f.sessions.AssertNotCalled(t, "Acquire", mock.Anything, mock.Anything)
	f.registry.AssertNotCalled(t, "QueryAffiliate", mock.Anything, mock.Anything, mock.Anything)
	f.audits.AssertExpectations(t)
}

func TestLookupService_Lookup_CacheHitRecordMissing(t *testing.T) {
	f := newServiceFixture()
	req := lookupRequest()
	domReq := req.ToDomain()

	f.audits.On("WasQueriedSuccessfullyToday", mock.Anything, "46118717").Return(true, nil)
	f.audits.On("Record", mock.Anything, domReq, affiliate.RecordOptions{Local: true}).Return(nil)
	f.affiliates.On("FindByDocument", mock.Anything, "46118717").Return(nil, shared.ErrNotFound)

	_, err := f.service.Lookup(context.Background(), req)

	assert.ErrorIs(t, err, shared.ErrNotFound)
	// The local audit entry still commits; the registry is not retried.
	assert.True(t, f.scope.committed)
	f.sessions.AssertNotCalled(t, "Acquire", mock.Anything, mock.Anything)
}

func TestLookupService_Lookup_CacheMissSuccess(t *testing.T) {
	f := newServiceFixture()
	req := lookupRequest()
	domReq := req.ToDomain()

	doc := "46118717"
	payload := &affiliate.Payload{ResultID: 1, DocumentNumber: &doc}

	f.audits.On("WasQueriedSuccessfullyToday", mock.Anything, "46118717").Return(false, nil)
	f.sessions.On("Acquire", mock.Anything, serviceCreds).Return("tok-123", nil)
	f.registry.On("QueryAffiliate", mock.Anything, "tok-123", domReq).Return(payload, nil)
	f.affiliates.On("Upsert", mock.Anything, payload).Return(storedAffiliate(), nil)
	f.audits.On("Record", mock.Anything, domReq, affiliate.RecordOptions{}).Return(nil)

	resp, err := f.service.Lookup(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "46118717", resp.DocumentNumber)
	assert.True(t, f.scope.committed)
	f.audits.AssertExpectations(t)
	f.registry.AssertExpectations(t)
}

func TestLookupService_Lookup_CallerTokenSkipsAcquisition(t *testing.T) {
	f := newServiceFixture()
	req := lookupRequest()
	req.Token = "caller-supplied-token"
	domReq := req.ToDomain()

	doc := "46118717"
	payload := &affiliate.Payload{ResultID: 1, DocumentNumber: &doc}

	f.audits.On("WasQueriedSuccessfullyToday", mock.Anything, "46118717").Return(false, nil)
	f.registry.On("QueryAffiliate", mock.Anything, "caller-supplied-token", domReq).Return(payload, nil)
	f.affiliates.On("Upsert", mock.Anything, payload).Return(storedAffiliate(), nil)
	f.audits.On("Record", mock.Anything, domReq, affiliate.RecordOptions{}).Return(nil)

	resp, err := f.service.Lookup(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "46118717", resp.DocumentNumber)
	f.sessions.AssertNotCalled(t, "Acquire", mock.Anything, mock.Anything)
	f.registry.AssertExpectations(t)
}

func TestLookupService_Lookup_RemoteFailureIsAudited(t *testing.T) {
	f := newServiceFixture()
	req := lookupRequest()
	domReq := req.ToDomain()

	f.audits.On("WasQueriedSuccessfullyToday", mock.Anything, "46118717").Return(false, nil)
	f.sessions.On("Acquire", mock.Anything, serviceCreds).Return("tok-123", nil)
	f.registry.On("QueryAffiliate", mock.Anything, "tok-123", domReq).Return(nil, affiliate.ErrServiceDown())
	f.audits.On("Record", mock.Anything, domReq, affiliate.RecordOptions{
		ErrorCode:        affiliate.CodeServiceDown,
		ErrorDescription: "Error al conectar con el servicio SIS",
	}).Return(nil)

	_, err := f.service.Lookup(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, affiliate.CodeServiceDown, affiliate.ErrorCode(err))
	// The failure audit entry commits even though the lookup failed.
	assert.True(t, f.scope.committed)
	f.audits.AssertExpectations(t)
	f.affiliates.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestLookupService_Lookup_FailureDoesNotPoisonCache(t *testing.T) {
	f := newServiceFixture()
	req := lookupRequest()
	domReq := req.ToDomain()

	// First attempt fails remotely and is audited with an error code.
	f.audits.On("WasQueriedSuccessfullyToday", mock.Anything, "46118717").Return(false, nil).Twice()
	f.sessions.On("Acquire", mock.Anything, serviceCreds).Return("tok-123", nil).Twice()
	f.registry.On("QueryAffiliate", mock.Anything, "tok-123", domReq).
		Return(nil, affiliate.ErrLookupFault("boom")).Once()
	f.audits.On("Record", mock.Anything, domReq, mock.MatchedBy(func(opts affiliate.RecordOptions) bool {
		return opts.ErrorCode == affiliate.CodeLookupError
	})).Return(nil).Once()

	_, err := f.service.Lookup(context.Background(), req)
	require.Error(t, err)

	// The second attempt goes remote again: a failed day is not a cached day.
	doc := "46118717"
	payload := &affiliate.Payload{ResultID: 1, DocumentNumber: &doc}
	f.registry.On("QueryAffiliate", mock.Anything, "tok-123", domReq).Return(payload, nil).Once()
	f.affiliates.On("Upsert", mock.Anything, payload).Return(storedAffiliate(), nil)
	f.audits.On("Record", mock.Anything, domReq, affiliate.RecordOptions{}).Return(nil).Once()

	resp, err := f.service.Lookup(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "46118717", resp.DocumentNumber)
	f.registry.AssertExpectations(t)
}

func TestLookupService_Lookup_SessionFailureWritesNoAudit(t *testing.T) {
	f := newServiceFixture()
	req := lookupRequest()

	f.audits.On("WasQueriedSuccessfullyToday", mock.Anything, "46118717").Return(false, nil)
	f.sessions.On("Acquire", mock.Anything, serviceCreds).Return("", affiliate.ErrSessionFault())

	_, err := f.service.Lookup(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, affiliate.CodeSessionError, affiliate.ErrorCode(err))
	assert.False(t, f.scope.committed)
	f.audits.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything)
	f.registry.AssertNotCalled(t, "QueryAffiliate", mock.Anything, mock.Anything, mock.Anything)
}

func TestLookupService_GetAffiliate(t *testing.T) {
	f := newServiceFixture()

	t.Run("returns the stored record", func(t *testing.T) {
		f.affiliates.On("FindByDocument", mock.Anything, "46118717").Return(storedAffiliate(), nil).Once()

		resp, err := f.service.GetAffiliate(context.Background(), "46118717")
		require.NoError(t, err)
		assert.Equal(t, "ACTIVO", resp.Status)
	})

	t.Run("propagates not found", func(t *testing.T) {
		f.affiliates.On("FindByDocument", mock.Anything, "00000000").Return(nil, shared.ErrNotFound).Once()

		_, err := f.service.GetAffiliate(context.Background(), "00000000")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestLookupService_ListQueries(t *testing.T) {
	f := newServiceFixture()

	t.Run("caps and defaults the limit", func(t *testing.T) {
		f.audits.On("FindByDocument", mock.Anything, "46118717", defaultQueryHistoryLimit).
			Return([]affiliate.QueryAudit{}, nil).Once()
		_, err := f.service.ListQueries(context.Background(), "46118717", 0)
		require.NoError(t, err)

		f.audits.On("FindByDocument", mock.Anything, "46118717", maxQueryHistoryLimit).
			Return([]affiliate.QueryAudit{}, nil).Once()
		_, err = f.service.ListQueries(context.Background(), "46118717", 10000)
		require.NoError(t, err)

		f.audits.AssertExpectations(t)
	})
}

func TestLookupService_OpenSession(t *testing.T) {
	f := newServiceFixture()

	t.Run("returns the token for valid credentials", func(t *testing.T) {
		f.sessions.On("Acquire", mock.Anything, affiliate.Credentials{Username: "ext", Password: "pw"}).
			Return("tok-999", nil).Once()

		resp, err := f.service.OpenSession(context.Background(), SessionRequest{Username: "ext", Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, "tok-999", resp.Token)
	})

	t.Run("propagates credential rejection", func(t *testing.T) {
		f.sessions.On("Acquire", mock.Anything, affiliate.Credentials{Username: "ext", Password: "bad"}).
			Return("", affiliate.ErrInvalidCredentials()).Once()

		_, err := f.service.OpenSession(context.Background(), SessionRequest{Username: "ext", Password: "bad"})
		require.Error(t, err)
		assert.Equal(t, affiliate.CodeInvalidCredentials, affiliate.ErrorCode(err))
	})
}
