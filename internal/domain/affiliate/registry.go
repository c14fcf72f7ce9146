package affiliate

import (
	"context"
)

// RegistryClient is the binding to the remote SIS registry. Implementations
// own the wire protocol; callers only see classified outcomes. The client
// never writes to storage.
type RegistryClient interface {
	// GetSession exchanges credentials for an opaque session token. The raw
	// response is returned unclassified; SessionProvider interprets it.
	GetSession(ctx context.Context, creds Credentials) (string, error)

	// QueryAffiliate performs the eligibility lookup authorized by token.
	// On success the payload's result indicator is non-zero; a zero indicator
	// is classified as a bad response before this returns.
	QueryAffiliate(ctx context.Context, token string, req LookupRequest) (*Payload, error)
}

// SessionProvider obtains a validated session token for registry lookups.
type SessionProvider interface {
	// Acquire returns a session token or one of the session error classes:
	// INVALID_CREDENTIALS, GET_SESSION_ERROR, or BAD_RESPONSE.
	Acquire(ctx context.Context, creds Credentials) (string, error)
}
