package sis

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/sisms/backend/internal/domain/affiliate"
)

// rejectionMarkers are the case-sensitive substrings the registry embeds in a
// session response to signal rejected credentials.
var rejectionMarkers = []string{"INVALIDO", "INCORRECTA"}

// SessionProvider acquires session tokens from the registry and classifies
// the outcome. Tokens are not cached; each acquisition is a fresh call and
// retries are a caller policy.
type SessionProvider struct {
	client affiliate.RegistryClient
	logger *zap.Logger
}

// NewSessionProvider creates a session provider backed by the given client.
func NewSessionProvider(client affiliate.RegistryClient, logger *zap.Logger) *SessionProvider {
	return &SessionProvider{
		client: client,
		logger: logger,
	}
}

// Acquire obtains a session token for the given credentials.
func (p *SessionProvider) Acquire(ctx context.Context, creds affiliate.Credentials) (string, error) {
	response, err := p.client.GetSession(ctx, creds)
	if err != nil {
		if errors.Is(err, errMalformedResponse) {
			p.logger.Warn("Session response did not match the expected shape", zap.Error(err))
			return "", affiliate.ErrBadResponse("")
		}
		p.logger.Error("Session call failed", zap.Error(err))
		return "", affiliate.ErrSessionFault()
	}

	for _, marker := range rejectionMarkers {
		if strings.Contains(response, marker) {
			p.logger.Info("Registry rejected service credentials")
			return "", affiliate.ErrInvalidCredentials()
		}
	}

	return response, nil
}

var _ affiliate.SessionProvider = (*SessionProvider)(nil)
