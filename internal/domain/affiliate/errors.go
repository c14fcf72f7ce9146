package affiliate

import (
	"errors"

	"github.com/sisms/backend/internal/domain/shared"
)

// Error codes surfaced to the API boundary. The code strings are part of the
// public contract with existing SIS consumers and are kept verbatim.
const (
	CodeLookupError        = "CONSULTAR_AFILIADO_FUAE_ERROR"
	CodeSessionError       = "GET_SESSION_ERROR"
	CodeServiceDown        = "DISCONECTED_SIS_SERVICE"
	CodeBadResponse        = "BAD_RESPONSE"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
)

// ErrLookupFault classifies a structured fault raised by the registry during
// an eligibility lookup.
func ErrLookupFault(message string) *shared.DomainError {
	if message == "" {
		message = "Error al consultar afiliado"
	}
	return shared.NewDomainError(CodeLookupError, message)
}

// ErrSessionFault classifies a transport-level failure of the session call.
func ErrSessionFault() *shared.DomainError {
	return shared.NewDomainError(CodeSessionError, "Error al conectar con el servicio SIS")
}

// ErrServiceDown classifies a registry client that could not be constructed
// or reached at all.
func ErrServiceDown() *shared.DomainError {
	return shared.NewDomainError(CodeServiceDown, "Error al conectar con el servicio SIS")
}

// ErrBadResponse classifies a response that does not match the expected
// shape, including the registry's "no data" sentinel.
func ErrBadResponse(message string) *shared.DomainError {
	if message == "" {
		message = "Respuesta del servicio invalida"
	}
	return shared.NewDomainError(CodeBadResponse, message)
}

// ErrInvalidCredentials classifies a rejected username/password pair.
func ErrInvalidCredentials() *shared.DomainError {
	return shared.NewDomainError(CodeInvalidCredentials, "Credenciales inválidas")
}

// ErrorCode extracts the taxonomy code from an error, or CodeLookupError when
// the error carries no classification. Every remote failure surfaced by this
// package carries exactly one code.
func ErrorCode(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeLookupError
}
