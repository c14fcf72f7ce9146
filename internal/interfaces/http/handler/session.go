package handler

import (
	"github.com/gin-gonic/gin"
	affiliateapp "github.com/sisms/backend/internal/application/affiliate"
)

// SessionHandler handles registry session HTTP requests
type SessionHandler struct {
	BaseHandler
	service *affiliateapp.LookupService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(service *affiliateapp.LookupService) *SessionHandler {
	return &SessionHandler{service: service}
}

// Open acquires a registry session token for the supplied credentials
func (h *SessionHandler) Open(c *gin.Context) {
	var req affiliateapp.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	result, err := h.service.OpenSession(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
