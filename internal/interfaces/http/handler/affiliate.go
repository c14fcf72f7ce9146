package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	affiliateapp "github.com/sisms/backend/internal/application/affiliate"
)

// bearerToken extracts a registry session token from the Authorization
// header, or returns empty when none was supplied.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// AffiliateHandler handles affiliate eligibility HTTP requests
type AffiliateHandler struct {
	BaseHandler
	service *affiliateapp.LookupService
}

// NewAffiliateHandler creates a new affiliate handler
func NewAffiliateHandler(service *affiliateapp.LookupService) *AffiliateHandler {
	return &AffiliateHandler{service: service}
}

// Lookup resolves an affiliate's eligibility, answering from storage when the
// document already resolved successfully today and from the remote registry
// otherwise.
func (h *AffiliateHandler) Lookup(c *gin.Context) {
	var req affiliateapp.LookupAffiliateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	req.Token = bearerToken(c)

	result, err := h.service.Lookup(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetByDocument returns the stored record for a document number
func (h *AffiliateHandler) GetByDocument(c *gin.Context) {
	document := c.Param("document")

	result, err := h.service.GetAffiliate(c.Request.Context(), document)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListQueries returns the most recent audit entries for a document number
func (h *AffiliateHandler) ListQueries(c *gin.Context) {
	document := c.Param("document")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.BadRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	result, err := h.service.ListQueries(c.Request.Context(), document, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
