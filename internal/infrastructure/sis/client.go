package sis

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sisms/backend/internal/domain/affiliate"
)

// maxResponseSize is the maximum allowed response size from the registry (1MB)
const maxResponseSize = 1 * 1024 * 1024

const defaultActionNamespace = "http://tempuri.org/"

// errMalformedResponse indicates a response that parsed as XML but did not
// carry the expected result element.
var errMalformedResponse = errors.New("sis: malformed registry response")

// Config holds the registry endpoint configuration.
type Config struct {
	// Endpoint is the full URL of the registry's SOAP endpoint.
	Endpoint string
	// ActionNamespace prefixes SOAPAction header values. Defaults to the
	// registry's published namespace.
	ActionNamespace string
	// TimeoutSeconds bounds each remote call end to end.
	TimeoutSeconds int
}

// Validate checks the configuration for required fields
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("sis: endpoint is required")
	}
	if _, err := url.ParseRequestURI(c.Endpoint); err != nil {
		return fmt.Errorf("sis: invalid endpoint: %w", err)
	}
	if c.ActionNamespace == "" {
		c.ActionNamespace = defaultActionNamespace
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// Client binds the registry's SOAP contract to the domain's RegistryClient
// interface. One instance is created at service start and shared by all
// requests; it holds no per-request state.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a registry client with the given configuration.
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, affiliate.ErrServiceDown()
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// NewClientWithHTTPClient creates a registry client using the supplied HTTP
// client. Used by tests to point at a stub server.
func NewClientWithHTTPClient(config *Config, httpClient *http.Client) (*Client, error) {
	c, err := NewClient(config)
	if err != nil {
		return nil, err
	}
	c.httpClient = httpClient
	return c, nil
}

// GetSession exchanges credentials for a session token. The response string
// is returned uninterpreted; rejection markers are the SessionProvider's
// concern. Transport failures and faults come back as plain errors,
// a missing result element as errMalformedResponse.
func (c *Client) GetSession(ctx context.Context, creds affiliate.Credentials) (string, error) {
	var envelope getSessionEnvelope
	err := c.call(ctx, "GetSession", getSessionRequest{
		NS:       c.config.ActionNamespace,
		Username: creds.Username,
		Password: creds.Password,
	}, &envelope)
	if err != nil {
		return "", err
	}
	if envelope.Body.Fault != nil {
		return "", fmt.Errorf("sis: GetSession fault: %s", envelope.Body.Fault.Message)
	}
	if envelope.Body.Response == nil || envelope.Body.Response.Result == nil {
		return "", errMalformedResponse
	}
	return *envelope.Body.Response.Result, nil
}

// QueryAffiliate performs the eligibility lookup. Outcomes are classified
// before returning: a structured fault, the "no data" sentinel, and anything
// unexpected each map to exactly one taxonomy code.
func (c *Client) QueryAffiliate(ctx context.Context, token string, req affiliate.LookupRequest) (*affiliate.Payload, error) {
	var envelope queryAffiliateEnvelope
	err := c.call(ctx, "ConsultarAfiliadoFuaE", queryAffiliateRequest{
		NS:             c.config.ActionNamespace,
		Option:         req.Option,
		Authorization:  token,
		NationalID:     req.NationalID,
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		Region:         req.Region,
		FormatType:     req.FormatType,
		ContractNumber: req.ContractNumber,
		CorrelationID:  req.CorrelationID,
	}, &envelope)
	if err != nil {
		if isConnectionError(err) {
			return nil, affiliate.ErrServiceDown()
		}
		return nil, affiliate.ErrLookupFault(err.Error())
	}
	if envelope.Body.Fault != nil {
		return nil, affiliate.ErrLookupFault(envelope.Body.Fault.Message)
	}
	if envelope.Body.Response == nil || envelope.Body.Response.Result == nil || envelope.Body.Response.Result.ResultID == nil {
		return nil, affiliate.ErrBadResponse("")
	}

	payload := envelope.Body.Response.Result.ToDomain()
	if !payload.HasData() {
		return nil, affiliate.ErrBadResponse(payload.ResultMessage)
	}
	return payload, nil
}

// call marshals the operation element into a SOAP 1.1 envelope, posts it and
// unmarshals the response. SOAP faults arrive with HTTP 500, so the body is
// parsed regardless of status before the status itself is considered.
func (c *Client) call(ctx context.Context, action string, payload any, out any) error {
	body, err := xml.Marshal(newEnvelope(payload))
	if err != nil {
		return fmt.Errorf("sis: marshal %s request: %w", action, err)
	}

	buf := bytes.NewBufferString(xml.Header)
	buf.Write(body)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, buf)
	if err != nil {
		return fmt.Errorf("sis: build %s request: %w", action, err)
	}
	httpReq.Header.Set("Content-Type", "text/xml; charset=utf-8")
	httpReq.Header.Set("SOAPAction", c.config.ActionNamespace+action)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sis: %s call failed: %w", action, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("sis: read %s response: %w", action, err)
	}

	if err := xml.Unmarshal(raw, out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("sis: %s returned status %d", action, resp.StatusCode)
		}
		return fmt.Errorf("sis: parse %s response: %w", action, err)
	}
	return nil
}

// isConnectionError reports whether the call never reached the registry.
func isConnectionError(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// Ensure Client implements the domain interface
var _ affiliate.RegistryClient = (*Client)(nil)
