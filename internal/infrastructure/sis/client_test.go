package sis

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sisms/backend/internal/domain/affiliate"
	"github.com/sisms/backend/internal/domain/shared"
)

const sessionOKBody = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <GetSessionResponse xmlns="http://tempuri.org/">
      <GetSessionResult>abc123-session-token</GetSessionResult>
    </GetSessionResponse>
  </soap:Body>
</soap:Envelope>`

const affiliateOKBody = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <ConsultarAfiliadoFuaEResponse xmlns="http://tempuri.org/">
      <ConsultarAfiliadoFuaEResult>
        <IdError>1</IdError>
        <Resultado>OK</Resultado>
        <TipoDocumento>1</TipoDocumento>
        <NroDocumento>46118717</NroDocumento>
        <Nombres>MARIA</Nombres>
        <ApePaterno>QUISPE</ApePaterno>
        <Estado>ACTIVO</Estado>
        <Regimen>SUBSIDIADO</Regimen>
      </ConsultarAfiliadoFuaEResult>
    </ConsultarAfiliadoFuaEResponse>
  </soap:Body>
</soap:Envelope>`

const affiliateNoDataBody = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <ConsultarAfiliadoFuaEResponse xmlns="http://tempuri.org/">
      <ConsultarAfiliadoFuaEResult>
        <IdError>0</IdError>
        <Resultado>SIN DATOS</Resultado>
      </ConsultarAfiliadoFuaEResult>
    </ConsultarAfiliadoFuaEResponse>
  </soap:Body>
</soap:Envelope>`

const faultBody = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <soap:Fault>
      <faultcode>soap:Server</faultcode>
      <faultstring>Server was unable to process request</faultstring>
    </soap:Fault>
  </soap:Body>
</soap:Envelope>`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&Config{Endpoint: server.URL, TimeoutSeconds: 5})
	require.NoError(t, err)
	return client, server
}

func lookupRequest() affiliate.LookupRequest {
	return affiliate.LookupRequest{
		Option:         1,
		NationalID:     "46118717",
		DocumentType:   "1",
		DocumentNumber: "46118717",
		User:           "jperez",
	}
}

func TestNewClient(t *testing.T) {
	t.Run("rejects empty endpoint", func(t *testing.T) {
		_, err := NewClient(&Config{})
		require.Error(t, err)
		assert.Equal(t, affiliate.CodeServiceDown, affiliate.ErrorCode(err))
	})

	t.Run("applies defaults", func(t *testing.T) {
		cfg := &Config{Endpoint: "http://sis.example.com/service.asmx"}
		_, err := NewClient(cfg)
		require.NoError(t, err)
		assert.Equal(t, defaultActionNamespace, cfg.ActionNamespace)
		assert.Equal(t, 30, cfg.TimeoutSeconds)
	})
}

func TestGetSession(t *testing.T) {
	t.Run("returns raw token string", func(t *testing.T) {
		var gotAction string
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotAction = r.Header.Get("SOAPAction")
			w.Header().Set("Content-Type", "text/xml; charset=utf-8")
			_, _ = w.Write([]byte(sessionOKBody))
		})

		token, err := client.GetSession(context.Background(), affiliate.Credentials{Username: "svc", Password: "secret"})

		require.NoError(t, err)
		assert.Equal(t, "abc123-session-token", token)
		assert.Equal(t, "http://tempuri.org/GetSession", gotAction)
	})

	t.Run("returns rejection text uninterpreted", func(t *testing.T) {
		body := `<?xml version="1.0"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body>
<GetSessionResponse xmlns="http://tempuri.org/"><GetSessionResult>CLAVE INCORRECTA</GetSessionResult></GetSessionResponse>
</soap:Body></soap:Envelope>`
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		})

		token, err := client.GetSession(context.Background(), affiliate.Credentials{Username: "svc", Password: "bad"})

		require.NoError(t, err)
		assert.Equal(t, "CLAVE INCORRECTA", token)
	})

	t.Run("fault becomes plain error", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(faultBody))
		})

		_, err := client.GetSession(context.Background(), affiliate.Credentials{Username: "svc", Password: "secret"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Server was unable to process request")
	})

	t.Run("missing result element is malformed", func(t *testing.T) {
		body := `<?xml version="1.0"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body></soap:Body></soap:Envelope>`
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		})

		_, err := client.GetSession(context.Background(), affiliate.Credentials{Username: "svc", Password: "secret"})

		assert.ErrorIs(t, err, errMalformedResponse)
	})
}

func TestQueryAffiliate(t *testing.T) {
	t.Run("success returns populated payload", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "http://tempuri.org/ConsultarAfiliadoFuaE", r.Header.Get("SOAPAction"))
			_, _ = w.Write([]byte(affiliateOKBody))
		})

		payload, err := client.QueryAffiliate(context.Background(), "tok", lookupRequest())

		require.NoError(t, err)
		assert.Equal(t, 1, payload.ResultID)
		assert.Equal(t, "46118717", payload.LookupDocument())
		require.NotNil(t, payload.Status)
		assert.Equal(t, "ACTIVO", *payload.Status)
		// Fields the registry omitted stay absent.
		assert.Nil(t, payload.ExpiryDate)
		assert.Nil(t, payload.ConfidentialMessage)
	})

	t.Run("no-data sentinel classifies as bad response", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(affiliateNoDataBody))
		})

		_, err := client.QueryAffiliate(context.Background(), "tok", lookupRequest())

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, affiliate.CodeBadResponse, domainErr.Code)
		assert.Equal(t, "SIN DATOS", domainErr.Message)
	})

	t.Run("soap fault classifies as lookup error", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(faultBody))
		})

		_, err := client.QueryAffiliate(context.Background(), "tok", lookupRequest())

		require.Error(t, err)
		assert.Equal(t, affiliate.CodeLookupError, affiliate.ErrorCode(err))
		assert.Contains(t, err.Error(), "Server was unable to process request")
	})

	t.Run("unparseable body classifies as lookup error", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("this is not xml"))
		})

		_, err := client.QueryAffiliate(context.Background(), "tok", lookupRequest())

		require.Error(t, err)
		assert.Equal(t, affiliate.CodeLookupError, affiliate.ErrorCode(err))
	})

	t.Run("missing result indicator classifies as bad response", func(t *testing.T) {
		body := `<?xml version="1.0"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body>
<ConsultarAfiliadoFuaEResponse xmlns="http://tempuri.org/"><ConsultarAfiliadoFuaEResult>
<Resultado>shape drifted</Resultado>
</ConsultarAfiliadoFuaEResult></ConsultarAfiliadoFuaEResponse>
</soap:Body></soap:Envelope>`
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		})

		_, err := client.QueryAffiliate(context.Background(), "tok", lookupRequest())

		require.Error(t, err)
		assert.Equal(t, affiliate.CodeBadResponse, affiliate.ErrorCode(err))
	})

	t.Run("unreachable registry classifies as disconnected", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		endpoint := server.URL
		server.Close()

		client, err := NewClient(&Config{Endpoint: endpoint, TimeoutSeconds: 1})
		require.NoError(t, err)

		_, err = client.QueryAffiliate(context.Background(), "tok", lookupRequest())

		require.Error(t, err)
		assert.Equal(t, affiliate.CodeServiceDown, affiliate.ErrorCode(err))
	})
}
