package sis

import (
	"encoding/xml"

	"github.com/sisms/backend/internal/domain/affiliate"
)

const soapEnvelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"

// requestEnvelope wraps one operation element as a SOAP 1.1 request body.
type requestEnvelope struct {
	XMLName xml.Name `xml:"soap:Envelope"`
	SoapNS  string   `xml:"xmlns:soap,attr"`
	Body    requestBody
}

type requestBody struct {
	XMLName xml.Name `xml:"soap:Body"`
	Payload any
}

func newEnvelope(payload any) requestEnvelope {
	return requestEnvelope{
		SoapNS: soapEnvelopeNS,
		Body:   requestBody{Payload: payload},
	}
}

// getSessionRequest is the GetSession operation element.
type getSessionRequest struct {
	XMLName  xml.Name `xml:"GetSession"`
	NS       string   `xml:"xmlns,attr"`
	Username string   `xml:"strUsuario"`
	Password string   `xml:"strClave"`
}

// queryAffiliateRequest is the ConsultarAfiliadoFuaE operation element. The
// parameter names mirror the registry contract one to one.
type queryAffiliateRequest struct {
	XMLName        xml.Name `xml:"ConsultarAfiliadoFuaE"`
	NS             string   `xml:"xmlns,attr"`
	Option         int      `xml:"intOpcion"`
	Authorization  string   `xml:"strAutorizacion"`
	NationalID     string   `xml:"strDni"`
	DocumentType   string   `xml:"strTipoDocumento"`
	DocumentNumber string   `xml:"strNroDocumento"`
	Region         string   `xml:"strDisa,omitempty"`
	FormatType     string   `xml:"strTipoFormato,omitempty"`
	ContractNumber string   `xml:"strNroContrato,omitempty"`
	CorrelationID  string   `xml:"strCorrelativo,omitempty"`
}

// soapFault is the structured remote-side fault element.
type soapFault struct {
	Code    string `xml:"faultcode"`
	Message string `xml:"faultstring"`
}

// getSessionEnvelope parses a GetSession response.
type getSessionEnvelope struct {
	Body struct {
		Fault    *soapFault `xml:"Fault"`
		Response *struct {
			Result *string `xml:"GetSessionResult"`
		} `xml:"GetSessionResponse"`
	} `xml:"Body"`
}

// queryAffiliateEnvelope parses a ConsultarAfiliadoFuaE response.
type queryAffiliateEnvelope struct {
	Body struct {
		Fault    *soapFault `xml:"Fault"`
		Response *struct {
			Result *affiliateResult `xml:"ConsultarAfiliadoFuaEResult"`
		} `xml:"ConsultarAfiliadoFuaEResponse"`
	} `xml:"Body"`
}

// affiliateResult is the registry's affiliate payload. Every field except the
// result indicator is optional; pointers preserve the present/absent
// distinction that drives the upsert merge downstream.
type affiliateResult struct {
	ResultID            *int    `xml:"IdError"`
	ResultMessage       string  `xml:"Resultado"`
	DocumentType        *string `xml:"TipoDocumento"`
	DocumentNumber      *string `xml:"NroDocumento"`
	PaternalSurname     *string `xml:"ApePaterno"`
	MaternalSurname     *string `xml:"ApeMaterno"`
	GivenNames          *string `xml:"Nombres"`
	EnrollmentDate      *string `xml:"FecAfiliacion"`
	FacilityCode        *string `xml:"EESS"`
	FacilityName        *string `xml:"DescEESS"`
	FacilityUbigeo      *string `xml:"EESSUbigeo"`
	FacilityUbigeoName  *string `xml:"DescEESSUbigeo"`
	Regime              *string `xml:"Regimen"`
	CoverageType        *string `xml:"TipoSeguro"`
	CoverageTypeName    *string `xml:"DescTipoSeguro"`
	Contract            *string `xml:"Contrato"`
	ExpiryDate          *string `xml:"FecCaducidad"`
	Status              *string `xml:"Estado"`
	TableID             *string `xml:"Tabla"`
	RecordID            *string `xml:"IdNumReg"`
	Gender              *string `xml:"Genero"`
	BirthDate           *string `xml:"FecNacimiento"`
	UbigeoID            *string `xml:"IdUbigeo"`
	Region              *string `xml:"Disa"`
	FormatType          *string `xml:"TipoFormato"`
	ContractNumber      *string `xml:"NroContrato"`
	CorrelationID       *string `xml:"Correlativo"`
	PlanID              *string `xml:"IdPlan"`
	PopulationGroupID   *string `xml:"IdGrupoPoblacional"`
	ConfidentialMessage *string `xml:"MsgConfidencial"`
	ServerError         *string `xml:"ServerError"`
}

// ToDomain converts the wire payload to the domain payload.
func (r *affiliateResult) ToDomain() *affiliate.Payload {
	p := &affiliate.Payload{
		ResultMessage:       r.ResultMessage,
		DocumentType:        r.DocumentType,
		DocumentNumber:      r.DocumentNumber,
		PaternalSurname:     r.PaternalSurname,
		MaternalSurname:     r.MaternalSurname,
		GivenNames:          r.GivenNames,
		EnrollmentDate:      r.EnrollmentDate,
		FacilityCode:        r.FacilityCode,
		FacilityName:        r.FacilityName,
		FacilityUbigeo:      r.FacilityUbigeo,
		FacilityUbigeoName:  r.FacilityUbigeoName,
		Regime:              r.Regime,
		CoverageType:        r.CoverageType,
		CoverageTypeName:    r.CoverageTypeName,
		Contract:            r.Contract,
		ExpiryDate:          r.ExpiryDate,
		Status:              r.Status,
		TableID:             r.TableID,
		RecordID:            r.RecordID,
		Gender:              r.Gender,
		BirthDate:           r.BirthDate,
		UbigeoID:            r.UbigeoID,
		Region:              r.Region,
		FormatType:          r.FormatType,
		ContractNumber:      r.ContractNumber,
		CorrelationID:       r.CorrelationID,
		PlanID:              r.PlanID,
		PopulationGroupID:   r.PopulationGroupID,
		ConfidentialMessage: r.ConfidentialMessage,
		ServerError:         r.ServerError,
	}
	if r.ResultID != nil {
		p.ResultID = *r.ResultID
	}
	return p
}
