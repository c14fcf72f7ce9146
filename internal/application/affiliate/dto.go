package affiliate

import (
	"time"

	"github.com/sisms/backend/internal/domain/affiliate"
)

// LookupAffiliateRequest represents a request to resolve an affiliate's
// eligibility. The JSON field names are part of the existing API contract
// and are kept verbatim.
type LookupAffiliateRequest struct {
	Option         int    `json:"opcion" binding:"required"`
	NationalID     string `json:"dni" binding:"required,min=8,max=15"`
	DocumentType   string `json:"tipo_documento" binding:"required,max=5"`
	DocumentNumber string `json:"nro_documento" binding:"required,min=8,max=20"`
	Region         string `json:"disa" binding:"max=10"`
	FormatType     string `json:"tipo_formato" binding:"max=10"`
	ContractNumber string `json:"nro_contrato" binding:"max=50"`
	CorrelationID  string `json:"correlativo" binding:"max=50"`
	User           string `json:"usuario" binding:"required,max=100"`

	// Token is a caller-supplied registry session token taken from the
	// Authorization header, not the body. When set, session acquisition
	// is skipped.
	Token string `json:"-"`
}

// ToDomain converts the request to a domain lookup request
func (r *LookupAffiliateRequest) ToDomain() affiliate.LookupRequest {
	return affiliate.LookupRequest{
		Option:         r.Option,
		NationalID:     r.NationalID,
		DocumentType:   r.DocumentType,
		DocumentNumber: r.DocumentNumber,
		Region:         r.Region,
		FormatType:     r.FormatType,
		ContractNumber: r.ContractNumber,
		CorrelationID:  r.CorrelationID,
		User:           r.User,
	}
}

// SessionRequest represents caller-supplied registry credentials
type SessionRequest struct {
	Username string `json:"usuario" binding:"required,max=100"`
	Password string `json:"clave" binding:"required,max=100"`
}

// SessionResponse carries an opened registry session token
type SessionResponse struct {
	Token string `json:"token"`
}

// AffiliateResponse represents an affiliate record in API responses
type AffiliateResponse struct {
	ID                  string `json:"id"`
	ResultID            int    `json:"id_error"`
	ResultMessage       string `json:"resultado"`
	DocumentType        string `json:"tipo_documento"`
	DocumentNumber      string `json:"nro_documento"`
	PaternalSurname     string `json:"ape_paterno"`
	MaternalSurname     string `json:"ape_materno"`
	GivenNames          string `json:"nombres"`
	EnrollmentDate      string `json:"fec_afiliacion"`
	FacilityCode        string `json:"eess"`
	FacilityName        string `json:"desc_eess"`
	FacilityUbigeo      string `json:"eess_ubigeo"`
	FacilityUbigeoName  string `json:"desc_eess_ubigeo"`
	Regime              string `json:"regimen"`
	CoverageType        string `json:"tipo_seguro"`
	CoverageTypeName    string `json:"desc_tipo_seguro"`
	Contract            string `json:"contrato"`
	ExpiryDate          string `json:"fec_caducidad"`
	Status              string `json:"estado"`
	TableID             string `json:"tabla"`
	RecordID            string `json:"id_num_reg"`
	Gender              string `json:"genero"`
	BirthDate           string `json:"fec_nacimiento"`
	UbigeoID            string `json:"id_ubigeo"`
	Region              string `json:"disa"`
	FormatType          string `json:"tipo_formato"`
	ContractNumber      string `json:"nro_contrato"`
	CorrelationID       string `json:"correlativo"`
	PlanID              string `json:"id_plan"`
	PopulationGroupID   string `json:"id_grupo_poblacional"`
	ConfidentialMessage string `json:"msg_confidencial"`
	UpdatedAt           string `json:"updated_at"`
}

// ToAffiliateResponse converts a domain entity to the API representation
func ToAffiliateResponse(a *affiliate.Affiliate) *AffiliateResponse {
	return &AffiliateResponse{
		ID:                  a.ID.String(),
		ResultID:            a.ResultID,
		ResultMessage:       a.ResultMessage,
		DocumentType:        a.DocumentType,
		DocumentNumber:      a.DocumentNumber,
		PaternalSurname:     a.PaternalSurname,
		MaternalSurname:     a.MaternalSurname,
		GivenNames:          a.GivenNames,
		EnrollmentDate:      a.EnrollmentDate,
		FacilityCode:        a.FacilityCode,
		FacilityName:        a.FacilityName,
		FacilityUbigeo:      a.FacilityUbigeo,
		FacilityUbigeoName:  a.FacilityUbigeoName,
		Regime:              a.Regime,
		CoverageType:        a.CoverageType,
		CoverageTypeName:    a.CoverageTypeName,
		Contract:            a.Contract,
		ExpiryDate:          a.ExpiryDate,
		Status:              a.Status,
		TableID:             a.TableID,
		RecordID:            a.RecordID,
		Gender:              a.Gender,
		BirthDate:           a.BirthDate,
		UbigeoID:            a.UbigeoID,
		Region:              a.Region,
		FormatType:          a.FormatType,
		ContractNumber:      a.ContractNumber,
		CorrelationID:       a.CorrelationID,
		PlanID:              a.PlanID,
		PopulationGroupID:   a.PopulationGroupID,
		ConfidentialMessage: a.ConfidentialMessage,
		UpdatedAt:           a.UpdatedAt.Format(time.RFC3339),
	}
}

// QueryAuditResponse represents one audit entry in API responses
type QueryAuditResponse struct {
	ID               string  `json:"id"`
	DocumentNumber   string  `json:"nro_documento"`
	User             string  `json:"usuario"`
	Local            bool    `json:"es_local"`
	ErrorCode        *string `json:"error_code"`
	ErrorDescription *string `json:"error_description"`
	CreatedAt        string  `json:"created_at"`
}

// ToQueryAuditResponse converts a domain audit entry to the API representation
func ToQueryAuditResponse(q *affiliate.QueryAudit) *QueryAuditResponse {
	return &QueryAuditResponse{
		ID:               q.ID.String(),
		DocumentNumber:   q.DocumentNumber,
		User:             q.User,
		Local:            q.Local,
		ErrorCode:        q.ErrorCode,
		ErrorDescription: q.ErrorDescription,
		CreatedAt:        q.CreatedAt.Format(time.RFC3339),
	}
}
