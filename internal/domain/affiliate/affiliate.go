package affiliate

import (
	"github.com/sisms/backend/internal/domain/shared"
)

// Affiliate represents the persisted eligibility record for one insured
// person. There is at most one live record per document number; it is created
// on the first successful registry lookup and refreshed by every subsequent
// successful lookup.
type Affiliate struct {
	shared.BaseEntity
	ResultID            int
	ResultMessage       string
	DocumentType        string
	DocumentNumber      string
	PaternalSurname     string
	MaternalSurname     string
	GivenNames          string
	EnrollmentDate      string
	FacilityCode        string
	FacilityName        string
	FacilityUbigeo      string
	FacilityUbigeoName  string
	Regime              string
	CoverageType        string
	CoverageTypeName    string
	Contract            string
	ExpiryDate          string
	Status              string
	TableID             string
	RecordID            string
	Gender              string
	BirthDate           string
	UbigeoID            string
	Region              string
	FormatType          string
	ContractNumber      string
	CorrelationID       string
	PlanID              string
	PopulationGroupID   string
	ConfidentialMessage string
	ServerError         string
}

// Payload is the affiliate data returned by the remote registry. Optional
// fields are pointers so an absent field can be told apart from an empty one;
// only present fields participate in the upsert merge.
type Payload struct {
	ResultID            int
	ResultMessage       string
	DocumentType        *string
	DocumentNumber      *string
	PaternalSurname     *string
	MaternalSurname     *string
	GivenNames          *string
	EnrollmentDate      *string
	FacilityCode        *string
	FacilityName        *string
	FacilityUbigeo      *string
	FacilityUbigeoName  *string
	Regime              *string
	CoverageType        *string
	CoverageTypeName    *string
	Contract            *string
	ExpiryDate          *string
	Status              *string
	TableID             *string
	RecordID            *string
	Gender              *string
	BirthDate           *string
	UbigeoID            *string
	Region              *string
	FormatType          *string
	ContractNumber      *string
	CorrelationID       *string
	PlanID              *string
	PopulationGroupID   *string
	ConfidentialMessage *string
	ServerError         *string
}

// HasData reports whether the registry found a record. The registry signals
// "no data" with a zero result indicator.
func (p *Payload) HasData() bool {
	return p.ResultID != 0
}

// LookupDocument returns the document number carried by the payload, or the
// empty string when the registry omitted it.
func (p *Payload) LookupDocument() string {
	if p.DocumentNumber == nil {
		return ""
	}
	return *p.DocumentNumber
}

// NewFromPayload builds a new Affiliate from a registry payload.
func NewFromPayload(p *Payload) *Affiliate {
	a := &Affiliate{BaseEntity: shared.NewBaseEntity()}
	a.Apply(p)
	return a
}

// Apply merges a registry payload into the record. Only fields present in the
// payload overwrite stored values; absent fields keep their current value.
func (a *Affiliate) Apply(p *Payload) {
	a.ResultID = p.ResultID
	if p.ResultMessage != "" {
		a.ResultMessage = p.ResultMessage
	}
	setIfPresent(&a.DocumentType, p.DocumentType)
	setIfPresent(&a.DocumentNumber, p.DocumentNumber)
	setIfPresent(&a.PaternalSurname, p.PaternalSurname)
	setIfPresent(&a.MaternalSurname, p.MaternalSurname)
	setIfPresent(&a.GivenNames, p.GivenNames)
	setIfPresent(&a.EnrollmentDate, p.EnrollmentDate)
	setIfPresent(&a.FacilityCode, p.FacilityCode)
	setIfPresent(&a.FacilityName, p.FacilityName)
	setIfPresent(&a.FacilityUbigeo, p.FacilityUbigeo)
	setIfPresent(&a.FacilityUbigeoName, p.FacilityUbigeoName)
	setIfPresent(&a.Regime, p.Regime)
	setIfPresent(&a.CoverageType, p.CoverageType)
	setIfPresent(&a.CoverageTypeName, p.CoverageTypeName)
	setIfPresent(&a.Contract, p.Contract)
	setIfPresent(&a.ExpiryDate, p.ExpiryDate)
	setIfPresent(&a.Status, p.Status)
	setIfPresent(&a.TableID, p.TableID)
	setIfPresent(&a.RecordID, p.RecordID)
	setIfPresent(&a.Gender, p.Gender)
	setIfPresent(&a.BirthDate, p.BirthDate)
	setIfPresent(&a.UbigeoID, p.UbigeoID)
	setIfPresent(&a.Region, p.Region)
	setIfPresent(&a.FormatType, p.FormatType)
	setIfPresent(&a.ContractNumber, p.ContractNumber)
	setIfPresent(&a.CorrelationID, p.CorrelationID)
	setIfPresent(&a.PlanID, p.PlanID)
	setIfPresent(&a.PopulationGroupID, p.PopulationGroupID)
	setIfPresent(&a.ConfidentialMessage, p.ConfidentialMessage)
	setIfPresent(&a.ServerError, p.ServerError)
}

func setIfPresent(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
