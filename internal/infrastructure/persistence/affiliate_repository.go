package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sisms/backend/internal/domain/affiliate"
	"github.com/sisms/backend/internal/domain/shared"
)

// AffiliateModel is the GORM model for affiliate eligibility records
type AffiliateModel struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	ResultID            int       `gorm:"not null"`
	ResultMessage       string    `gorm:"type:varchar(255)"`
	DocumentType        string    `gorm:"type:varchar(5)"`
	DocumentNumber      string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	PaternalSurname     string    `gorm:"type:varchar(100)"`
	MaternalSurname     string    `gorm:"type:varchar(100)"`
	GivenNames          string    `gorm:"type:varchar(150)"`
	EnrollmentDate      string    `gorm:"type:varchar(20)"`
	FacilityCode        string    `gorm:"type:varchar(20)"`
	FacilityName        string    `gorm:"type:varchar(255)"`
	FacilityUbigeo      string    `gorm:"type:varchar(10)"`
	FacilityUbigeoName  string    `gorm:"type:varchar(255)"`
	Regime              string    `gorm:"type:varchar(50)"`
	CoverageType        string    `gorm:"type:varchar(10)"`
	CoverageTypeName    string    `gorm:"type:varchar(100)"`
	Contract            string    `gorm:"type:varchar(50)"`
	ExpiryDate          string    `gorm:"type:varchar(20)"`
	Status              string    `gorm:"type:varchar(50)"`
	TableID             string    `gorm:"type:varchar(20)"`
	RecordID            string    `gorm:"type:varchar(20)"`
	Gender              string    `gorm:"type:varchar(5)"`
	BirthDate           string    `gorm:"type:varchar(20)"`
	UbigeoID            string    `gorm:"type:varchar(10)"`
	Region              string    `gorm:"type:varchar(10)"`
	FormatType          string    `gorm:"type:varchar(10)"`
	ContractNumber      string    `gorm:"type:varchar(50)"`
	CorrelationID       string    `gorm:"type:varchar(50)"`
	PlanID              string    `gorm:"type:varchar(20)"`
	PopulationGroupID   string    `gorm:"type:varchar(20)"`
	ConfidentialMessage string    `gorm:"type:text"`
	ServerError         string    `gorm:"type:text"`
	CreatedAt           time.Time `gorm:"autoCreateTime"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for the model
func (AffiliateModel) TableName() string {
	return "affiliates"
}

// ToEntity converts the model to a domain entity
func (m *AffiliateModel) ToEntity() *affiliate.Affiliate {
	return &affiliate.Affiliate{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ResultID:            m.ResultID,
		ResultMessage:       m.ResultMessage,
		DocumentType:        m.DocumentType,
		DocumentNumber:      m.DocumentNumber,
		PaternalSurname:     m.PaternalSurname,
		MaternalSurname:     m.MaternalSurname,
		GivenNames:          m.GivenNames,
		EnrollmentDate:      m.EnrollmentDate,
		FacilityCode:        m.FacilityCode,
		FacilityName:        m.FacilityName,
		FacilityUbigeo:      m.FacilityUbigeo,
		FacilityUbigeoName:  m.FacilityUbigeoName,
		Regime:              m.Regime,
		CoverageType:        m.CoverageType,
		CoverageTypeName:    m.CoverageTypeName,
		Contract:            m.Contract,
		ExpiryDate:          m.ExpiryDate,
		Status:              m.Status,
		TableID:             m.TableID,
		RecordID:            m.RecordID,
		Gender:              m.Gender,
		BirthDate:           m.BirthDate,
		UbigeoID:            m.UbigeoID,
		Region:              m.Region,
		FormatType:          m.FormatType,
		ContractNumber:      m.ContractNumber,
		CorrelationID:       m.CorrelationID,
		PlanID:              m.PlanID,
		PopulationGroupID:   m.PopulationGroupID,
		ConfidentialMessage: m.ConfidentialMessage,
		ServerError:         m.ServerError,
	}
}

// AffiliateModelFromEntity creates a model from a domain entity
func AffiliateModelFromEntity(e *affiliate.Affiliate) *AffiliateModel {
	return &AffiliateModel{
		ID:                  e.ID,
		ResultID:            e.ResultID,
		ResultMessage:       e.ResultMessage,
		DocumentType:        e.DocumentType,
		DocumentNumber:      e.DocumentNumber,
		PaternalSurname:     e.PaternalSurname,
		MaternalSurname:     e.MaternalSurname,
		GivenNames:          e.GivenNames,
		EnrollmentDate:      e.EnrollmentDate,
		FacilityCode:        e.FacilityCode,
		FacilityName:        e.FacilityName,
		FacilityUbigeo:      e.FacilityUbigeo,
		FacilityUbigeoName:  e.FacilityUbigeoName,
		Regime:              e.Regime,
		CoverageType:        e.CoverageType,
		CoverageTypeName:    e.CoverageTypeName,
		Contract:            e.Contract,
		ExpiryDate:          e.ExpiryDate,
		Status:              e.Status,
		TableID:             e.TableID,
		RecordID:            e.RecordID,
		Gender:              e.Gender,
		BirthDate:           e.BirthDate,
		UbigeoID:            e.UbigeoID,
		Region:              e.Region,
		FormatType:          e.FormatType,
		ContractNumber:      e.ContractNumber,
		CorrelationID:       e.CorrelationID,
		PlanID:              e.PlanID,
		PopulationGroupID:   e.PopulationGroupID,
		ConfidentialMessage: e.ConfidentialMessage,
		ServerError:         e.ServerError,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}

// AffiliateRepository implements the affiliate.Repository interface
type AffiliateRepository struct {
	db *gorm.DB
}

// NewAffiliateRepository creates a new affiliate repository
func NewAffiliateRepository(db *gorm.DB) *AffiliateRepository {
	return &AffiliateRepository{db: db}
}

// FindByDocument retrieves the affiliate record for a document number
func (r *AffiliateRepository) FindByDocument(ctx context.Context, documentNumber string) (*affiliate.Affiliate, error) {
	var model AffiliateModel
	if err := r.db.WithContext(ctx).First(&model, "document_number = ?", documentNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// Upsert creates the record on first sight of a document number, or merges
// the payload into the existing record. Absent payload fields keep the stored
// value; the record is written back whole either way.
func (r *AffiliateRepository) Upsert(ctx context.Context, payload *affiliate.Payload) (*affiliate.Affiliate, error) {
	entity, err := r.FindByDocument(ctx, payload.LookupDocument())
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		entity = affiliate.NewFromPayload(payload)
		if err := r.db.WithContext(ctx).Create(AffiliateModelFromEntity(entity)).Error; err != nil {
			return nil, err
		}
		return entity, nil
	}

	entity.Apply(payload)
	entity.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).Save(AffiliateModelFromEntity(entity)).Error; err != nil {
		return nil, err
	}
	return entity, nil
}

// Ensure AffiliateRepository implements the domain interface
var _ affiliate.Repository = (*AffiliateRepository)(nil)
