package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	affiliateapp "github.com/sisms/backend/internal/application/affiliate"
	"github.com/sisms/backend/internal/domain/affiliate"
	"github.com/sisms/backend/internal/domain/shared"
	"github.com/sisms/backend/internal/infrastructure/persistence"
)

func strPtr(s string) *string { return &s }

// TestAffiliateRepository_Integration tests the AffiliateRepository against a real PostgreSQL database
func TestAffiliateRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewAffiliateRepository(testDB.DB)
	ctx := context.Background()

	t.Run("Upsert creates record on first sight", func(t *testing.T) {
		payload := &affiliate.Payload{
			ResultID:        1,
			ResultMessage:   "REGISTRO ENCONTRADO",
			DocumentType:    strPtr("1"),
			DocumentNumber:  strPtr("46118717"),
			PaternalSurname: strPtr("QUISPE"),
			MaternalSurname: strPtr("MAMANI"),
			GivenNames:      strPtr("MARIA ELENA"),
			Status:          strPtr("ACTIVO"),
			Regime:          strPtr("SUBSIDIADO"),
		}

		saved, err := repo.Upsert(ctx, payload)
		require.NoError(t, err)
		assert.NotEqual(t, saved.ID.String(), "00000000-0000-0000-0000-000000000000")

		found, err := repo.FindByDocument(ctx, "46118717")
		require.NoError(t, err)
		assert.Equal(t, saved.ID, found.ID)
		assert.Equal(t, 1, found.ResultID)
		assert.Equal(t, "QUISPE", found.PaternalSurname)
		assert.Equal(t, "MARIA ELENA", found.GivenNames)
		assert.Equal(t, "ACTIVO", found.Status)
	})

	t.Run("Upsert merges without clearing absent fields", func(t *testing.T) {
		full := &affiliate.Payload{
			ResultID:       1,
			DocumentNumber: strPtr("70234561"),
			GivenNames:     strPtr("JORGE LUIS"),
			FacilityCode:   strPtr("00004389"),
			FacilityName:   strPtr("C.S. SAN JUAN"),
			Status:         strPtr("ACTIVO"),
		}
		_, err := repo.Upsert(ctx, full)
		require.NoError(t, err)

		// A later response carries only a subset of fields.
		sparse := &affiliate.Payload{
			ResultID:       1,
			DocumentNumber: strPtr("70234561"),
			Status:         strPtr("SUSPENDIDO"),
		}
		merged, err := repo.Upsert(ctx, sparse)
		require.NoError(t, err)

		assert.Equal(t, "SUSPENDIDO", merged.Status)
		assert.Equal(t, "JORGE LUIS", merged.GivenNames)
		assert.Equal(t, "00004389", merged.FacilityCode)
		assert.Equal(t, "C.S. SAN JUAN", merged.FacilityName)

		found, err := repo.FindByDocument(ctx, "70234561")
		require.NoError(t, err)
		assert.Equal(t, "SUSPENDIDO", found.Status)
		assert.Equal(t, "JORGE LUIS", found.GivenNames)
	})

	t.Run("Upsert keeps a single row per document", func(t *testing.T) {
		payload := &affiliate.Payload{
			ResultID:       1,
			DocumentNumber: strPtr("41552098"),
			GivenNames:     strPtr("ROSA"),
		}
		first, err := repo.Upsert(ctx, payload)
		require.NoError(t, err)

		second, err := repo.Upsert(ctx, payload)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		var count int64
		err = testDB.DB.Table("affiliates").Where("document_number = ?", "41552098").Count(&count).Error
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("FindByDocument returns not found for unknown document", func(t *testing.T) {
		_, err := repo.FindByDocument(ctx, "00000000")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

// TestGormTransactionScope_Integration verifies that the unit of work commits
// and rolls back repository writes together.
func TestGormTransactionScope_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	ctx := context.Background()
	lima := limaLocation(t)
	scope := persistence.NewGormTransactionScope(testDB.DB, lima)

	request := affiliate.LookupRequest{
		Option:         1,
		DocumentType:   "1",
		DocumentNumber: "46118717",
		User:           "svcuser",
	}

	t.Run("commits affiliate and audit together", func(t *testing.T) {
		err := scope.Execute(ctx, func(repos affiliateapp.TransactionalRepositories) error {
			payload := &affiliate.Payload{
				ResultID:       1,
				DocumentNumber: strPtr("46118717"),
				GivenNames:     strPtr("MARIA ELENA"),
			}
			if _, err := repos.AffiliateRepo().Upsert(ctx, payload); err != nil {
				return err
			}
			return repos.AuditRepo().Record(ctx, request, affiliate.RecordOptions{Local: false})
		})
		require.NoError(t, err)

		repo := persistence.NewAffiliateRepository(testDB.DB)
		_, err = repo.FindByDocument(ctx, "46118717")
		require.NoError(t, err)

		audits := persistence.NewQueryAuditRepository(testDB.DB, lima)
		entries, err := audits.FindByDocument(ctx, "46118717", 10)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("rolls back both writes on error", func(t *testing.T) {
		boom := errors.New("registry unreachable")
		failing := request
		failing.DocumentNumber = "99887766"

		err := scope.Execute(ctx, func(repos affiliateapp.TransactionalRepositories) error {
			payload := &affiliate.Payload{
				ResultID:       1,
				DocumentNumber: strPtr("99887766"),
			}
			if _, err := repos.AffiliateRepo().Upsert(ctx, payload); err != nil {
				return err
			}
			if err := repos.AuditRepo().Record(ctx, failing, affiliate.RecordOptions{Local: false}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		repo := persistence.NewAffiliateRepository(testDB.DB)
		_, err = repo.FindByDocument(ctx, "99887766")
		assert.ErrorIs(t, err, shared.ErrNotFound)

		audits := persistence.NewQueryAuditRepository(testDB.DB, lima)
		entries, err := audits.FindByDocument(ctx, "99887766", 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
