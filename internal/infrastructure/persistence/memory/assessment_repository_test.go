package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehdighelich1379/Heart-Disease/internal/domain/model"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/service"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/valueobject"
	"github.com/mehdighelich1379/Heart-Disease/internal/infrastructure/persistence/memory"
	"github.com/mehdighelich1379/Heart-Disease/pkg/testutil"
)

func newAssessment(t *testing.T, tenantID uuid.UUID, subjectRef string, p float64) *model.RiskAssessment {
	t.Helper()
	exp, err := service.NewClassifier(valueobject.BannerPolicyTernary).Classify(model.SamplePatientRecord(), p)
	require.NoError(t, err)
	a, err := model.NewRiskAssessment(tenantID, subjectRef, model.SamplePatientRecord(), p, "stub", exp)
	require.NoError(t, err)
	return a
}

func TestAssessmentRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAssessmentRepository()
	a := newAssessment(t, testutil.TestTenantID, "mrn-1", 0.7)

	require.NoError(t, repo.Save(ctx, a))

	got, err := repo.FindByID(ctx, testutil.TestTenantID, a.ID())
	require.NoError(t, err)
	assert.Equal(t, a.State(), got.State())

	_, err = repo.FindByID(ctx, testutil.OtherTenant, a.ID())
	assert.ErrorIs(t, err, model.ErrAssessmentNotFound)

	_, err = repo.FindByID(ctx, testutil.TestTenantID, uuid.New())
	assert.ErrorIs(t, err, model.ErrAssessmentNotFound)
}

func TestAssessmentRepository_ListBySubject(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAssessmentRepository()

	for _, p := range []float64{0.1, 0.2, 0.3} {
		require.NoError(t, repo.Save(ctx, newAssessment(t, testutil.TestTenantID, "mrn-2", p)))
	}
	require.NoError(t, repo.Save(ctx, newAssessment(t, testutil.TestTenantID, "mrn-3", 0.4)))
	require.NoError(t, repo.Save(ctx, newAssessment(t, testutil.OtherTenant, "mrn-2", 0.5)))

	all, err := repo.ListBySubject(ctx, testutil.TestTenantID, "mrn-2", 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt().After(all[i-1].CreatedAt()), "newest first")
	}

	page, err := repo.ListBySubject(ctx, testutil.TestTenantID, "mrn-2", 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	empty, err := repo.ListBySubject(ctx, testutil.TestTenantID, "mrn-2", 2, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)

	tenantWide, err := repo.ListBySubject(ctx, testutil.TestTenantID, "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, tenantWide, 4)
	assert.Equal(t, 5, repo.Len())
}

func TestAssessmentRepository_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAssessmentRepository()

	assessments := make([]*model.RiskAssessment, 50)
	for i := range assessments {
		assessments[i] = newAssessment(t, testutil.TestTenantID, "mrn", 0.5)
	}

	var wg sync.WaitGroup
	for _, a := range assessments {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Save(ctx, a))
		}()
		go func() {
			defer wg.Done()
			_, err := repo.ListBySubject(ctx, testutil.TestTenantID, "mrn", 10, 0)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, repo.Len())
}
