package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mehdighelich1379/Heart-Disease/internal/domain/model"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/valueobject"
	pgpkg "github.com/mehdighelich1379/Heart-Disease/pkg/postgres"
)

const selectAssessment = `
	SELECT id, tenant_id, subject_ref,
		age, sex, cp, trestbps, chol, fbs, restecg, thalach, exang, oldpeak, slope, ca, thal,
		probability, model_name,
		banner_policy, banner_tier, banner_message,
		summary_tier, summary_message, high_risk_combo,
		version, created_at
	FROM risk_assessments
`

// AssessmentRepository implements port.AssessmentRepository using PostgreSQL.
type AssessmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssessmentRepository creates a new PostgreSQL-backed assessment repository.
func NewAssessmentRepository(pool *pgxpool.Pool) *AssessmentRepository {
	return &AssessmentRepository{pool: pool}
}

// Save persists an assessment and its findings in one transaction.
func (r *AssessmentRepository) Save(ctx context.Context, assessment *model.RiskAssessment) error {
	s := assessment.State()
	rec := s.Record
	exp := s.Explanation

	return pgpkg.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO risk_assessments (
				id, tenant_id, subject_ref,
				age, sex, cp, trestbps, chol, fbs, restecg, thalach, exang, oldpeak, slope, ca, thal,
				probability, model_name,
				banner_policy, banner_tier, banner_message,
				summary_tier, summary_message, high_risk_combo,
				version, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
				$17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
		`,
			s.ID, s.TenantID, s.SubjectRef,
			rec.Age, rec.Sex, rec.CP, rec.Trestbps, rec.Chol, rec.FBS, rec.RestECG, rec.Thalach,
			rec.Exang, toNumeric(rec.Oldpeak), rec.Slope, rec.CA, rec.Thal,
			toNumeric(s.Probability), s.ModelName,
			exp.Policy.String(), exp.BannerTier.String(), exp.BannerMessage,
			exp.SummaryTier.String(), exp.SummaryMessage, exp.HighRiskCombo,
			s.Version, s.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save assessment: %w", err)
		}

		batch := &pgx.Batch{}
		for i, f := range exp.Findings {
			batch.Queue(
				`INSERT INTO assessment_findings (assessment_id, position, rule_id, polarity, message)
				 VALUES ($1, $2, $3, $4, $5)`,
				s.ID, i, f.RuleID, f.Polarity.String(), f.Message,
			)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to save findings: %w", err)
		}
		return nil
	})
}

// FindByID retrieves an assessment by its unique identifier.
func (r *AssessmentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.RiskAssessment, error) {
	state, err := scanState(r.pool.QueryRow(ctx, selectAssessment+` WHERE tenant_id = $1 AND id = $2`, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrAssessmentNotFound
	}
	if err != nil {
		return nil, err
	}

	findings, err := loadFindings(ctx, r.pool, []uuid.UUID{state.ID})
	if err != nil {
		return nil, err
	}
	state.Explanation.Findings = findings[state.ID]
	return model.Reconstruct(state), nil
}

// ListBySubject retrieves a page of assessments, newest first.
func (r *AssessmentRepository) ListBySubject(ctx context.Context, tenantID uuid.UUID, subjectRef string, limit, offset int) ([]*model.RiskAssessment, error) {
	rows, err := r.pool.Query(ctx, selectAssessment+`
		WHERE tenant_id = $1 AND ($2::text = '' OR subject_ref = $2)
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4
	`, tenantID, subjectRef, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}

	// Rows must be drained before the findings query reuses the pool.
	states, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.RiskAssessmentState, error) {
		return scanState(row)
	})
	if err != nil {
		return nil, err
	}
	if len(states) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(states))
	for i, s := range states {
		ids[i] = s.ID
	}
	findings, err := loadFindings(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*model.RiskAssessment, 0, len(states))
	for _, s := range states {
		s.Explanation.Findings = findings[s.ID]
		out = append(out, model.Reconstruct(s))
	}
	return out, nil
}

func scanState(row pgx.Row) (model.RiskAssessmentState, error) {
	var (
		s                    model.RiskAssessmentState
		oldpeak, probability decimal.Decimal
		policy, banner, summ string
		createdAt            time.Time
	)
	rec := &s.Record
	exp := &s.Explanation

	err := row.Scan(
		&s.ID, &s.TenantID, &s.SubjectRef,
		&rec.Age, &rec.Sex, &rec.CP, &rec.Trestbps, &rec.Chol, &rec.FBS, &rec.RestECG, &rec.Thalach,
		&rec.Exang, &oldpeak, &rec.Slope, &rec.CA, &rec.Thal,
		&probability, &s.ModelName,
		&policy, &banner, &exp.BannerMessage,
		&summ, &exp.SummaryMessage, &exp.HighRiskCombo,
		&s.Version, &createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s, err
		}
		return s, fmt.Errorf("failed to scan assessment: %w", err)
	}

	rec.Oldpeak = fromNumeric(oldpeak)
	s.Probability = fromNumeric(probability)
	s.CreatedAt = createdAt.UTC()

	if exp.Policy, err = valueobject.BannerPolicyFromString(policy); err != nil {
		return s, fmt.Errorf("failed to parse banner policy: %w", err)
	}
	if exp.BannerTier, err = valueobject.RiskTierFromString(banner); err != nil {
		return s, fmt.Errorf("failed to parse banner tier: %w", err)
	}
	if exp.SummaryTier, err = valueobject.RiskTierFromString(summ); err != nil {
		return s, fmt.Errorf("failed to parse summary tier: %w", err)
	}
	return s, nil
}

// toNumeric renders f with the fewest digits that parse back to f, so an
// unscaled NUMERIC column holds the exact value the classifier saw.
func toNumeric(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func fromNumeric(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func loadFindings(ctx context.Context, q pgpkg.Querier, ids []uuid.UUID) (map[uuid.UUID][]model.Finding, error) {
	rows, err := q.Query(ctx, `
		SELECT assessment_id, rule_id, polarity, message
		FROM assessment_findings
		WHERE assessment_id = ANY($1)
		ORDER BY assessment_id, position
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]model.Finding, len(ids))
	for rows.Next() {
		var (
			id       uuid.UUID
			f        model.Finding
			polarity string
		)
		if err := rows.Scan(&id, &f.RuleID, &polarity, &f.Message); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		if f.Polarity, err = valueobject.PolarityFromString(polarity); err != nil {
			return nil, fmt.Errorf("failed to parse polarity: %w", err)
		}
		out[id] = append(out[id], f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read findings: %w", err)
	}
	return out, nil
}
