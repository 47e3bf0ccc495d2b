package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Emmyme/hids-cli/internal/domain/model"
	"github.com/Emmyme/hids-cli/internal/domain/valueobject"
	pgpkg "github.com/Emmyme/hids-cli/pkg/postgres"
)

const selectVerdict = `
	SELECT id, session_id, attack_type, confidence, risk_score,
		prediction, probability, analyzed_at
	FROM threat_verdicts
`

// VerdictRepository implements port.VerdictRepository using PostgreSQL.
type VerdictRepository struct {
	pool *pgxpool.Pool
}

// NewVerdictRepository creates a new PostgreSQL-backed verdict repository.
func NewVerdictRepository(pool *pgxpool.Pool) *VerdictRepository {
	return &VerdictRepository{pool: pool}
}

// Save persists verdicts and their indicators in one transaction. A failure
// on any verdict rolls back the whole call.
func (r *VerdictRepository) Save(ctx context.Context, verdicts ...*model.ThreatVerdict) error {
	if len(verdicts) == 0 {
		return nil
	}
	return pgpkg.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		for _, v := range verdicts {
			if err := insertVerdict(ctx, tx, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertVerdict(ctx context.Context, tx pgx.Tx, v *model.ThreatVerdict) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO threat_verdicts (
			id, session_id, attack_type, confidence, risk_score,
			prediction, probability, threat_status, analyzed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`,
		v.ID(),
		v.SessionID(),
		v.AttackType().String(),
		v.Confidence().String(),
		v.RiskScore(),
		v.Prediction(),
		v.Probability(),
		v.ThreatStatus().String(),
		v.AnalyzedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save verdict %s: %w", v.ID(), err)
	}

	batch := &pgx.Batch{}
	for i, indicator := range v.Indicators() {
		batch.Queue(
			`INSERT INTO verdict_indicators (verdict_id, position, indicator) VALUES ($1, $2, $3)
			 ON CONFLICT DO NOTHING`,
			v.ID(), i, indicator,
		)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save indicators of verdict %s: %w", v.ID(), err)
	}
	return nil
}

// FindByID retrieves a verdict by its unique identifier.
func (r *VerdictRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ThreatVerdict, error) {
	v, err := scanVerdict(r.pool.QueryRow(ctx, selectVerdict+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrVerdictNotFound
		}
		return nil, err
	}
	indicators, err := r.loadIndicators(ctx, id)
	if err != nil {
		return nil, err
	}
	return withIndicators(v, indicators), nil
}

// FindBySessionID retrieves all verdicts for a session, newest first.
func (r *VerdictRepository) FindBySessionID(ctx context.Context, sessionID string) ([]*model.ThreatVerdict, error) {
	return r.query(ctx, selectVerdict+` WHERE session_id = $1 ORDER BY analyzed_at DESC`, sessionID)
}

// ListRecent retrieves the most recent verdicts, newest first.
func (r *VerdictRepository) ListRecent(ctx context.Context, limit int) ([]*model.ThreatVerdict, error) {
	return r.query(ctx, selectVerdict+` ORDER BY analyzed_at DESC LIMIT $1`, limit)
}

func (r *VerdictRepository) query(ctx context.Context, sql string, args ...any) ([]*model.ThreatVerdict, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query verdicts: %w", err)
	}
	defer rows.Close()

	var verdicts []*model.ThreatVerdict
	for rows.Next() {
		v, err := scanVerdict(rows)
		if err != nil {
			return nil, err
		}
		verdicts = append(verdicts, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate verdicts: %w", err)
	}

	// The cursor holds its connection until drained.
	rows.Close()
	for i, v := range verdicts {
		indicators, err := r.loadIndicators(ctx, v.ID())
		if err != nil {
			return nil, err
		}
		verdicts[i] = withIndicators(v, indicators)
	}
	return verdicts, nil
}

func scanVerdict(row pgx.Row) (*model.ThreatVerdict, error) {
	var (
		id            uuid.UUID
		sessionID     string
		attackTypeStr string
		confidenceStr string
		riskScore     int
		prediction    int
		probability   []float64
		analyzedAt    time.Time
	)

	err := row.Scan(&id, &sessionID, &attackTypeStr, &confidenceStr, &riskScore,
		&prediction, &probability, &analyzedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan verdict: %w", err)
	}

	attackType, err := valueobject.AttackTypeFromString(attackTypeStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse attack type: %w", err)
	}
	confidence, err := valueobject.ConfidenceFromString(confidenceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse confidence: %w", err)
	}

	return model.ReconstructVerdict(id, sessionID, attackType, confidence, riskScore,
		nil, prediction, probability, analyzedAt), nil
}

func (r *VerdictRepository) loadIndicators(ctx context.Context, verdictID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT indicator FROM verdict_indicators WHERE verdict_id = $1 ORDER BY position`, verdictID)
	if err != nil {
		return nil, fmt.Errorf("failed to load verdict indicators: %w", err)
	}
	indicators, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan verdict indicators: %w", err)
	}
	return indicators, nil
}

func withIndicators(v *model.ThreatVerdict, indicators []string) *model.ThreatVerdict {
	return model.ReconstructVerdict(v.ID(), v.SessionID(), v.AttackType(), v.Confidence(),
		v.RiskScore(), indicators, v.Prediction(), v.Probability(), v.AnalyzedAt())
}
