package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/Emmyme/hids-cli/internal/domain/model"
	"github.com/Emmyme/hids-cli/pkg/events"
)

// RecordSource produces a batch of validated records from some storage.
type RecordSource interface {
	Records(ctx context.Context) ([]model.Record, error)
}

// Estimator fits a binary classifier on a scaled feature matrix.
type Estimator interface {
	Fit(ctx context.Context, X [][]float64, y []int) (model.Predictor, error)
}

// ArtifactStore persists and restores trained model bundles as one unit.
type ArtifactStore interface {
	// Save writes the artifact to path, replacing any previous bundle.
	Save(ctx context.Context, path string, artifact *model.Artifact) error

	// Load restores a complete artifact or returns an error; it never
	// returns a partially populated bundle.
	Load(ctx context.Context, path string) (*model.Artifact, error)

	// Exists reports whether a bundle is present at path.
	Exists(ctx context.Context, path string) (bool, error)
}

// VerdictRepository defines the persistence port for threat verdicts.
type VerdictRepository interface {
	// Save persists verdicts as one unit: either all are stored or none are.
	Save(ctx context.Context, verdicts ...*model.ThreatVerdict) error

	// FindByID retrieves a verdict by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*model.ThreatVerdict, error)

	// FindBySessionID retrieves every verdict recorded for a session, newest first.
	FindBySessionID(ctx context.Context, sessionID string) ([]*model.ThreatVerdict, error)

	// ListRecent retrieves the most recent verdicts, newest first.
	ListRecent(ctx context.Context, limit int) ([]*model.ThreatVerdict, error)
}

// AnalysisRecorder receives per-verdict observations for metrics.
type AnalysisRecorder interface {
	RecordVerdict(ctx context.Context, verdict *model.ThreatVerdict)
	RecordFailure(ctx context.Context, err error)
}

// SplitFunc partitions n row indices into train and test sets.
type SplitFunc func(n int, testSize float64, seed uint64) (train, test []int, err error)

// RecordGenerator produces synthetic labelled records.
type RecordGenerator interface {
	Generate(ctx context.Context, n int) ([]model.Record, error)
}

// RecordSink receives a batch of records, e.g. a CSV file or a Kafka topic.
type RecordSink interface {
	Write(ctx context.Context, records []model.Record) error
	// Destination describes where records went, for reporting.
	Destination() string
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, evts ...events.DomainEvent) error
}
