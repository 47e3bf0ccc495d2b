package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Emmyme/hids-cli/internal/application/dto"
	"github.com/Emmyme/hids-cli/internal/application/usecase"
	"github.com/Emmyme/hids-cli/internal/domain/model"
	"github.com/Emmyme/hids-cli/internal/domain/port"
	"github.com/Emmyme/hids-cli/internal/domain/service"
	"github.com/Emmyme/hids-cli/internal/infrastructure/artifact"
	"github.com/Emmyme/hids-cli/internal/infrastructure/dataset"
	"github.com/Emmyme/hids-cli/internal/infrastructure/forest"
	"github.com/Emmyme/hids-cli/internal/infrastructure/stream"
	"github.com/Emmyme/hids-cli/internal/infrastructure/synthetic"
	"github.com/Emmyme/hids-cli/pkg/auth"
	pkgkafka "github.com/Emmyme/hids-cli/pkg/kafka"
	"github.com/Emmyme/hids-cli/pkg/tlsutil"
)

func (a *app) newClassifier(trees int, seed uint64) *service.ThreatClassifier {
	trainer := forest.NewTrainer(forest.Config{
		Trees:    trees,
		MaxDepth: a.cfg.MaxDepth,
		Seed:     seed,
		Workers:  a.cfg.Workers,
	}, a.logger)
	return service.NewThreatClassifier(trainer, artifact.NewFileStore(a.logger), a.logger)
}

// loadAnalyzer restores the saved model and wraps it in the batch use case.
func (a *app) loadAnalyzer(ctx context.Context, modelPath string) (*usecase.AnalyzeRecords, error) {
	classifier := a.newClassifier(a.cfg.Trees, a.cfg.Seed)
	if err := classifier.Load(ctx, modelPath); err != nil {
		if errors.Is(err, model.ErrArtifactNotFound) {
			return nil, fmt.Errorf("%w (run 'hids train' first)", err)
		}
		return nil, fmt.Errorf("failed to load model: %w", err)
	}
	return usecase.NewAnalyzeRecords(service.NewThreatAnalyzer(classifier), a.logger,
		usecase.WithWorkers(a.cfg.Workers),
	), nil
}

func runTrain(ctx context.Context, a *app, args []string) error {
	fs := a.newFlagSet("train")
	datasetPath := fs.String("dataset", a.cfg.DatasetPath, "labelled CSV dataset")
	modelPath := fs.String("model-path", a.cfg.ModelPath, "where to save the trained model")
	testSize := fs.Float64("test-size", a.cfg.TestSize, "held-out fraction of the dataset")
	seed := fs.Uint64("seed", a.cfg.Seed, "random seed for the split and the forest")
	trees := fs.Int("trees", a.cfg.Trees, "number of trees in the forest")
	top := fs.Int("top", 10, "feature importances to print, 0 for all")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, "Training security threat detection model...")

	uc := usecase.NewTrainModel(
		service.NewFeatureEngineer(service.NewRiskScorer()),
		a.newClassifier(*trees, *seed),
		dataset.Split,
		a.logger,
	)
	resp, err := uc.Execute(ctx, dataset.NewCSVSource(*datasetPath, a.logger, dataset.RequireLabel()), dto.TrainModelRequest{
		ModelPath:   *modelPath,
		TestSize:    *testSize,
		Seed:        *seed,
		TopFeatures: *top,
	})
	if err != nil {
		return fmt.Errorf("error training model: %w", err)
	}

	a.out.TrainReport(resp)
	return nil
}

func runPredict(ctx context.Context, a *app, args []string) error {
	fs := a.newFlagSet("predict")
	inputFile := fs.String("input-file", "", "CSV file of records to analyze (required)")
	modelPath := fs.String("model-path", a.cfg.ModelPath, "trained model to use")
	skipInvalid := fs.Bool("skip-invalid", false, "report invalid records and continue instead of aborting")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if *inputFile == "" {
		fmt.Fprintln(a.stderr, "--input-file is required")
		fs.Usage()
		return errUsage
	}

	analyze, err := a.loadAnalyzer(ctx, *modelPath)
	if err != nil {
		return err
	}

	var opts []dataset.Option
	if *skipInvalid {
		opts = append(opts, dataset.SkipInvalid())
	}
	records, err := dataset.NewCSVSource(*inputFile, a.logger, opts...).Records(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, "Analyzing security threats...")
	resp, err := analyze.Execute(ctx, dto.AnalyzeRecordsRequest{Records: records, SkipInvalid: *skipInvalid})
	if err != nil {
		return fmt.Errorf("error during prediction: %w", err)
	}
	a.out.Analysis(resp)
	return nil
}

// demoRecords are three sample sessions with different threat levels.
func demoRecords() []model.Record {
	return []model.Record{
		{
			SessionID: "DEMO_001", NetworkPacketSize: 800, ProtocolType: "UDP", LoginAttempts: 8,
			SessionDuration: 50, EncryptionUsed: "None", IPReputationScore: 0.1, FailedLogins: 5,
			BrowserType: "Chrome", UnusualTimeAccess: 1,
		},
		{
			SessionID: "DEMO_002", NetworkPacketSize: 300, ProtocolType: "TCP", LoginAttempts: 2,
			SessionDuration: 500, EncryptionUsed: "AES", IPReputationScore: 0.8, FailedLogins: 0,
			BrowserType: "Chrome", UnusualTimeAccess: 0,
		},
		{
			SessionID: "DEMO_003", NetworkPacketSize: 1200, ProtocolType: "ICMP", LoginAttempts: 6,
			SessionDuration: 2500, EncryptionUsed: "DES", IPReputationScore: 0.2, FailedLogins: 4,
			BrowserType: "Firefox", UnusualTimeAccess: 1,
		},
	}
}

func runDemo(ctx context.Context, a *app, args []string) error {
	fs := a.newFlagSet("demo")
	modelPath := fs.String("model-path", a.cfg.ModelPath, "trained model to use")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	analyze, err := a.loadAnalyzer(ctx, *modelPath)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, "Running Security Threat Detection Demo...")
	fmt.Fprintln(a.stdout, "This will analyze 3 sample records with different threat levels.")

	resp, err := analyze.Execute(ctx, dto.AnalyzeRecordsRequest{Records: demoRecords()})
	if err != nil {
		return fmt.Errorf("error during demo: %w", err)
	}
	a.out.Analysis(resp)
	return nil
}

func runInfo(ctx context.Context, a *app, args []string) error {
	fs := a.newFlagSet("info")
	modelPath := fs.String("model-path", a.cfg.ModelPath, "trained model to describe")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	info, err := usecase.NewModelInfo(artifact.NewFileStore(a.logger)).Execute(ctx, *modelPath)
	if err != nil {
		return err
	}
	a.out.ModelInfo(info)
	return nil
}

func runRules(_ context.Context, a *app, args []string) error {
	if err := a.parse(a.newFlagSet("rules"), args); err != nil {
		return err
	}
	a.out.Rules(usecase.ListRules())
	return nil
}

func runGenerate(ctx context.Context, a *app, args []string) error {
	fs := a.newFlagSet("generate")
	rows := fs.Int("rows", 1000, "records to generate")
	output := fs.String("output", a.cfg.DatasetPath, "CSV file to write")
	seed := fs.Uint64("seed", a.cfg.Seed, "random seed")
	ratio := fs.Float64("attack-ratio", synthetic.DefaultAttackRatio, "fraction of attack sessions")
	toKafka := fs.Bool("kafka", false, "publish to KAFKA_RECORDS_TOPIC instead of writing a CSV")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	generator, err := synthetic.NewGenerator(*seed, synthetic.WithAttackRatio(*ratio))
	if err != nil {
		return err
	}

	var sink port.RecordSink
	if *toKafka {
		if len(a.cfg.KafkaBrokers()) == 0 {
			return fmt.Errorf("--kafka needs KAFKA_BROKER to be set")
		}
		producer, err := pkgkafka.NewProducer(a.cfg.Kafka())
		if err != nil {
			return err
		}
		defer producer.Close()
		sink = stream.NewPublisher(producer, a.cfg.KafkaRecordsTopic, a.logger)
	} else {
		sink = dataset.NewCSVSink(*output)
	}

	resp, err := usecase.NewGenerateDataset(generator, a.logger).Execute(ctx, sink, dto.GenerateDatasetRequest{Rows: *rows})
	if err != nil {
		return err
	}
	a.out.Generated(resp)
	return nil
}

var knownRoles = []string{auth.RoleSensor, auth.RoleAnalyst, auth.RoleAdmin}

func runToken(_ context.Context, a *app, args []string) error {
	fs := a.newFlagSet("token")
	subject := fs.String("subject", "", "token subject, e.g. a sensor name (required)")
	roles := fs.String("roles", auth.RoleSensor, "comma-separated roles: sensor, analyst, admin")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := a.parse(fs, args); err != nil {
		return err
	}
	if !a.cfg.AuthEnabled() {
		return fmt.Errorf("neither JWT_SECRET nor JWT_PRIVATE_KEY_FILE is set")
	}

	var granted []string
	for _, r := range strings.Split(*roles, ",") {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if !slices.Contains(knownRoles, r) {
			return fmt.Errorf("unknown role %q, want one of %s", r, strings.Join(knownRoles, ", "))
		}
		granted = append(granted, r)
	}

	jwtConfig, err := a.cfg.JWTConfig(*ttl)
	if err != nil {
		return err
	}
	svc, err := auth.NewJWTService(jwtConfig)
	if err != nil {
		return err
	}
	token, err := svc.GenerateToken(*subject, granted)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, token)
	return nil
}

func runKeys(_ context.Context, a *app, args []string) error {
	fs := a.newFlagSet("keys")
	outDir := fs.String("out", "certs", "directory for jwt-private.pem and jwt-public.pem")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	privPEM, pubPEM, err := auth.GenerateKeyPair()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", *outDir, err)
	}
	privPath := filepath.Join(*outDir, "jwt-private.pem")
	pubPath := filepath.Join(*outDir, "jwt-public.pem")
	if err := os.WriteFile(privPath, privPEM, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", privPath, err)
	}
	if err := os.WriteFile(pubPath, pubPEM, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", pubPath, err)
	}
	fmt.Fprintf(a.stdout, "Wrote RSA signing keys to %s\n", *outDir)
	fmt.Fprintf(a.stdout, "Mint tokens with JWT_PRIVATE_KEY_FILE=%s and start hidsd with JWT_PUBLIC_KEY_FILE=%s\n", privPath, pubPath)
	return nil
}

func runCerts(_ context.Context, a *app, args []string) error {
	fs := a.newFlagSet("certs")
	outDir := fs.String("out", "certs", "directory for ca.pem, server.pem, sensor.pem and their keys")
	hosts := fs.String("hosts", "localhost,127.0.0.1", "comma-separated DNS names and IPs for the server certificate")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	var names []string
	for _, h := range strings.Split(*hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			names = append(names, h)
		}
	}
	if err := tlsutil.GenerateDevPKI(*outDir, names); err != nil {
		return err
	}
	path := func(name string) string { return filepath.Join(*outDir, name) }
	fmt.Fprintf(a.stdout, "Wrote development certificates to %s\n", *outDir)
	fmt.Fprintf(a.stdout, "Start hidsd with GRPC_TLS_CERT_FILE=%s GRPC_TLS_KEY_FILE=%s\n",
		path(tlsutil.ServerFile), path(tlsutil.ServerKeyFile))
	fmt.Fprintf(a.stdout, "Add GRPC_TLS_CLIENT_CA_FILE=%s to require sensor certificates (%s, %s)\n",
		path(tlsutil.CAFile), path(tlsutil.SensorFile), path(tlsutil.SensorKeyFile))
	return nil
}
