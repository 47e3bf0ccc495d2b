// Package cli renders use case results for the terminal.
package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Emmyme/hids-cli/internal/application/dto"
)

const timestampLayout = "2006-01-02 15:04:05"

// Renderer writes human-readable reports to w. Write errors are sticky and
// reported by Err.
type Renderer struct {
	w   io.Writer
	err error
}

// NewRenderer creates a renderer writing to w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// Err returns the first write error, if any.
func (r *Renderer) Err() error {
	return r.err
}

func (r *Renderer) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

// Verdict prints one analysis. index is 1-based.
func (r *Renderer) Verdict(index int, v dto.VerdictResponse) {
	r.printf("\nAnalysis for Record %d:\n", index)
	r.printf("   Session ID: %s\n", v.SessionID)
	r.printf("   Attack Type: %s\n", v.AttackType)
	r.printf("   Confidence: %s\n", v.Confidence)
	r.printf("   Risk Score: %d/100\n", v.RiskScore)
	r.printf("   Timestamp: %s\n", v.AnalyzedAt.Local().Format(timestampLayout))

	if len(v.Indicators) > 0 {
		r.printf("   Threat Indicators:\n")
		for _, indicator := range v.Indicators {
			r.printf("      - %s\n", indicator)
		}
	}

	if v.Prediction == 1 {
		r.printf("   SECURITY THREAT DETECTED!\n")
	} else {
		r.printf("   No security threat detected\n")
	}
	r.printf("   Confidence: %.2f%%\n", v.ModelConfidence*100)
}

// Analysis prints every verdict followed by skipped records and a summary.
func (r *Renderer) Analysis(resp dto.AnalyzeRecordsResponse) {
	for i, v := range resp.Verdicts {
		r.Verdict(i+1, v)
	}
	for _, f := range resp.Failures {
		r.printf("\nSkipped record %d (%s): %s\n", f.Index, f.SessionID, f.Error)
	}

	threats := 0
	for _, v := range resp.Verdicts {
		if v.Prediction == 1 {
			threats++
		}
	}
	r.printf("\nSummary: %d threats detected out of %d records", threats, len(resp.Verdicts))
	if len(resp.Failures) > 0 {
		r.printf(", %d skipped", len(resp.Failures))
	}
	r.printf("\n")
}

// TrainReport prints accuracy, the classification report and the top features.
func (r *Renderer) TrainReport(resp dto.TrainModelResponse) {
	r.printf("Model Accuracy: %.4f\n", resp.Accuracy)
	r.printf("Train rows: %d, test rows: %d\n", resp.TrainRows, resp.TestRows)

	r.printf("\nClassification Report:\n")
	r.table(func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "\tprecision\trecall\tf1-score\tsupport\t")
		for _, c := range resp.Classes {
			writeMetrics(tw, c)
		}
		fmt.Fprintf(tw, "accuracy\t\t\t%.2f\t%d\t\n", resp.Accuracy, resp.TestRows)
		writeMetrics(tw, resp.MacroAvg)
		writeMetrics(tw, resp.WeightedAvg)
	})

	if len(resp.TopFeatures) > 0 {
		r.printf("\nTop Feature Importances:\n")
		r.table(func(tw *tabwriter.Writer) {
			for i, f := range resp.TopFeatures {
				fmt.Fprintf(tw, "%d.\t%s\t%.4f\t\n", i+1, f.Name, f.Importance)
			}
		})
	}

	r.printf("\nModel saved to: %s (artifact %s)\n", resp.ModelPath, resp.ArtifactID)
}

func writeMetrics(tw io.Writer, c dto.ClassMetrics) {
	fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%d\t\n", c.Label, c.Precision, c.Recall, c.F1, c.Support)
}

// ModelInfo prints whether the artifact exists and its metadata.
func (r *Renderer) ModelInfo(info dto.ModelInfoResponse) {
	if !info.Exists {
		r.printf("Pre-trained model not found\n")
		r.printf("Expected location: %s\n", info.ModelPath)
		r.printf("Run 'hids train' to create it.\n")
		return
	}

	r.printf("Pre-trained model found\n")
	r.printf("Model location: %s\n", info.ModelPath)
	r.printf("Artifact ID: %s\n", info.ArtifactID)
	r.printf("Format version: %d\n", info.FormatVersion)
	r.printf("Trained at: %s\n", info.TrainedAt.Format(time.RFC3339))
	if info.TrainRows > 0 {
		r.printf("Training rows: %d, held-out rows: %d, accuracy: %.4f\n", info.TrainRows, info.TestRows, info.Accuracy)
	}
	r.printf("Features: %s\n", strings.Join(info.FeatureNames, ", "))
	r.printf("Ready for security threat detection!\n")
}

// Rules prints the attack rules in evaluation order.
func (r *Renderer) Rules(rules []dto.RuleResponse) {
	r.table(func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "#\tATTACK TYPE\tCONFIDENCE\tCONDITION\t")
		for _, rule := range rules {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n", rule.Priority, rule.AttackType, rule.Confidence, rule.Description)
		}
	})
}

// Generated prints the outcome of a dataset generation.
func (r *Renderer) Generated(resp dto.GenerateDatasetResponse) {
	r.printf("Generated %d records (%d labelled as attacks) to %s\n", resp.Rows, resp.Threats, resp.Destination)
}

func (r *Renderer) table(fill func(tw *tabwriter.Writer)) {
	if r.err != nil {
		return
	}
	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	fill(tw)
	r.err = tw.Flush()
}
