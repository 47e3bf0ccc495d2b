package dataset_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emmyme/hids-cli/internal/domain/model"
	"github.com/Emmyme/hids-cli/internal/infrastructure/dataset"
)

func TestCSVSink_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "synthetic.csv")
	one, zero := 1, 0
	records := []model.Record{
		{SessionID: "SID_1", NetworkPacketSize: 800, ProtocolType: "UDP", LoginAttempts: 8, SessionDuration: 50,
			EncryptionUsed: "None", IPReputationScore: 0.1, FailedLogins: 5, BrowserType: "Chrome", UnusualTimeAccess: 1, AttackDetected: &one},
		{SessionID: "SID_2", NetworkPacketSize: 300, ProtocolType: "TCP", LoginAttempts: 2, SessionDuration: 500.25,
			EncryptionUsed: "AES", IPReputationScore: 0.8, BrowserType: "Firefox", AttackDetected: &zero},
	}

	sink := dataset.NewCSVSink(path)
	require.NoError(t, sink.Write(context.Background(), records))
	assert.Equal(t, path, sink.Destination())

	got, err := dataset.NewCSVSource(path, slog.New(slog.NewTextHandler(io.Discard, nil)), dataset.RequireLabel()).
		Records(context.Background())
	require.NoError(t, err)
	assert.Equal(t, records, got)
}
