package dataset_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emmyme/hids-cli/internal/domain/model"
	"github.com/Emmyme/hids-cli/internal/infrastructure/dataset"
	"github.com/Emmyme/hids-cli/pkg/testutil"
)

const sample = `session_id,network_packet_size,protocol_type,login_attempts,session_duration,encryption_used,ip_reputation_score,failed_logins,browser_type,unusual_time_access,attack_detected
SID_00001,599,TCP,4,492.9832634,DES,0.606818080396889,1,Edge,0,1
SID_00002,472,TCP,3,1557.996461,DES,0.301568581,0,Firefox,0,0
SID_00003,629,TCP,3,75.04426166,,0.739164402,2,Chrome,0,1
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCSVSource_Records(t *testing.T) {
	src := dataset.NewCSVSource(writeFile(t, sample), discardLogger(), dataset.RequireLabel())

	records, err := src.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, "SID_00001", first.SessionID)
	assert.Equal(t, 599, first.NetworkPacketSize)
	assert.Equal(t, "TCP", first.ProtocolType)
	assert.InDelta(t, 492.9832634, first.SessionDuration, 1e-9)
	assert.Equal(t, "Edge", first.BrowserType)
	require.NotNil(t, first.AttackDetected)
	assert.Equal(t, 1, *first.AttackDetected)

	assert.Equal(t, model.EncryptionNone, records[2].EncryptionUsed)
}

func TestCSVSource_MissingColumns(t *testing.T) {
	content := "session_id,network_packet_size,protocol_type\nA,1,TCP\n"
	src := dataset.NewCSVSource(writeFile(t, content), discardLogger())

	_, err := src.Records(context.Background())
	var schemaErr *model.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Contains(t, schemaErr.Missing, model.ColumnLoginAttempts)
	assert.NotContains(t, schemaErr.Missing, model.ColumnAttackDetected)
}

func TestCSVSource_RequireLabel(t *testing.T) {
	content := "network_packet_size,protocol_type,login_attempts,session_duration,encryption_used,ip_reputation_score,failed_logins,browser_type,unusual_time_access\n800,UDP,8,50,None,0.1,5,Chrome,1\n"

	_, err := dataset.NewCSVSource(writeFile(t, content), discardLogger(), dataset.RequireLabel()).
		Records(context.Background())
	testutil.AssertErrorIs(t, err, model.ErrSchema, model.ColumnAttackDetected)

	records, err := dataset.NewCSVSource(writeFile(t, content), discardLogger()).Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ROW_1", records[0].SessionID)
	assert.Nil(t, records[0].AttackDetected)
}

func TestCSVSource_MalformedRows(t *testing.T) {
	content := sample + "SID_BAD,abc,TCP,1,1,AES,0.5,0,Chrome,0,0\nSID_RANGE,1,TCP,1,1,AES,1.5,0,Chrome,0,0\n"

	_, err := dataset.NewCSVSource(writeFile(t, content), discardLogger()).Records(context.Background())
	var malformed *model.MalformedRecordError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, 4, malformed.Row)
	assert.Equal(t, "SID_BAD", malformed.SessionID)
	assert.Equal(t, model.ColumnPacketSize, malformed.Field)

	records, err := dataset.NewCSVSource(writeFile(t, content), discardLogger(), dataset.SkipInvalid()).
		Records(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestCSVSource_IntegralFloats(t *testing.T) {
	content := "network_packet_size,protocol_type,login_attempts,session_duration,encryption_used,ip_reputation_score,failed_logins,browser_type,unusual_time_access\n800.0,UDP,8,50,None,0.1,5.0,Chrome,1\n"
	records, err := dataset.NewCSVSource(writeFile(t, content), discardLogger()).Records(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 800, records[0].NetworkPacketSize)
	assert.Equal(t, 5, records[0].FailedLogins)

	bad := "network_packet_size,protocol_type,login_attempts,session_duration,encryption_used,ip_reputation_score,failed_logins,browser_type,unusual_time_access\n800.5,UDP,8,50,None,0.1,5,Chrome,1\n"
	_, err = dataset.NewCSVSource(writeFile(t, bad), discardLogger()).Records(context.Background())
	testutil.AssertErrorIs(t, err, model.ErrMalformedRecord, model.ColumnPacketSize)
}

func TestCSVSource_MissingFile(t *testing.T) {
	_, err := dataset.NewCSVSource(filepath.Join(t.TempDir(), "none.csv"), discardLogger()).
		Records(context.Background())
	testutil.AssertErrorContains(t, err, "none.csv")
}

func TestWriteCSV_ReadBack(t *testing.T) {
	in := []model.Record{
		{SessionID: "X1", NetworkPacketSize: 800, ProtocolType: "UDP", LoginAttempts: 8, SessionDuration: 50.25,
			EncryptionUsed: "None", IPReputationScore: 0.1, FailedLogins: 5, BrowserType: "Chrome",
			UnusualTimeAccess: 1, AttackDetected: model.Label(1)},
	}

	var buf bytes.Buffer
	require.NoError(t, dataset.WriteCSV(&buf, in, true))

	path := writeFile(t, buf.String())
	out, err := dataset.NewCSVSource(path, discardLogger(), dataset.RequireLabel()).Records(context.Background())
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
