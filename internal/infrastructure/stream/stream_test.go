package stream

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emmyme/hids-cli/internal/domain/model"
	pkgkafka "github.com/Emmyme/hids-cli/pkg/kafka"
)

// fields is a complete JSON record minus the session and encryption columns.
const fields = `"network_packet_size":500,"protocol_type":"TCP","login_attempts":3,"session_duration":120.5,` +
	`"ip_reputation_score":0.4,"failed_logins":1,"browser_type":"Chrome","unusual_time_access":0`

func TestDecode(t *testing.T) {
	tests := []struct {
		name        string
		msg         pkgkafka.Message
		handlerErr  error
		wantSkip    bool
		wantErr     bool
		wantHandled bool
		wantID      string
		wantEnc     string
	}{
		{
			name:        "full record",
			msg:         pkgkafka.Message{Value: []byte(`{"session_id":"SID_1","encryption_used":"AES",` + fields + `}`)},
			wantHandled: true,
			wantID:      "SID_1",
			wantEnc:     "AES",
		},
		{
			name:        "session from key and empty encryption",
			msg:         pkgkafka.Message{Key: []byte("SID_K"), Value: []byte(`{"encryption_used":"",` + fields + `}`)},
			wantHandled: true,
			wantID:      "SID_K",
			wantEnc:     model.EncryptionNone,
		},
		{
			name:        "session from position",
			msg:         pkgkafka.Message{Topic: "hids.records", Partition: 1, Offset: 9, Value: []byte(`{"encryption_used":"DES",` + fields + `}`)},
			wantHandled: true,
			wantID:      "hids.records_1_9",
			wantEnc:     "DES",
		},
		{
			name:     "empty object is skipped",
			msg:      pkgkafka.Message{Value: []byte(`{}`)},
			wantSkip: true,
			wantErr:  true,
		},
		{
			name:     "missing encryption is skipped",
			msg:      pkgkafka.Message{Value: []byte(`{"session_id":"SID_1",` + fields + `}`)},
			wantSkip: true,
			wantErr:  true,
		},
		{
			name:     "invalid json is skipped",
			msg:      pkgkafka.Message{Value: []byte(`{not json`)},
			wantSkip: true,
			wantErr:  true,
		},
		{
			name:        "malformed record is skipped",
			msg:         pkgkafka.Message{Value: []byte(`{"session_id":"SID_1","encryption_used":"AES",` + fields + `}`)},
			handlerErr:  &model.AnalysisError{SessionID: "SID_1", Err: &model.MalformedRecordError{Field: "failed_logins"}},
			wantSkip:    true,
			wantErr:     true,
			wantHandled: true,
			wantID:      "SID_1",
			wantEnc:     "AES",
		},
		{
			name:        "infrastructure error is retried",
			msg:         pkgkafka.Message{Value: []byte(`{"session_id":"SID_1","encryption_used":"AES",` + fields + `}`)},
			handlerErr:  errors.New("database unavailable"),
			wantErr:     true,
			wantHandled: true,
			wantID:      "SID_1",
			wantEnc:     "AES",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *model.Record
			handler := Decode(func(_ context.Context, r model.Record) error {
				got = &r
				return tt.handlerErr
			})

			err := handler(context.Background(), tt.msg)
			if !tt.wantErr {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.wantSkip, errors.Is(err, pkgkafka.ErrSkipMessage))
			}
			if !tt.wantHandled {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantID, got.SessionID)
			assert.Equal(t, tt.wantEnc, got.EncryptionUsed)
			assert.Equal(t, 500, got.NetworkPacketSize)
		})
	}
}

func TestDecode_MissingNumericField(t *testing.T) {
	numeric := []string{
		model.ColumnPacketSize,
		model.ColumnLoginAttempts,
		model.ColumnSessionDuration,
		model.ColumnIPReputation,
		model.ColumnFailedLogins,
		model.ColumnUnusualTimeAccess,
	}
	complete := model.Record{
		SessionID:         "SID_1",
		NetworkPacketSize: 500,
		ProtocolType:      "TCP",
		LoginAttempts:     3,
		SessionDuration:   120.5,
		EncryptionUsed:    "AES",
		IPReputationScore: 0.4,
		FailedLogins:      1,
		BrowserType:       "Chrome",
	}

	for _, col := range numeric {
		t.Run(col, func(t *testing.T) {
			var payload map[string]any
			b, err := json.Marshal(complete)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(b, &payload))
			delete(payload, col)
			value, err := json.Marshal(payload)
			require.NoError(t, err)

			handled := false
			handler := Decode(func(context.Context, model.Record) error {
				handled = true
				return nil
			})

			err = handler(context.Background(), pkgkafka.Message{Value: value})
			require.Error(t, err)
			assert.True(t, errors.Is(err, pkgkafka.ErrSkipMessage))
			assert.True(t, errors.Is(err, model.ErrMalformedRecord))
			assert.ErrorContains(t, err, col+" is missing")
			assert.False(t, handled)
		})
	}
}

func TestEncode(t *testing.T) {
	one := 1
	messages, err := encode([]model.Record{{SessionID: "SID_1", ProtocolType: "TCP", AttackDetected: &one}})
	require.NoError(t, err)
	require.Len(t, messages, 1)

	assert.Equal(t, "SID_1", string(messages[0].Key))
	assert.Equal(t, "application/json", messages[0].Headers["content-type"])

	var decoded model.Record
	require.NoError(t, json.Unmarshal(messages[0].Value, &decoded))
	assert.Equal(t, "TCP", decoded.ProtocolType)
	require.NotNil(t, decoded.AttackDetected)
	assert.Equal(t, 1, *decoded.AttackDetected)
}

func TestPublisherDestination(t *testing.T) {
	producer, err := pkgkafka.NewProducer(pkgkafka.Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)
	p := NewPublisher(producer, "hids.records", nil)
	assert.Equal(t, "kafka://hids.records", p.Destination())
}
