package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emmyme/hids-cli/internal/domain/model"
)

func TestRecordInput_Record(t *testing.T) {
	full := `{"session_id":"SID_1","network_packet_size":599,"protocol_type":"TCP","login_attempts":4,` +
		`"session_duration":492.98,"encryption_used":"DES","ip_reputation_score":0.606,"failed_logins":1,` +
		`"browser_type":"Edge","unusual_time_access":0}`

	decode := func(t *testing.T, drop string) model.RecordInput {
		t.Helper()
		var fields map[string]any
		require.NoError(t, json.Unmarshal([]byte(full), &fields))
		delete(fields, drop)
		b, err := json.Marshal(fields)
		require.NoError(t, err)
		var in model.RecordInput
		require.NoError(t, json.Unmarshal(b, &in))
		return in
	}

	t.Run("complete record", func(t *testing.T) {
		r, err := decode(t, "").Record()
		require.NoError(t, err)
		assert.Equal(t, validRecord().NetworkPacketSize, r.NetworkPacketSize)
		assert.Equal(t, "DES", r.EncryptionUsed)
		assert.InDelta(t, 0.606, r.IPReputationScore, 1e-9)
		assert.False(t, r.HasLabel())
	})

	for _, col := range model.InputColumns {
		t.Run("missing "+col, func(t *testing.T) {
			_, err := decode(t, col).Record()
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrMalformedRecord))

			var malformed *model.MalformedRecordError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, col, malformed.Field)
			assert.Equal(t, "SID_1", malformed.SessionID)
			assert.Equal(t, "is missing", malformed.Reason)
		})
	}

	t.Run("null counts as missing", func(t *testing.T) {
		var in model.RecordInput
		require.NoError(t, json.Unmarshal([]byte(`{"failed_logins":null}`), &in))
		_, err := in.Record()
		assert.True(t, errors.Is(err, model.ErrMalformedRecord))
	})

	t.Run("explicit zeros are kept", func(t *testing.T) {
		r := validRecord()
		r.NetworkPacketSize, r.FailedLogins, r.IPReputationScore = 0, 0, 0
		got, err := model.NewRecordInput(r).Record()
		require.NoError(t, err)
		assert.Equal(t, r, got)
	})

	t.Run("empty encryption is None", func(t *testing.T) {
		r := validRecord()
		r.EncryptionUsed = ""
		got, err := model.NewRecordInput(r).Record()
		require.NoError(t, err)
		assert.Equal(t, model.EncryptionNone, got.EncryptionUsed)
	})

	t.Run("label carried", func(t *testing.T) {
		r := validRecord()
		r.AttackDetected = model.Label(1)
		got, err := model.NewRecordInput(r).Record()
		require.NoError(t, err)
		require.True(t, got.HasLabel())
		assert.Equal(t, 1, *got.AttackDetected)
	})
}
