package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emmyme/hids-cli/internal/domain/model"
)

func TestCategoryEncoder_SortedCodes(t *testing.T) {
	enc, err := model.NewCategoryEncoder(map[string][]string{
		model.ColumnProtocolType: {"UDP", "TCP", "ICMP", "TCP"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"ICMP", "TCP", "UDP"}, enc.Vocabulary(model.ColumnProtocolType))

	tests := []struct {
		value string
		code  int
	}{
		{"ICMP", 0},
		{"TCP", 1},
		{"UDP", 2},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			code, err := enc.Encode(model.ColumnProtocolType, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestCategoryEncoder_UnseenCategoryFallsBack(t *testing.T) {
	enc, err := model.NewCategoryEncoder(map[string][]string{
		model.ColumnBrowserType: {"Chrome", "Firefox"},
	})
	require.NoError(t, err)

	code, err := enc.Encode(model.ColumnBrowserType, "Lynx")
	require.NoError(t, err)
	assert.Equal(t, model.UnseenCategoryCode, code)
}

func TestCategoryEncoder_UnknownColumn(t *testing.T) {
	enc, err := model.NewCategoryEncoder(map[string][]string{
		model.ColumnBrowserType: {"Chrome"},
	})
	require.NoError(t, err)

	_, err = enc.Encode(model.ColumnProtocolType, "TCP")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrFeatureMismatch))
}

func TestCategoryEncoder_Immutable(t *testing.T) {
	input := map[string][]string{model.ColumnBrowserType: {"Edge", "Chrome"}}
	enc, err := model.NewCategoryEncoder(input)
	require.NoError(t, err)

	input[model.ColumnBrowserType][0] = "Opera"
	vocab := enc.Vocabularies()
	vocab[model.ColumnBrowserType][0] = "Safari"

	assert.Equal(t, []string{"Chrome", "Edge"}, enc.Vocabulary(model.ColumnBrowserType))
}

func TestFitCategoryEncoder(t *testing.T) {
	a := validRecord()
	b := validRecord()
	b.ProtocolType = "UDP"
	b.EncryptionUsed = model.EncryptionNone

	enc, err := model.FitCategoryEncoder([]model.Record{a, b})
	require.NoError(t, err)

	assert.ElementsMatch(t, model.CategoricalColumns, enc.Columns())
	assert.Equal(t, []string{"DES", "None"}, enc.Vocabulary(model.ColumnEncryptionUsed))
}

func TestNewCategoryEncoder_Empty(t *testing.T) {
	_, err := model.NewCategoryEncoder(nil)
	assert.Error(t, err)

	_, err = model.NewCategoryEncoder(map[string][]string{model.ColumnBrowserType: {}})
	assert.Error(t, err)
}
