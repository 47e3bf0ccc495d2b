package usecase_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emmyme/hids-cli/internal/application/dto"
	"github.com/Emmyme/hids-cli/internal/application/usecase"
	"github.com/Emmyme/hids-cli/internal/domain/model"
)

func seededRepo(t *testing.T) *mockVerdictRepository {
	t.Helper()
	repo := &mockVerdictRepository{}
	analyzer := &mockAnalyzer{}
	for i := range 5 {
		sessionID := fmt.Sprintf("SID_%d", i%2)
		v, err := analyzer.Analyze(record(sessionID, i))
		require.NoError(t, err)
		require.NoError(t, repo.Save(context.Background(), v))
	}
	return repo
}

func TestGetVerdict_Execute(t *testing.T) {
	repo := seededRepo(t)
	uc := usecase.NewGetVerdict(repo)
	want := repo.saved[3]

	got, err := uc.Execute(context.Background(), want.ID())
	require.NoError(t, err)
	assert.Equal(t, dto.FromVerdict(want), got)
	assert.Equal(t, []string{}, got.Indicators)
}

func TestGetVerdict_NotFound(t *testing.T) {
	uc := usecase.NewGetVerdict(&mockVerdictRepository{})

	_, err := uc.Execute(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrVerdictNotFound)
}

func TestGetVerdict_List(t *testing.T) {
	repo := seededRepo(t)
	uc := usecase.NewGetVerdict(repo)

	tests := []struct {
		name string
		req  dto.ListVerdictsRequest
		want []int
	}{
		{name: "recent with default limit", req: dto.ListVerdictsRequest{}, want: []int{4, 3, 2, 1, 0}},
		{name: "recent with limit", req: dto.ListVerdictsRequest{Limit: 2}, want: []int{4, 3}},
		{name: "by session", req: dto.ListVerdictsRequest{SessionID: "SID_1"}, want: []int{3, 1}},
		{name: "by session with limit", req: dto.ListVerdictsRequest{SessionID: "SID_0", Limit: 1}, want: []int{4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := uc.List(context.Background(), tt.req)
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i, idx := range tt.want {
				assert.Equal(t, repo.saved[idx].ID(), got[i].ID)
			}
		})
	}
}
