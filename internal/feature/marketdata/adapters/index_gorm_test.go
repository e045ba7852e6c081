package adapters

import (
	"context"
	"testing"

	"fiflow_backend/internal/feature/marketdata/domain/entity"
	"fiflow_backend/internal/feature/marketdata/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexGorm_UpsertFindList(t *testing.T) {
	t.Parallel()

	repo := NewIndexRepository(setupTestDB(t))
	ctx := context.Background()

	kospi := &entity.IndexSnapshot{
		Name:       "KOSPI",
		Date:       "2025-08-05",
		Value:      decimal.RequireFromString("3198.00"),
		Change:     decimal.RequireFromString("51.10"),
		ChangeRate: decimal.RequireFromString("1.62"),
	}
	require.NoError(t, repo.Upsert(ctx, kospi))
	require.NoError(t, repo.Upsert(ctx, &entity.IndexSnapshot{Name: "KOSDAQ", Date: "2025-08-05"}))
	require.NoError(t, repo.Upsert(ctx, &entity.IndexSnapshot{Name: "KOSPI", Date: "2025-08-04"}))

	kospi.Value = decimal.RequireFromString("3200.50")
	require.NoError(t, repo.Upsert(ctx, kospi))

	got, err := repo.Find(ctx, "KOSPI", "2025-08-05")
	require.NoError(t, err)
	assert.Equal(t, "3200.50", got.Value.StringFixed(2))
	assert.True(t, got.IsUp())

	rows, err := repo.ListByDate(ctx, "2025-08-05")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "KOSDAQ", rows[0].Name)
	assert.Equal(t, "KOSPI", rows[1].Name)

	_, err = repo.Find(ctx, "KPI200", "2025-08-05")
	assert.ErrorIs(t, err, usecase.ErrIndexNotFound)
}
