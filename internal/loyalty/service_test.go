package loyalty

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewRedemption(t *testing.T) {
	repo := NewInMemoryRepository()
	repo.Accrue(7, 1, 5000) // 250 points
	svc := NewService(repo)

	preview, err := svc.PreviewRedemption(7, 200)
	require.NoError(t, err)
	assert.Equal(t, 200, preview.Points)
	assert.Equal(t, 20.0, preview.DiscountAmount)
	assert.Equal(t, 250, preview.Balance)
	assert.Equal(t, 50, preview.Remaining)

	// preview never mutates the ledger
	acc, err := svc.Balance(7)
	require.NoError(t, err)
	assert.Equal(t, 250, acc.Points)
}

func TestPreviewRedemptionRejections(t *testing.T) {
	repo := NewInMemoryRepository()
	repo.Accrue(7, 1, 3000) // 150 points
	svc := NewService(repo)

	_, err := svc.PreviewRedemption(7, 99)
	assert.ErrorIs(t, err, ErrBelowMinimumRedeem)

	_, err = svc.PreviewRedemption(7, 200)
	assert.ErrorIs(t, err, ErrInsufficientPoints)
}

func TestAccrueLedger(t *testing.T) {
	repo := NewInMemoryRepository()
	if pts := repo.Accrue(3, 11, 199.99); pts != 9 {
		t.Fatalf("expected 9 points, got %d", pts)
	}
	repo.Accrue(3, 12, 40.0)

	acc, err := repo.GetAccount(3)
	require.NoError(t, err)
	assert.Equal(t, 11, acc.Points)
	assert.Equal(t, 11, acc.TotalEarned)

	txs, err := repo.History(3, 10)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	// newest first
	assert.Equal(t, 2, txs[0].Points)
	assert.Equal(t, TypeEarned, txs[0].Type)
}
