package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarificateur/go_backend/internal/domain/quote"
)

// Runs against a disposable database named by TEST_DATABASE_URL.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))
	return db
}

func TestDBRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	numero := fmt.Sprintf("TEST-%d", time.Now().UnixNano())
	t.Cleanup(func() {
		db.Pool.Exec(context.Background(), "DELETE FROM devis WHERE numero_opportunite LIKE $1", numero+"%")
	})

	q := quote.Quote{
		OpportunityNumber: numero,
		ClientName:        "Dupont",
		CreatedAt:         time.Now().UTC().Truncate(time.Microsecond),
		Guarantee:         quote.GuaranteeTRC,
		WantsRCMO:         true,
		WorksCost:         quote.Float(80000),
		RateTRC:           quote.Float(0.5),
		RateRCMO:          quote.Float(0.2),
	}
	q.ApplyPremiums()
	require.NoError(t, db.Create(ctx, &q))
	require.NotZero(t, q.ID)

	got, err := db.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.True(t, q.CreatedAt.Equal(got.CreatedAt))
	assert.InDelta(t, 560.0, *got.PremiumTotal, 1e-9)
	assert.Nil(t, got.AmountDO)

	dup := q
	assert.ErrorIs(t, db.Create(ctx, &dup), quote.ErrDuplicate)

	got.ClientName = "Durand"
	require.NoError(t, db.Update(ctx, &got))
	again, err := db.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "Durand", again.ClientName)

	_, err = db.Get(ctx, -1)
	assert.ErrorIs(t, err, quote.ErrNotFound)
}
