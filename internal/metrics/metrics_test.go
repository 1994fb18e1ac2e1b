package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"zcc-wallet-backend/internal/domain"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "insufficient_credits", Outcome(&domain.InsufficientCreditsError{Balance: 1, Required: 5}))
	assert.Equal(t, "storage_unavailable", Outcome(errors.New("boom")))
}

func TestObserveWallet(t *testing.T) {
	before := testutil.ToFloat64(WalletOperations.WithLabelValues("test_op", "invalid_amount"))
	ObserveWallet("test_op", time.Now(), domain.ErrInvalidAmount)
	assert.Equal(t, before+1, testutil.ToFloat64(WalletOperations.WithLabelValues("test_op", "invalid_amount")))
}
