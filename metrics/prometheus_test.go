package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddInstrument(t *testing.T) {
	reg := prometheus.NewRegistry()

	h, err := AddInstrument(reg, Counter, "things_total", Namespace("test"), Vectors("kind"))
	require.NoError(t, err)
	cv, err := h.CounterVec()
	require.NoError(t, err)
	_, err = h.Counter()
	assert.ErrorIs(t, err, ErrInstrumentTypeMismatch)

	cv.WithLabelValues("a").Inc()
	cv.WithLabelValues("a").Inc()
	assert.Equal(t, float64(2), testutil.ToFloat64(cv.WithLabelValues("a")))

	_, err = AddInstrument(reg, Counter, "things_total", Namespace("test"), Vectors("kind"))
	assert.Error(t, err, "duplicate registration")

	_, err = AddInstrument(reg, instrument(42), "nope")
	assert.ErrorIs(t, err, ErrInstrumentNotSupported)
}

func TestHelpersAreNoopWithoutSetup(t *testing.T) {
	assert.NotPanics(t, func() {
		PurchaseInc("recorded")
		CommissionPaid("1", 100)
		NotificationInc("failed")
		EventDroppedInc("CommissionPaidEvent")
		StartSQLQuery("accounts", "Get")()
		StartAPIRequestAndTimeREST("login")()
	})
}
