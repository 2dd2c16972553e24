package transport_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/apicaller/pkg/transport"
	"github.com/bft-labs/apicaller/pkg/transport/transporttest"
)

func TestInstrument(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := transport.NewMetrics(reg)

	ok := transport.Instrument(transporttest.New("body", 201), m)
	_, err := ok.Execute(context.Background())
	require.NoError(t, err)

	failing := transport.Instrument(transporttest.Failing(errors.New("refused")), m)
	_, err = failing.Execute(context.Background())
	require.Error(t, err)

	count, err := testutil.GatherAndCount(reg, "apicaller_transfers_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = testutil.GatherAndCount(reg, "apicaller_transfer_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
