package metrics

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/multi-party-compute/internal/log/testlogger"
)

func TestStart(t *testing.T) {
	before := testutil.ToFloat64(Rounds)
	Rounds.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Rounds))

	l, err := Start(testlogger.New(t), "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	resp, err := http.Get("http://" + l.Addr().String() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "mpc_rounds_total"))
}
