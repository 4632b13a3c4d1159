package metrics

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/taurusgroup/multi-party-compute/internal/log"
)

var (
	// PrivateMetrics holds every collector of this process.
	PrivateMetrics = prometheus.NewRegistry()

	// Rounds counts the rounds the engine has completed.
	Rounds = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mpc_rounds_total",
		Help: "Number of evaluation rounds completed",
	})

	// Evaluations counts protocol evaluations by outcome.
	Evaluations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mpc_protocol_evaluations_total",
		Help: "Number of protocol evaluations",
	}, []string{"status"})

	// NetworkBytes counts frame bytes exchanged with peers.
	NetworkBytes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mpc_network_bytes_total",
		Help: "Number of bytes exchanged with peers",
	}, []string{"direction"})

	// OTTransfers counts oblivious transfers by role.
	OTTransfers = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mpc_ot_transfers_total",
		Help: "Number of single bit oblivious transfers",
	}, []string{"role"})

	// OTBatches counts the sub-batches sent to the oblivious transfer service.
	OTBatches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mpc_ot_batches_total",
		Help: "Number of oblivious transfer batches",
	}, []string{"role"})

	// ApplicationDuration observes how long applications take to run.
	ApplicationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "mpc_application_duration_seconds",
		Help:    "Duration of application runs",
		Buckets: prometheus.DefBuckets,
	})

	bindOnce sync.Once
)

func init() {
	PrivateMetrics.MustRegister(Rounds, Evaluations, NetworkBytes, OTTransfers, OTBatches, ApplicationDuration)
}

func bindMetrics(l log.Logger) {
	if err := PrivateMetrics.Register(collectors.NewGoCollector()); err != nil {
		l.Errorw("error in bindMetrics", "metrics", "goCollector", "err", err)
		return
	}
	if err := PrivateMetrics.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		l.Errorw("error in bindMetrics", "metrics", "processCollector", "err", err)
	}
}

// Handler serves PrivateMetrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(PrivateMetrics, promhttp.HandlerOpts{Registry: PrivateMetrics})
}

// Start starts a prometheus metrics server. A bind without a host listens on 127.0.0.1.
func Start(logger log.Logger, bind string) (net.Listener, error) {
	bindOnce.Do(func() { bindMetrics(logger) })

	if !strings.Contains(bind, ":") {
		bind = "127.0.0.1:" + bind
	}
	l, err := net.Listen("tcp", bind)
	if err != nil {
		return nil, err
	}
	logger.Infow("metric listener started", "addr", l.Addr())

	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	s := http.Server{Addr: l.Addr().String(), ReadHeaderTimeout: 3 * time.Second, Handler: mux}
	go func() {
		logger.Warnw("", "metrics", "listen finished", "err", s.Serve(l))
	}()
	return l, nil
}
