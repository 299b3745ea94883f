package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"code.tierpay.io/referral/logging"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "referral"

const (
	// Gauge ...
	Gauge instrument = iota
	// Counter ...
	Counter
	// Histogram ...
	Histogram
)

var (
	// ErrInstrumentNotSupported signals the specified instrument is not yet supported.
	ErrInstrumentNotSupported = errors.New("instrument type unsupported")
	// ErrInstrumentTypeMismatch signal the type of the instrument is not expected.
	ErrInstrumentTypeMismatch = errors.New("instrument is not of the expected type")
)

var (
	setupOnce sync.Once
	setupErr  error

	purchaseCounter     *prometheus.CounterVec
	commissionCounter   *prometheus.CounterVec
	commissionAmount    *prometheus.CounterVec
	distributionRetries prometheus.Counter
	aggregateDrift      prometheus.Counter
	notificationCounter *prometheus.CounterVec
	droppedEvents       *prometheus.CounterVec
	sqlQueryTime        *prometheus.HistogramVec
	// Call counters for each request type per API
	apiRequestCallCounter *prometheus.CounterVec
	// Total time counters for each request type per API
	apiRequestTimeCounter *prometheus.CounterVec
	wsConnections         prometheus.Gauge
)

type instrument int

type instrumentOpts struct {
	opts    prometheus.Opts
	buckets []float64
	vectors []string
}

type mi struct {
	gaugeV     *prometheus.GaugeVec
	gauge      prometheus.Gauge
	counterV   *prometheus.CounterVec
	counter    prometheus.Counter
	histogramV *prometheus.HistogramVec
	histogram  prometheus.Histogram
}

// InstrumentOption - vararg for instrument options setting.
type InstrumentOption func(o *instrumentOpts)

// Vectors - configuration used to create a vector of a given interface, slice of label names.
func Vectors(labels ...string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.vectors = labels
	}
}

func Help(help string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Help = help
	}
}

func Namespace(ns string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Namespace = ns
	}
}

func Subsystem(s string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Subsystem = s
	}
}

// Buckets - specific to histogram type.
func Buckets(b []float64) InstrumentOption {
	return func(o *instrumentOpts) {
		o.buckets = b
	}
}

// AddInstrument configures a new instrument and registers it with reg.
func AddInstrument(reg prometheus.Registerer, t instrument, name string, opts ...InstrumentOption) (*mi, error) {
	var col prometheus.Collector
	ret := mi{}
	opt := instrumentOpts{
		opts: prometheus.Opts{
			Name: name,
		},
	}
	for _, o := range opts {
		o(&opt)
	}
	switch t {
	case Gauge:
		o := prometheus.GaugeOpts(opt.opts)
		if len(opt.vectors) == 0 {
			ret.gauge = prometheus.NewGauge(o)
			col = ret.gauge
		} else {
			ret.gaugeV = prometheus.NewGaugeVec(o, opt.vectors)
			col = ret.gaugeV
		}
	case Counter:
		o := prometheus.CounterOpts(opt.opts)
		if len(opt.vectors) == 0 {
			ret.counter = prometheus.NewCounter(o)
			col = ret.counter
		} else {
			ret.counterV = prometheus.NewCounterVec(o, opt.vectors)
			col = ret.counterV
		}
	case Histogram:
		o := prometheus.HistogramOpts{
			Name:      opt.opts.Name,
			Namespace: opt.opts.Namespace,
			Subsystem: opt.opts.Subsystem,
			Help:      opt.opts.Help,
			Buckets:   opt.buckets,
		}
		if len(opt.vectors) == 0 {
			ret.histogram = prometheus.NewHistogram(o)
			col = ret.histogram
		} else {
			ret.histogramV = prometheus.NewHistogramVec(o, opt.vectors)
			col = ret.histogramV
		}
	default:
		return nil, ErrInstrumentNotSupported
	}
	if err := reg.Register(col); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (m mi) Gauge() (prometheus.Gauge, error) {
	if m.gauge == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.gauge, nil
}

func (m mi) GaugeVec() (*prometheus.GaugeVec, error) {
	if m.gaugeV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.gaugeV, nil
}

func (m mi) Counter() (prometheus.Counter, error) {
	if m.counter == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.counter, nil
}

func (m mi) CounterVec() (*prometheus.CounterVec, error) {
	if m.counterV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.counterV, nil
}

func (m mi) HistogramVec() (*prometheus.HistogramVec, error) {
	if m.histogramV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.histogramV, nil
}

// Server exposes the registered instruments over HTTP.
type Server struct {
	log  *logging.Logger
	cfg  Config
	srv  *http.Server
	reg  *prometheus.Registry
	once sync.Once
}

// New registers all instruments. It returns nil when metrics are disabled.
func New(log *logging.Logger, cfg Config) (*Server, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	reg := prometheus.NewRegistry()
	setupOnce.Do(func() {
		setupErr = setupMetrics(reg)
	})
	if setupErr != nil {
		return nil, errors.Wrap(setupErr, "could not set up metrics")
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &Server{
		log: log,
		cfg: cfg,
		reg: reg,
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: cfg.Timeout.Get(),
		},
	}, nil
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	s.log.Info("starting metrics server", logging.String("address", s.srv.Addr), logging.String("path", s.cfg.Path))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "metrics server failed")
	}
	return nil
}

func (s *Server) Stop() {
	s.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout.Get())
		defer cancel()
		if err := s.srv.Shutdown(ctx); err != nil {
			s.log.Error("failed to shutdown metrics server", logging.Error(err))
		}
	})
}

func setupMetrics(reg prometheus.Registerer) error {
	h, err := AddInstrument(reg, Counter, "purchases_total",
		Namespace(namespace),
		Vectors("outcome"),
		Help("Number of purchases submitted for distribution"),
	)
	if err != nil {
		return err
	}
	if purchaseCounter, err = h.CounterVec(); err != nil {
		return err
	}

	h, err = AddInstrument(reg, Counter, "commissions_total",
		Namespace(namespace),
		Vectors("level"),
		Help("Number of commission records created"),
	)
	if err != nil {
		return err
	}
	if commissionCounter, err = h.CounterVec(); err != nil {
		return err
	}

	h, err = AddInstrument(reg, Counter, "commission_amount_total",
		Namespace(namespace),
		Vectors("level"),
		Help("Sum of commissions paid"),
	)
	if err != nil {
		return err
	}
	if commissionAmount, err = h.CounterVec(); err != nil {
		return err
	}

	h, err = AddInstrument(reg, Counter, "distribution_retries_total",
		Namespace(namespace),
		Help("Number of retried distribution steps"),
	)
	if err != nil {
		return err
	}
	if distributionRetries, err = h.Counter(); err != nil {
		return err
	}

	h, err = AddInstrument(reg, Counter, "aggregate_drift_total",
		Namespace(namespace),
		Help("Number of accounts whose aggregates did not match their commission records"),
	)
	if err != nil {
		return err
	}
	if aggregateDrift, err = h.Counter(); err != nil {
		return err
	}

	h, err = AddInstrument(reg, Counter, "notifications_total",
		Namespace(namespace),
		Vectors("outcome"),
		Help("Number of notifications handed to the sink"),
	)
	if err != nil {
		return err
	}
	if notificationCounter, err = h.CounterVec(); err != nil {
		return err
	}

	h, err = AddInstrument(reg, Counter, "dropped_events_total",
		Namespace(namespace),
		Vectors("event"),
		Help("Number of events dropped by the broker"),
	)
	if err != nil {
		return err
	}
	if droppedEvents, err = h.CounterVec(); err != nil {
		return err
	}

	h, err = AddInstrument(reg, Histogram, "sql_query_seconds",
		Namespace(namespace),
		Vectors("store", "query"),
		Buckets(prometheus.DefBuckets),
		Help("Time spent in SQL queries"),
	)
	if err != nil {
		return err
	}
	if sqlQueryTime, err = h.HistogramVec(); err != nil {
		return err
	}

	//
	// API usage metrics start here
	//

	h, err = AddInstrument(reg, Counter, "request_count_total",
		Namespace(namespace),
		Vectors("apiType", "requestType"),
		Help("Count of API requests"),
	)
	if err != nil {
		return err
	}
	if apiRequestCallCounter, err = h.CounterVec(); err != nil {
		return err
	}

	h, err = AddInstrument(reg, Counter, "request_time_total",
		Namespace(namespace),
		Vectors("apiType", "requestType"),
		Help("Total time spent in each API request"),
	)
	if err != nil {
		return err
	}
	if apiRequestTimeCounter, err = h.CounterVec(); err != nil {
		return err
	}

	h, err = AddInstrument(reg, Gauge, "websocket_connections",
		Namespace(namespace),
		Help("Number of open websocket connections"),
	)
	if err != nil {
		return err
	}
	wsConnections, err = h.Gauge()
	return err
}

// PurchaseInc counts a purchase by outcome (recorded, rejected, failed).
func PurchaseInc(outcome string) {
	if purchaseCounter == nil {
		return
	}
	purchaseCounter.WithLabelValues(outcome).Inc()
}

func CommissionPaid(level string, amount float64) {
	if commissionCounter == nil || commissionAmount == nil {
		return
	}
	commissionCounter.WithLabelValues(level).Inc()
	commissionAmount.WithLabelValues(level).Add(amount)
}

func DistributionRetryInc() {
	if distributionRetries == nil {
		return
	}
	distributionRetries.Inc()
}

func AggregateDriftInc() {
	if aggregateDrift == nil {
		return
	}
	aggregateDrift.Inc()
}

// NotificationInc counts a notification by outcome (delivered, failed).
func NotificationInc(outcome string) {
	if notificationCounter == nil {
		return
	}
	notificationCounter.WithLabelValues(outcome).Inc()
}

func EventDroppedInc(event string) {
	if droppedEvents == nil {
		return
	}
	droppedEvents.WithLabelValues(event).Inc()
}

func WebsocketConnectionsAdd(n int) {
	if wsConnections == nil {
		return
	}
	wsConnections.Add(float64(n))
}

// StartSQLQuery times a query, call the returned func when it completes.
func StartSQLQuery(store, query string) func() {
	startTime := time.Now()
	return func() {
		if sqlQueryTime == nil {
			return
		}
		sqlQueryTime.WithLabelValues(store, query).Observe(time.Since(startTime).Seconds())
	}
}

// StartAPIRequestAndTimeREST updates the metrics for REST API calls.
func StartAPIRequestAndTimeREST(request string) func() {
	startTime := time.Now()
	return func() {
		if apiRequestCallCounter == nil || apiRequestTimeCounter == nil {
			return
		}
		apiRequestCallCounter.WithLabelValues("REST", request).Inc()
		apiRequestTimeCounter.WithLabelValues("REST", request).Add(time.Since(startTime).Seconds())
	}
}
