package prom

import (
	"strconv"
	"sync"
	"time"

	xhttp "github.com/grrdistribution/barrel-ledger/pkg/http"
	"github.com/grrdistribution/barrel-ledger/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const (
	SystemHTTP   = "http"
	SystemLedger = "ledger"
)

const (
	MetricRequestsTotal          = "requests_total"
	MetricRequestDurationSeconds = "request_duration_seconds"
	MetricRecordsAppendedTotal   = "records_appended_total"
	MetricDormantCustomers       = "dormant_customers"
)

var registerLock = &sync.Mutex{}
var namespace = "none"

var MetricSystemEnabled = false

var counterVecs = make(map[string]*prometheus.CounterVec)
var histogramVecs = make(map[string]*prometheus.HistogramVec)
var gaugeVecs = make(map[string]*prometheus.GaugeVec)

var defaultLabels prometheus.Labels

func Create(host string, env string, nameSpace string) error {
	defaultLabels = make(prometheus.Labels)
	defaultLabels["env"] = env
	defaultLabels["instance"] = host
	namespace = nameSpace
	MetricSystemEnabled = true

	var err error
	hasError := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}

	hasError(createCounterVec(SystemHTTP, MetricRequestsTotal, []string{"method", "path", "status"}))
	hasError(createHistogramVec(SystemHTTP, MetricRequestDurationSeconds, []string{"method", "path"}))
	hasError(createCounterVec(SystemLedger, MetricRecordsAppendedTotal, []string{"kind"}))
	hasError(createGaugeVec(SystemLedger, MetricDormantCustomers, []string{"gap_days"}))

	return err
}

func ListenAndServe(addr string, url string) {
	hh := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	s := xhttp.CreateServer()
	s.GET(url, hh)
	logger.Info("[metrics-server] listening...", "url", url)
	if err := s.ListenAndServe(addr); err != nil {
		logger.Panic("[metrics-server] http listen error", "error", err)
	}
}

// RequestMetricsMiddleware observes every request on the counter and
// duration metrics. Registered after Create, it is a no-op when the
// metric system is disabled.
func RequestMetricsMiddleware(next xhttp.RequestHandler) xhttp.RequestHandler {
	return func(ctx *xhttp.RequestCtx) {
		start := time.Now()
		next(ctx)
		if !MetricSystemEnabled {
			return
		}
		method := string(ctx.Method())
		path := string(ctx.Path())
		IncCounterVec(SystemHTTP, MetricRequestsTotal, method, path, strconv.Itoa(ctx.Response.StatusCode()))
		ObserveHistogramVec(SystemHTTP, MetricRequestDurationSeconds, time.Since(start).Seconds(), method, path)
	}
}

func createCounterVec(subsystem, name string, labels []string) error {
	registerLock.Lock()
	defer registerLock.Unlock()
	counterVecs[subsystem+name] = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(counterVecs[subsystem+name])
}

func createHistogramVec(subsystem, name string, labels []string) error {
	registerLock.Lock()
	defer registerLock.Unlock()
	histogramVecs[subsystem+name] = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
		Buckets:     prometheus.DefBuckets,
	}, labels)
	return prometheus.Register(histogramVecs[subsystem+name])
}

func createGaugeVec(subsystem, name string, labels []string) error {
	registerLock.Lock()
	defer registerLock.Unlock()
	gaugeVecs[subsystem+name] = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(gaugeVecs[subsystem+name])
}

func IncCounterVec(subsystem, name string, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := counterVecs[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Inc()
		return
	}
	logger.Warn("[metrics-server] counter not found", "subsystem", subsystem, "name", name)
}

func ObserveHistogramVec(subsystem, name string, value float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := histogramVecs[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Observe(value)
		return
	}
	logger.Warn("[metrics-server] histogram not found", "subsystem", subsystem, "name", name)
}

func SetGaugeVec(subsystem, name string, value float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := gaugeVecs[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Set(value)
		return
	}
	logger.Warn("[metrics-server] gauge not found", "subsystem", subsystem, "name", name)
}
