package method

import (
	"github.com/prometheus/client_golang/prometheus"
)

const decompilerMetricsNamespace = "decompiler"

const (
	statusOK     = "ok"
	statusFailed = "failed"
)

var (
	metricMethodsAnalysed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: decompilerMetricsNamespace,
			Name:      "methods_analysed",
			Help:      "Methods analysed by outcome",
		},
		[]string{"status"},
	)

	metricFallbackRoots = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: decompilerMetricsNamespace,
			Name:      "fallback_roots",
			Help:      "Statements reached only by the fallback sweep of the component finder",
		},
	)

	metricAnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: decompilerMetricsNamespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent analysing one method",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(
		metricMethodsAnalysed,
		metricFallbackRoots,
		metricAnalysisDuration,
	)
}
