// Package metrics exposes runtime counters in Prometheus exposition format.
//
//   - tradewatch_probes_total{source,outcome}       – probe invocations by outcome
//   - tradewatch_runs_total{source,result}          – orchestration runs by terminal result
//   - tradewatch_notifications_total{sink,status}   – notification deliveries by sink
//   - tradewatch_pipeline_runs_total{status}        – downstream pipeline executions
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Probes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradewatch_probes_total",
			Help: "Probe invocations by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	Runs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradewatch_runs_total",
			Help: "Orchestration runs by source and terminal result",
		},
		[]string{"source", "result"},
	)

	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradewatch_notifications_total",
			Help: "Notification deliveries by sink and status",
		},
		[]string{"sink", "status"},
	)

	PipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradewatch_pipeline_runs_total",
			Help: "Downstream pipeline executions by status",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(Probes, Runs, Notifications, PipelineRuns)
}
