package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/questx-lab/ledger/internal/common"
)

// NewHandler serves the runtime collectors and every ledger metric declared in common.
func NewHandler() http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	for _, c := range ledgerCollectors() {
		registry.MustRegister(c)
	}

	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

func ledgerCollectors() []prometheus.Collector {
	var cs []prometheus.Collector
	for _, c := range common.PromCounters {
		cs = append(cs, c)
	}
	for _, g := range common.PromGauges {
		cs = append(cs, g)
	}
	for _, h := range common.PromHistograms {
		cs = append(cs, h)
	}
	return cs
}
