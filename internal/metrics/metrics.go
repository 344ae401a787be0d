package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all refund metrics
const namespace = "refunds"

// Registry is the global Prometheus registry for all metrics
var Registry = prometheus.NewRegistry()

// AppInfo is a gauge that exposes application version information as labels
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

var initOnce sync.Once

// Init registers runtime collectors and sets version information. Calling it
// again only refreshes AppInfo.
func Init(version, commit, buildDate string) {
	initOnce.Do(func() {
		// Register default Go metrics (memory, goroutines, GC, etc.)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}

// WriteTextfile writes the registry in the text exposition format, for
// pickup by a node exporter textfile collector after a batch run.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
