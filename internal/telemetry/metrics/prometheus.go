package metrics

import (
	"github.com/IBM/pgxpoolprometheus"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// SetupPrometheus builds the registry served on the metrics listener.
// A nil pool skips the connection pool collector.
func SetupPrometheus(dbPool *pgxpool.Pool, dbName string) *prometheus.Registry {
	promRegistry := prometheus.NewRegistry()

	promRegistry.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if dbPool != nil {
		promRegistry.MustRegister(pgxpoolprometheus.NewCollector(
			dbPool,
			map[string]string{"db_name": dbName},
		))
	}

	return promRegistry
}
