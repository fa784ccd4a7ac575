/*
Package metrics defines and registers the engine's Prometheus metrics:
job lifecycle counters and histograms, token throughput, and
Connector.Run/Copy latency and byte counts, plus an HTTP health/
readiness/liveness surface in the same shape Prometheus and Kubernetes
probes expect.

Metrics are package-level vars registered at init via
prometheus.MustRegister; call Handler() to mount the scrape endpoint
and HealthHandler/ReadyHandler/LivenessHandler to mount the probe
endpoints. RegisterComponent/UpdateComponent let any package (the
connector layer, the scheduler) report its own health without this
package importing it back.
*/
package metrics
