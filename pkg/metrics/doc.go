/*
Package metrics exposes Prometheus metrics and health endpoints for burrow.

Collector snapshots the template and credential store on an interval and
publishes counts and per-template instance caps. Unbounded caps are
reported as -1 rather than as the integer sentinel, so dashboards never
plot a meaningless two billion.

NewMux wires /metrics, /health and /ready. Readiness requires the storage
component to have reported healthy at least once.
*/
package metrics
