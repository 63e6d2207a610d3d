/*
Package observability turns draft lifecycle events into logs and Prometheus
metrics.

Metrics and LoggingHooks both produce domain.LifecycleHooks; Combine fans one
event out to several sets of hooks so both can be installed at once.
*/
package observability
