// Package preview keeps a site rebuilt while it is being worked on.
//
// Preview builds once, serves the output directory over HTTP and rebuilds
// whenever content or templates change. Daemon rebuilds on a cron schedule
// instead. Both expose the latest build through /healthz and, when a
// Prometheus registry is given, the build metrics through /metrics.
package preview
