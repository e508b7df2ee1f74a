// Package metrics provides build metrics for sitebuilder.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	svc := build.NewService(cfg).WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// One-shot builds write the registry with WriteTextfile when a metrics
// textfile path is configured; preview and daemon modes expose it over HTTP
// with HTTPHandler.
package metrics
