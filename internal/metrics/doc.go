// Package metrics provides build observability for sitebuilder.
//
// Components receive a Recorder through their options. The default is
// NoopRecorder, so nothing needs nil checks. When settings name a metrics
// textfile, the CLI builds a PrometheusRecorder on a private registry and the
// site builder writes the registry with WriteTextfile after every build, for
// pickup by the node-exporter textfile collector.
package metrics
