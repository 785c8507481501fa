// Package metrics records stage and run metrics for the bootstrap pipeline.
//
// Components depend on the Recorder interface. NoopRecorder is the default so
// nothing has to nil-check; PrometheusRecorder is swapped in when the run was
// started with --metrics-file, and its registry is written out in the
// node_exporter textfile format when the run ends.
package metrics
