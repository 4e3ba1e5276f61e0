// Package instrumented provides a store.IStore decorator that records metrics.
//
// Every call is counted per operation, failures additionally per error code.
// A gauge reports the current number of records and the latency of Save and
// Load is tracked with timers. WriteMetrics dumps everything in a text format
// suitable for the CLI.
package instrumented
