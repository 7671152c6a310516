// Package task provides the in-memory background task runner and the
// enrichment task executed for each captured task. The queue is a buffered
// channel drained by a fixed worker pool; work that is in flight when the
// process stops is simply lost, and a failed enrichment is retried through
// the API rather than by the runner.
package task
