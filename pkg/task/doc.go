// Package task carries the lifecycle of one background survey run: an id,
// a cooperative cancellation flag shared with every worker, a completion
// signal, and a bounded wait for the worker pool to drain.
package task
