// Package orchestrator drives one execution request end to end: readiness
// and policy gates, block selection, session spawn or reuse, command
// submission, and distribution of the decoded result to markers, output and
// result surfaces, the progress tracker and the event bus.
package orchestrator
