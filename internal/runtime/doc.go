// Package runtime runs the generate → validate → repair loop.
//
// The Orchestrator is a small state machine: a request is sanitized once,
// then each iteration renders a prompt (generate or repair mode), calls the
// model cascade and validates the output. A valid artifact ends the run with
// success; an invalid one either feeds the next repair prompt or, once the
// attempt budget is spent, ends the run as exhausted. Fatal conditions end
// the run immediately as a failure without spending the budget.
package runtime
