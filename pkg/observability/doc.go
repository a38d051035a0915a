/*
Package observability provides monitoring for the architect engine.

It turns engine lifecycle hooks into Prometheus metrics and structured log
records, so every attempt, model call and terminal outcome can be counted
and inspected without touching the core loop.
*/
package observability
