/*
Package session implements conversation history management for multi-turn refinement.

It serialises turns of the same session (locally with reference-counted
mutexes, and across replicas with an optional distributed locker), keeps the
stored history bounded and delegates persistence to a ports.HistoryStore.
*/
package session
