/*
Package ports defines the driven and driving ports (interfaces) of the architect engine.

These interfaces decouple the generate → lint → repair core from external
implementations, allowing the engine to work with various model services,
history backends and transports.

# Key Interfaces

  - Completer: Sends one system+user prompt to one model and returns its raw text.
  - HistoryStore: Persists the conversation history of multi-turn sessions.
  - DistributedLocker: Provides distributed locking for concurrent session access.
  - AuditRecorder: Keeps a record of every finished generation.
  - Generator / SessionService: What the HTTP and MCP adapters drive.
*/
package ports
