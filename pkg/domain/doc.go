/*
Package domain contains the core models of the architect engine.

It defines the design system the generated code must conform to, the
validation results produced by the linter, the attempts and results of the
generate → lint → repair loop, and the conversation history of multi-turn
sessions. The package is kept pure and free of I/O, following Hexagonal
Architecture principles.

# Key Entities

  - DesignSystem: The immutable set of named tokens (colors, typography, rules).
  - ValidationError / ValidationResult: Ordered findings of the deterministic linter.
  - GenerationAttempt / GenerationResult: One loop iteration and the final outcome.
  - Conversation: Append-only history of a multi-turn session.
*/
package domain
