/*
Package validator implements the deterministic linter applied to every generated artifact.

Validation is lexical: it counts delimiters, looks for required substrings,
matches hex color literals against the design system, and counts opening and
closing markup tags. It never parses the artifact, so a valid result does not
mean the component compiles or runs.

Every check is evaluated on every call and findings are accumulated in a fixed
order: delimiter balance, required markers, color tokens, structural closure.
*/
package validator
