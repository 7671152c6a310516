// Package llm defines the boundary between the application core and the
// external language model provider: the Gateway interface, the raw
// extraction schema, the gateway error taxonomy, and the retry policy
// applied by callers.
package llm
