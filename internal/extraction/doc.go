// Package extraction turns raw LLM gateway output into clean, typed task
// metadata. It owns the deterministic post-processing the model cannot be
// trusted with: person-name normalization, hashtag scanning and merging,
// enum coercion, and the confidence gate that decides which fields are safe
// to auto-populate.
package extraction
