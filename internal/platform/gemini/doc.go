// Package gemini implements the llm.Gateway interface using Google's
// Gemini API.
package gemini
