// Package service contains the application's business logic, sitting
// between the HTTP handlers and the stores. Services own transaction
// boundaries, enforce workflow rules (enrichment lifecycle, confidence
// gating, the one-way move to todos), and translate store errors into the
// sentinels the API layer maps to HTTP statuses.
package service
