// Package api contains the HTTP transport layer: chi handlers, request and
// response DTOs, and the mapping from service errors to HTTP status codes.
// Handlers decode and validate input, delegate to the service layer, and
// never touch stores directly.
package api
