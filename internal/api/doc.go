// Package api holds the HTTP handlers for the catalog, attempt, feedback and
// progress endpoints. Handlers decode and validate requests, call the
// services, and map service errors to status codes in one place
// (MapErrorToStatusCode) so that internal details never reach clients.
package api
