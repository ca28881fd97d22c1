// Package api implements the HTTP handlers for authentication and
// user management, the mapping from service errors to the response
// taxonomy, and the request parsing helpers they share.
package api
