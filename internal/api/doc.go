// Package api contains the HTTP handlers, request/response models, and
// error mapping for the public API. It adapts HTTP concerns onto the
// application services: decoding and validating payloads, enforcing the
// authenticated user, and translating service errors into safe responses.
package api
