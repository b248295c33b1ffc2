// Package api exposes the registry over HTTP. Handlers decode and validate
// requests, call the person and dashboard services, and map service errors to
// status codes and client-safe messages.
//
// Form endpoints answer with a {message, data} envelope. Dashboard endpoints
// answer with the bare statistic.
package api
