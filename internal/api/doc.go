// Package api implements the HTTP surface: photo upload, illustration task
// status polling and the read-only gallery feeds. Handlers translate between
// the wire format and the service layer; the shared subpackage holds the
// response helpers and trace ID plumbing.
package api
