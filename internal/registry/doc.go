// Package registry tracks in-flight illustration tasks between the upload
// request that creates them and the status poll that consumes their result.
//
// The default backend is a process-local map; a Redis backend is available
// for multi-instance deployments where polls may land on a different
// instance than the upload.
package registry
