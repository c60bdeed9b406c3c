// Package task provides the background processing system for illustration
// generation. A TaskRunner drains an in-memory queue with a small worker
// pool; the IllustrationTask carries one registered haiku through
// generation, storage and persistence, reporting its outcome through the
// task registry rather than through the submitter.
package task
