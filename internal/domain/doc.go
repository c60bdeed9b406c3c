// Package domain contains the core domain entities and their validation
// logic, independent of storage and transport concerns.
package domain
