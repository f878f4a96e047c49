// Package memory provides in-memory implementations of driven ports.
//
// They back unit tests and the single-process demo mode; nothing is persisted.
package memory
