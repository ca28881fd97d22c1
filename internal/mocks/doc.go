// Package mocks provides hand-written test doubles for the store and
// auth interfaces. Each mock defaults to a working in-memory
// implementation and exposes function fields for overriding individual
// behaviors.
package mocks
