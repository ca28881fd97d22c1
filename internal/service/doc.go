// Package service contains the application's business logic, sitting
// between the HTTP handlers and the persistence layer. Services accept
// and return DTOs, enforce invariants the database cannot express, and
// own transactional boundaries.
package service
