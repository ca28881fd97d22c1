// Package postgres provides PostgreSQL-backed implementations of the
// store interfaces. It translates driver-level failures into the
// store package's error taxonomy and renders criteria filters into
// parameterized SQL.
package postgres
