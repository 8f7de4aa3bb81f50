// Package domain contains the plain data types CodeKeeper works with:
// projects, exclusion patterns, run results and progress, settings and
// scheduler state, plus the sentinel errors shared by every layer.
//
// It imports only the standard library so that services and adapters can
// both depend on it.
package domain
