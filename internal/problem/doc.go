// Package problem defines the canonical diagnostic model shared by all
// checkers, the execution engine and the report writers.
//
// A Problem is one finding about a document: where it is (if anywhere),
// what text triggered it, which checker reported it, how severe it is
// and how it can be fixed. Problems are created by checkers, are
// read-only afterwards, and flow through deduplication and whitelist
// filtering into the final report.
//
// Design decision: This package is a leaf with no internal dependencies
// so that checkers, the engine and the report writers can all share the
// same types without import cycles.
package problem
