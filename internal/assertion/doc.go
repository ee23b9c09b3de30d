// Package assertion evaluates expectations over normalized record sets.
//
// Predicates return nil on success or a *Failure describing what was wrong.
// Checks bind predicates to test classes and the catalog parameters they
// read, and the catalog file declares which hosts and keys to check.
package assertion
