// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing stream events, sessions and turns. These
// helpers are not intended for production usage.
package testutil
