// Package resource reconciles local keys (file paths, store names) with
// remote resource ids.
//
// Every resource kind follows the same shape:
//
//	Retrieve(id)      -> id or "" (empty id and not-found are not errors)
//	Create(key)       -> new id
//	Ensure(key, id)   -> Retrieve, then Create if the result is empty
//
// Failures other than not-found are wrapped, sent to the configured
// core.ErrorReporter and returned. Deletes are pass-through and return the
// Deleted token.
package resource
