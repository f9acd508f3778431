// Package errors classifies request failures and maps them to client responses.
//
// Boundaries (the persistence layer, input binding, handlers) tag the failures
// they raise with a Category by returning *AppError values. The failure core
// then resolves each failure to exactly one Kind with Classify, decides with
// RequiresRollback whether the request's transactional context must be rolled
// back, and derives the fixed status/body pair with ToResponse.
//
// Classification looks at the category tag only. Message text is never
// inspected, so driver upgrades and localized messages cannot change the
// outcome. Failures without a recognized tag resolve to KindUnclassified.
package errors
