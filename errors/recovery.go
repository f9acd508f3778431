package errors

// RequiresRollback reports whether a failure of the given kind may have left
// the request's transactional context in an indeterminate state.
//
// Connection failures never roll back: no transaction could have been
// mutated and the rollback would fail on the dead connection anyway.
// Unclassified failures always roll back since they may have been raised
// mid-transaction.
func RequiresRollback(kind Kind) bool {
	switch kind {
	case KindUniqueConstraintViolation,
		KindInvalidDataFormat,
		KindQueryDefinitionError,
		KindUnclassified:
		return true
	default:
		return false
	}
}
