package errors

import stderrors "errors"

// Classify resolves a failure to exactly one Kind by its category tag.
// Untagged failures, unknown categories and nil resolve to KindUnclassified.
func Classify(err error) Kind {
	var c Categorized
	if err == nil || !stderrors.As(err, &c) {
		return KindUnclassified
	}
	return KindOf(c.Category())
}

// KindOf maps a category to its kind.
func KindOf(category Category) Kind {
	switch category {
	case CategoryIntegrity:
		return KindUniqueConstraintViolation
	case CategoryData:
		return KindInvalidDataFormat
	case CategoryOperational:
		return KindConnectionFailure
	case CategoryProgramming:
		return KindQueryDefinitionError
	case CategoryNotFound:
		return KindResourceNotFound
	case CategoryUnauthorized:
		return KindAuthenticationRequired
	case CategoryForbidden:
		return KindPermissionDenied
	case CategoryBadRequest:
		return KindMalformedRequest
	case CategoryValue:
		return KindInvalidValue
	case CategoryKey:
		return KindMissingField
	case CategoryType:
		return KindTypeMismatch
	case CategoryAttribute:
		return KindInvalidState
	default:
		return KindUnclassified
	}
}
