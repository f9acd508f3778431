package errors

// Kind is the closed classification of a request failure.
type Kind uint8

// Store-origin kinds.
const (
	// KindUniqueConstraintViolation is a uniqueness, not-null or other integrity constraint violation.
	KindUniqueConstraintViolation Kind = iota + 1
	// KindInvalidDataFormat is a value the store rejected for its format or length.
	KindInvalidDataFormat
	// KindConnectionFailure means the store could not be reached.
	KindConnectionFailure
	// KindQueryDefinitionError is a malformed query or a reference to a missing table/column.
	KindQueryDefinitionError
)

// Protocol-origin kinds.
const (
	// KindResourceNotFound means the requested resource does not exist.
	KindResourceNotFound Kind = iota + 5
	// KindAuthenticationRequired means the caller is not identified.
	KindAuthenticationRequired
	// KindPermissionDenied means the caller is identified but not allowed.
	KindPermissionDenied
	// KindMalformedRequest means the request could not be parsed.
	KindMalformedRequest
)

// Input/runtime-origin kinds.
const (
	// KindInvalidValue is a value of the right type with an unacceptable content.
	KindInvalidValue Kind = iota + 9
	// KindMissingField is a required field that was not supplied.
	KindMissingField
	// KindTypeMismatch is a value of the wrong type.
	KindTypeMismatch
	// KindInvalidState is data found in a state the handler cannot work with.
	KindInvalidState
	// KindUnclassified is every failure without a recognized category.
	KindUnclassified
)

// Origin groups kinds by the layer that raises them.
type Origin string

const (
	OriginStore    Origin = "store"
	OriginProtocol Origin = "protocol"
	OriginInput    Origin = "input"
)

var kindNames = map[Kind]string{
	KindUniqueConstraintViolation: "UNIQUE_CONSTRAINT_VIOLATION",
	KindInvalidDataFormat:         "INVALID_DATA_FORMAT",
	KindConnectionFailure:         "CONNECTION_FAILURE",
	KindQueryDefinitionError:      "QUERY_DEFINITION_ERROR",
	KindResourceNotFound:          "RESOURCE_NOT_FOUND",
	KindAuthenticationRequired:    "AUTHENTICATION_REQUIRED",
	KindPermissionDenied:          "PERMISSION_DENIED",
	KindMalformedRequest:          "MALFORMED_REQUEST",
	KindInvalidValue:              "INVALID_VALUE",
	KindMissingField:              "MISSING_FIELD",
	KindTypeMismatch:              "TYPE_MISMATCH",
	KindInvalidState:              "INVALID_STATE",
	KindUnclassified:              "UNCLASSIFIED",
}

// Kinds returns every declared kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindNames))
	for k := KindUniqueConstraintViolation; k <= KindUnclassified; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// String returns the machine-readable name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnclassified]
}

// Origin returns the layer group the kind belongs to.
func (k Kind) Origin() Origin {
	switch {
	case k >= KindUniqueConstraintViolation && k <= KindQueryDefinitionError:
		return OriginStore
	case k >= KindResourceNotFound && k <= KindMalformedRequest:
		return OriginProtocol
	default:
		return OriginInput
	}
}
