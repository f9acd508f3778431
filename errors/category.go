package errors

// Category is the origin tag a boundary attaches to the failures it raises.
type Category string

// Store-level categories, raised by the persistence layer.
const (
	// CategoryIntegrity marks constraint violations (unique, not null, foreign key, check).
	CategoryIntegrity Category = "store.integrity"
	// CategoryData marks values rejected for their format or length.
	CategoryData Category = "store.data"
	// CategoryOperational marks connection-level failures.
	CategoryOperational Category = "store.operational"
	// CategoryProgramming marks invalid statements and schema mismatches.
	CategoryProgramming Category = "store.programming"
)

// HTTP-exception categories, raised by handlers and routing.
const (
	CategoryNotFound     Category = "http.not_found"
	CategoryUnauthorized Category = "http.unauthorized"
	CategoryForbidden    Category = "http.forbidden"
	CategoryBadRequest   Category = "http.bad_request"
)

// Runtime categories, raised by input handling and handler logic.
const (
	CategoryValue     Category = "runtime.value"
	CategoryKey       Category = "runtime.key"
	CategoryType      Category = "runtime.type"
	CategoryAttribute Category = "runtime.attribute"
)

// Categories returns every category the classifier knows about.
func Categories() []Category {
	return []Category{
		CategoryIntegrity, CategoryData, CategoryOperational, CategoryProgramming,
		CategoryNotFound, CategoryUnauthorized, CategoryForbidden, CategoryBadRequest,
		CategoryValue, CategoryKey, CategoryType, CategoryAttribute,
	}
}

// Categorized is implemented by failures that carry an origin tag.
type Categorized interface {
	error
	Category() Category
}
