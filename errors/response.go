package errors

import "net/http"

// Response is the status/body pair sent to the client for a failure.
type Response struct {
	Status int          `json:"-"`
	Body   ResponseBody `json:"body"`
}

// ResponseBody is the JSON payload of a failure response. Exactly one of
// Error and Message is set.
type ResponseBody struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Success *bool  `json:"success,omitempty"`
}

// Text returns whichever of Error and Message is set.
func (b ResponseBody) Text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}

var notSuccessful = false

func errorBody(text string) ResponseBody {
	return ResponseBody{Error: text}
}

var responses = map[Kind]Response{
	KindUniqueConstraintViolation: {http.StatusBadRequest, ResponseBody{
		Message: "Integrity error: Duplicate entry or constraint violation",
		Success: &notSuccessful,
	}},
	KindInvalidDataFormat:      {http.StatusBadRequest, errorBody("Data error: Invalid data format or length")},
	KindConnectionFailure:      {http.StatusInternalServerError, errorBody("Database connection error, please try again later.")},
	KindQueryDefinitionError:   {http.StatusInternalServerError, errorBody("Internal server error occurred.")},
	KindResourceNotFound:       {http.StatusNotFound, errorBody("The requested resource was not found.")},
	KindAuthenticationRequired: {http.StatusUnauthorized, errorBody("Unauthorized access, please log in.")},
	KindPermissionDenied:       {http.StatusForbidden, errorBody("Access forbidden, you do not have permission.")},
	KindMalformedRequest:       {http.StatusBadRequest, errorBody("Bad request, please check your input.")},
	KindInvalidValue:           {http.StatusBadRequest, errorBody("Value error: Please check your input format.")},
	KindMissingField:           {http.StatusBadRequest, errorBody("Key error: Required data is missing.")},
	KindTypeMismatch:           {http.StatusBadRequest, errorBody("Type error: Please check your input type.")},
	KindInvalidState:           {http.StatusInternalServerError, errorBody("Attribute error: Something went wrong with the data.")},
	KindUnclassified:           {http.StatusInternalServerError, errorBody("An unexpected error occurred, please try again later.")},
}

// ToResponse returns the fixed response for a kind. Unknown kinds get the
// Unclassified response.
func ToResponse(kind Kind) Response {
	if resp, ok := responses[kind]; ok {
		return resp
	}
	return responses[KindUnclassified]
}

