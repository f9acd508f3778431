// Package validation turns request input into typed failures.
//
// Struct tag validation uses the validator library; a failed "required"
// rule becomes a missing-field failure and every other rule an
// invalid-value failure. BindJSON decodes gin request bodies and maps
// decoding problems onto bad-request and type-mismatch failures.
//
//	type createUser struct {
//	    Username string `json:"username" validate:"required,max=80"`
//	}
//	var req createUser
//	if err := validation.BindJSON(c, &req); err != nil {
//	    return err
//	}
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("username", name).Required("email", email)
//	if appErr := v.Validate(); appErr != nil { ... }
package validation
