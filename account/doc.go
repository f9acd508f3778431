// Package account holds the user and role model, its gorm repository and
// the gin handlers for the /api routes.
//
// Handlers run through server.Dispatcher, so they only return failures:
// path and body problems come from the validation package, store failures
// from database.Translate, and the admin check produces authentication and
// permission failures. Role management requires an actor, named by the
// X-User-Id header, that holds the admin role.
package account
