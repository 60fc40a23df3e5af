// Package pipeline turns the action lists of a mount configuration into the
// request processing stages attached to a mounted file.
//
// A pipeline has two phases. Pre stages are middlewares wrapped around the
// route (CSRF validation, loading the CSRF token into the template variables).
// Req stages replace the default file send (rendering the file as a template,
// ending the response). Actions form a closed set:
//
//	csrfProtection            pre  validate the CSRF token of unsafe requests
//	ejsLoadCsrfToken          pre  put csrfToken and csrfField in the variables
//	ejsRenderAndSendTemplate  req  render the file as HTML with the variables
//	terminate                 req  flush and end the response
//
// Unknown ids and ids used in the wrong phase produce no stage. Actions listed
// after terminate are never built.
package pipeline
