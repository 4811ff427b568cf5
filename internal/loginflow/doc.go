// Package loginflow drives the client side of a login: it submits
// credentials through the non-redirecting login endpoint and then walks an
// escalating navigation ladder until the browser (or any Navigator) has
// actually left the login page with the new session.
package loginflow
