// Package common contains shared constants and sentinel errors used across
// dealership components.
package common

const (
	// AccessTokenCookieName is the default name of the cookie carrying the
	// signed identity token.
	AccessTokenCookieName = "jwt"

	// NoticeCookieName carries the one-shot flash notice between a redirect
	// and the page that displays it.
	NoticeCookieName = "notice"

	// EnvDevelopment disables the Secure cookie flag and enables text logs.
	EnvDevelopment = "development"
	// EnvProduction is the default environment.
	EnvProduction = "production"
)
