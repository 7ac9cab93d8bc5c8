// Package common contains shared constants and sentinel errors used across
// projdash components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme prefixes the access token in the Authorization header.
const BearerScheme = "Bearer"
