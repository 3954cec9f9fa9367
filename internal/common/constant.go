// Package common contains shared constants and sentinel errors used across
// TaskKeeper components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the authentication scheme advertised in WWW-Authenticate
// challenges and expected in the Authorization header.
const BearerScheme = "Bearer"

// TokenTypeBearer is the token_type reported alongside issued access tokens.
const TokenTypeBearer = "bearer"
