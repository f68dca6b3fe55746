// Package common contains shared constants and sentinel errors used across
// librarian components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// AuthorizationHeaderName is the standard bearer metadata key. The server
// accepts either this or AccessTokenHeaderName.
const AuthorizationHeaderName = "authorization"

// BearerPrefix precedes the token in the authorization header.
const BearerPrefix = "Bearer "
