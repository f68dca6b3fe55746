// Package client contains the client-side transport of the librarian CLI.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) covering
//     account, lending, catalogue and analytics calls.
//  2. A concrete gRPC implementation (see GRPCClient) that manages a
//     connection, injects the bearer token via an interceptor, transparently
//     refreshes the session once when the server rejects the access token,
//     and maps gRPC status codes to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Status codes are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrForbidden, ErrNotFound,
// ErrConflict and ErrInvalidInput.
//
// GRPCClient is safe for concurrent use. All operations accept a
// context.Context and honor cancellation.
package client
