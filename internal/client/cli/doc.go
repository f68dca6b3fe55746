// Package cli provides the interactive librarian command-line client.
//
// It wires configuration, the local session store and the gRPC client into
// a REPL. A stored login is resumed on start; commands cover the account
// lifecycle, the catalogue, lending and the admin tools. The server decides
// what each role may do, so the CLI offers every command to every session.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
