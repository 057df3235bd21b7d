// Package search looks up candidate remote recipe repositories for the
// `pygr search` subcommand — the discovery step before a user writes a
// manifest "<tag>:owner/repo" entry.
//
// This is an external-collaborator interface: the resolver, transaction
// coordinator, and store never call through it. Only the CLI does, and
// only in response to an explicit user command — install/uninstall/
// upgrade never search on a user's behalf.
package search
