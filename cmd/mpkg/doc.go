// Package main hosts the mpkg CLI entrypoint and command graph.
//
// The Cobra-based command tree reads and edits media package manifests on
// disk: listing elements, validating documents, adding and removing elements,
// and resolving references. Configuration resolution and logger setup live
// in the command context so subcommands only deal with packages.
package main
