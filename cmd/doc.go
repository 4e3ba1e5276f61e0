// Package cmd implements the command-line interface of roster. It provides a
// hierarchical command structure for managing a student roster.
//
// The package is organized into several subpackages:
//
//   - student: One-shot commands (add, remove, search, list, export, import, info, perf)
//   - shell: An interactive session over a single store
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Every flag can also be set with an environment variable prefixed with ROSTER_
// (e.g. ROSTER_BACKEND=sqlite) or in a .env / .env.local file.
//
// See roster -help for a list of all commands.
package cmd
