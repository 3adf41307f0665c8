// Package cli maps command-line arguments onto the application: the cobra
// command tree, flag validation and process exit codes.
package cli
