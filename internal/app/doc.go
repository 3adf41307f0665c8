// Package app contains the core application logic. It loads keyword schemas,
// parses decks and produces reports, decoupled from any specific entrypoint
// like a CLI.
package app
