// Package config loads and validates lingo configuration.
//
// Settings come from, in increasing precedence: built-in defaults, a TOML
// file, a .env file in the working directory and LINGO_* environment
// variables. Command-line flags are applied on top by the cmd package.
package config
