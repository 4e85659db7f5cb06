// Package log provides the application's logging setup on top of the
// standard slog package.
//
// Checker runs log file paths constantly: the target document, temp
// files, plugin executables, the whitelist database. The TidyHandler
// rewrites absolute paths under the user's home directory to the
// familiar ~/ form before delegating, so logs stay readable and don't
// leak the local user name when shared.
package log
