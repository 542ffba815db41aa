// Package util provides common utility functions used across the codebase.
package util

import "strings"

// ShellQuote wraps a string in single quotes, escaping any existing single quotes.
// This is safe for use in shell commands where the string should be treated literally.
func ShellQuote(s string) string {
	// Replace ' with '\'' (end quote, escaped quote, start quote)
	escaped := strings.ReplaceAll(s, "'", "'\\''")
	return "'" + escaped + "'"
}

// safeShellChars never need quoting.
const safeShellChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_./=:,@%+"

// ShellQuoteIfNeeded quotes s only when it contains characters the shell
// would interpret, so logged commands stay readable.
func ShellQuoteIfNeeded(s string) string {
	if s == "" {
		return "''"
	}
	for _, r := range s {
		if !strings.ContainsRune(safeShellChars, r) {
			return ShellQuote(s)
		}
	}
	return s
}

// ShellJoin renders argv as a command line that can be pasted into a shell.
func ShellJoin(argv []string) string {
	parts := make([]string, len(argv))
	for i, arg := range argv {
		parts[i] = ShellQuoteIfNeeded(arg)
	}
	return strings.Join(parts, " ")
}
