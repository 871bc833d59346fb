// Package tankid normalizes tank identifiers decoded from scanned codes.
//
// Field scanners and Japanese handset keyboards routinely produce
// full-width ASCII ("Ｂ０３") and decomposed Unicode. Identifiers are
// normalized before any lookup or submission so that the same physical
// label always yields the same key.
package tankid

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalize canonicalizes a raw scanned identifier:
// NFC composition, full-width to half-width folding, surrounding
// whitespace trimmed, ASCII letters upper-cased.
//
// Returns an error for identifiers that are empty after normalization or
// contain whitespace in the middle (a multi-code scan artifact).
func Normalize(raw string) (string, error) {
	id := norm.NFC.String(raw)
	id = width.Narrow.String(id)
	id = strings.TrimSpace(id)
	id = strings.ToUpper(id)

	if id == "" {
		return "", fmt.Errorf("empty tank id after normalization (raw=%q)", raw)
	}
	if strings.ContainsAny(id, " \t\r\n") {
		return "", fmt.Errorf("tank id %q contains whitespace", id)
	}
	return id, nil
}
