package extractor

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
)

const minRunLength = 4

// DOCBackend recovers text from legacy binary word-processor files by collecting
// printable runs. Both UTF-16LE and Windows-1252 storage are tried; the decoding
// yielding more letters wins.
type DOCBackend struct{}

func (DOCBackend) Extract(_ context.Context, data []byte, _ string) (string, error) {
	var candidates []string

	even := data[:len(data)&^1]
	if wide, err := xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM).NewDecoder().Bytes(even); err == nil {
		candidates = append(candidates, printableRuns(string(wide)))
	}
	if narrow, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil {
		candidates = append(candidates, printableRuns(string(narrow)))
	}

	best, bestLetters := "", 0
	for _, c := range candidates {
		if n := countLetters(c); n > bestLetters {
			best, bestLetters = c, n
		}
	}
	if bestLetters == 0 {
		return "", errors.New("doc: no readable text found")
	}
	return best, nil
}

// printableRuns keeps maximal runs of Latin text at least minRunLength long that
// contain a letter, one per line.
func printableRuns(s string) string {
	var out []string
	var run []rune
	flush := func() {
		if len(run) >= minRunLength && countLetters(string(run)) > 1 {
			out = append(out, strings.TrimSpace(string(run)))
		}
		run = run[:0]
	}

	for _, r := range s {
		switch {
		case r == '\r' || r == '\n' || r == 0x0B:
			flush()
		case isDocRune(r):
			run = append(run, r)
		default:
			flush()
		}
	}
	flush()

	return strings.Join(out, "\n")
}

func isDocRune(r rune) bool {
	if r == '\t' || r == ' ' {
		return true
	}
	if r < 0x20 || r == 0x7F {
		return false
	}
	if r < 0x250 || (r >= 0x2000 && r <= 0x206F) || (r >= 0x20A0 && r <= 0x20CF) {
		return unicode.IsPrint(r)
	}
	return false
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
