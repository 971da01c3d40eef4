package extractor

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Destinations whose content is never document text.
var rtfSkipDestinations = map[string]bool{
	"fonttbl":      true,
	"colortbl":     true,
	"stylesheet":   true,
	"info":         true,
	"pict":         true,
	"object":       true,
	"header":       true,
	"footer":       true,
	"listtable":    true,
	"themedata":    true,
	"datastore":    true,
	"latentstyles": true,
}

// RTFBackend strips control words and groups from Rich Text Format documents.
type RTFBackend struct{}

func (RTFBackend) Extract(_ context.Context, data []byte, _ string) (string, error) {
	s := string(data)
	if !strings.HasPrefix(strings.TrimSpace(s), "{\\rtf") {
		return "", errors.New("rtf: missing {\\rtf header")
	}
	return stripRTF(s), nil
}

func stripRTF(s string) string {
	var b strings.Builder
	dec := charmap.Windows1252.NewDecoder()

	// skip[i] reports whether group depth i is an ignored destination.
	skip := []bool{false}
	skipping := func() bool { return skip[len(skip)-1] }

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '{':
			skip = append(skip, skipping())
			if strings.HasPrefix(s[i+1:], "\\*") {
				skip[len(skip)-1] = true
			}
		case '}':
			if len(skip) > 1 {
				skip = skip[:len(skip)-1]
			}
		case '\\':
			if i+1 >= len(s) {
				break
			}
			next := s[i+1]
			switch {
			case next == '\\' || next == '{' || next == '}':
				if !skipping() {
					b.WriteByte(next)
				}
				i++
			case next == '\'':
				if i+3 < len(s) {
					if v, err := strconv.ParseUint(s[i+2:i+4], 16, 8); err == nil && !skipping() {
						if r, err := dec.Bytes([]byte{byte(v)}); err == nil {
							b.Write(r)
						}
					}
					i += 3
				}
			case isASCIILetter(next):
				j := i + 1
				for j < len(s) && isASCIILetter(s[j]) {
					j++
				}
				word := s[i+1 : j]
				p := j
				for j < len(s) && (s[j] == '-' || (s[j] >= '0' && s[j] <= '9')) {
					j++
				}
				param := s[p:j]
				if j < len(s) && s[j] == ' ' {
					j++
				}
				i = j - 1

				if rtfSkipDestinations[word] {
					skip[len(skip)-1] = true
					continue
				}
				if skipping() {
					continue
				}
				switch word {
				case "par", "line", "sect", "page", "row":
					b.WriteByte('\n')
				case "tab", "cell":
					b.WriteByte('\t')
				case "u":
					if n, err := strconv.Atoi(param); err == nil {
						if n < 0 {
							n += 65536
						}
						b.WriteRune(rune(n))
						// the ANSI replacement character follows
						if i+1 < len(s) && s[i+1] != '\\' && s[i+1] != '{' && s[i+1] != '}' {
							i++
						}
					}
				}
			default:
				// control symbol such as \~ or \-
				if next == '~' && !skipping() {
					b.WriteByte(' ')
				}
				i++
			}
		case '\r', '\n':
			// raw line breaks in RTF source are not content
		default:
			if !skipping() {
				b.WriteByte(c)
			}
		}
	}

	return b.String()
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
