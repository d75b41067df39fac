// Package strcase converts Go identifiers to the casings used on the wire.
package strcase

import (
	"strings"
	"unicode"
)

// words splits an identifier at case boundaries, keeping initialisms
// together: "UserID" -> [User ID], "HTTPServer" -> [HTTP Server].
func words(s string) []string {
	runes := []rune(s)

	var (
		out   []string
		start int
	)
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

		boundary := unicode.IsUpper(cur) &&
			(unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower))
		if cur == '_' || cur == '-' {
			boundary = true
		}

		if boundary {
			if w := strings.Trim(string(runes[start:i]), "_-"); w != "" {
				out = append(out, w)
			}
			start = i
		}
	}
	if w := strings.Trim(string(runes[start:]), "_-"); w != "" {
		out = append(out, w)
	}
	return out
}

// ToLowerSnake converts a string to snake_case: "UserID" -> "user_id".
func ToLowerSnake(s string) string {
	ws := words(s)
	for i, w := range ws {
		ws[i] = strings.ToLower(w)
	}
	return strings.Join(ws, "_")
}

// ToLowerCamel converts a string to lowerCamelCase: "QRCodeURL" -> "qrCodeUrl".
func ToLowerCamel(s string) string {
	var b strings.Builder
	for i, w := range words(s) {
		w = strings.ToLower(w)
		if i > 0 {
			r := []rune(w)
			r[0] = unicode.ToUpper(r[0])
			w = string(r)
		}
		b.WriteString(w)
	}
	return b.String()
}
