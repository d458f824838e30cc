// entry/validate.go
package entry

import "strings"

// ValidEmail is the same light check the entry page has always used:
// a non-empty local part, one '@', and a domain with a dot that has at
// least one character on each side. Whitespace anywhere rejects.
//
// It is deliberately permissive ("a@b..", "a@.b.c" pass) and is not an
// RFC 5322 validator; the server decides whether the address is known.
func ValidEmail(s string) bool {
	if strings.IndexFunc(s, isSpace) >= 0 {
		return false
	}
	at := strings.IndexByte(s, '@')
	if at <= 0 || strings.Count(s, "@") != 1 {
		return false
	}
	domain := s[at+1:]
	if len(domain) < 3 {
		return false
	}
	// First dot past the domain's first byte, with something after it.
	dot := strings.IndexByte(domain[1:], '.') + 1
	return dot > 0 && dot < len(domain)-1
}

// TrimInput trims the whitespace a browser's String.prototype.trim would,
// so a value typed into any host page is compared the same way.
func TrimInput(s string) string {
	return strings.TrimFunc(s, isSpace)
}

// isSpace reports whether r is in the ECMAScript WhiteSpace or
// LineTerminator sets. unicode.IsSpace differs on U+0085 and U+FEFF.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		'\u00a0', '\u1680', '\u2028', '\u2029',
		'\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}
