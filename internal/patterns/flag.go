package patterns

import "strings"

// IsFlag reports whether tok looks like a command-line flag: one or two
// leading dashes, an ASCII letter or digit, then letters, digits,
// underscores or dashes, optionally followed by "=" and any value.
//
//	-v  --all  -n1  --dry-run  --output=json  --set=a=b
//
// "-", "--", "---x", "-=x" and "--foo.bar" are not flags.
func IsFlag(tok string) bool {
	i := 0
	for i < len(tok) && i < 2 && tok[i] == '-' {
		i++
	}
	if i == 0 || i >= len(tok) || !isAlnum(tok[i]) {
		return false
	}

	for i++; i < len(tok); i++ {
		c := tok[i]
		if c == '=' {
			return true
		}
		if !isWord(c) && c != '-' {
			return false
		}
	}
	return true
}

// FlagName strips an "=value" suffix from a flag.
func FlagName(tok string) string {
	if eq := strings.IndexByte(tok, '='); eq > 0 {
		return tok[:eq]
	}
	return tok
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isWord(c byte) bool {
	return isAlnum(c) || c == '_'
}

// looksLikePath reports whether tok is probably a file name or path
// rather than vocabulary.
func looksLikePath(tok string) bool {
	return strings.ContainsAny(tok, `/\.`)
}
