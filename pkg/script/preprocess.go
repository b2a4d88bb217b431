package script

import "strings"

// kwPrefix marks keyword strings produced by preprocess.
const kwPrefix = "__kw_"

// preprocess rewrites script source into plain zygomys. Outside string
// literals it turns ; comments into // comments, :name keywords into the
// string "__kw_name", and hyphens inside identifiers into underscores
// (zygomys reads a bare hyphen as subtraction). := is left alone.
func preprocess(src string) string {
	var out strings.Builder
	out.Grow(len(src) + len(src)/4)

	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '"':
			i = copyQuoted(&out, src, i, '"', true)

		case c == '`':
			i = copyQuoted(&out, src, i, '`', false)

		case c == ';':
			for i < len(src) && src[i] == ';' {
				i++
			}
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				end = len(src)
			} else {
				end += i
			}
			out.WriteString("//")
			out.WriteString(src[i:end])
			i = end

		case c == ':' && i+1 < len(src) && src[i+1] == '=':
			out.WriteString(":=")
			i += 2

		case c == ':' && i+1 < len(src) && isLetter(src[i+1]):
			j := i + 1
			for j < len(src) && isKeywordChar(src[j]) {
				j++
			}
			out.WriteByte('"')
			out.WriteString(kwPrefix)
			out.WriteString(src[i+1 : j])
			out.WriteByte('"')
			i = j

		case c == '-' && i > 0 && i+1 < len(src) && isIdentChar(src[i-1]) && isLetter(src[i+1]):
			out.WriteByte('_')
			i++

		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// copyQuoted copies the literal starting at src[i] and returns the index
// just past its closing quote.
func copyQuoted(out *strings.Builder, src string, i int, quote byte, escapes bool) int {
	out.WriteByte(quote)
	i++
	for i < len(src) && src[i] != quote {
		if escapes && src[i] == '\\' && i+1 < len(src) {
			out.WriteString(src[i : i+2])
			i += 2
			continue
		}
		out.WriteByte(src[i])
		i++
	}
	if i < len(src) {
		out.WriteByte(quote)
		i++
	}
	return i
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKeywordChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}
