package server

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const defaultContentType = "application/octet-stream"

// Registered so guesses do not depend on the host's mime.types
var audioContentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".opus": "audio/opus",
	".aiff": "audio/aiff",
	".aif":  "audio/aiff",
}

func init() {
	for ext, contentType := range audioContentTypes {
		if err := mime.AddExtensionType(ext, contentType); err != nil {
			panic(fmt.Sprintf("registering %s: %v", ext, err))
		}
	}
}

// resolveContentType prefers the downloader's hint, then a guess from the
// filename extension, then a generic binary type
func resolveContentType(hint, filename string) string {
	if hint = strings.TrimSpace(hint); hint != "" {
		return hint
	}

	if ext := filepath.Ext(filename); ext != "" {
		if contentType := mime.TypeByExtension(ext); contentType != "" {
			return contentType
		}
	}

	return defaultContentType
}

// contentDisposition builds an attachment header for filename. Non-ASCII names
// get an ASCII fallback in filename and the exact name in filename* (RFC 5987).
func contentDisposition(filename string) string {
	filename = strings.NewReplacer("\r", "", "\n", "").Replace(filename)

	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(asciiFallback(filename))
	header := fmt.Sprintf("attachment; filename=\"%s\"", escaped)

	if !isASCII(filename) {
		header += "; filename*=UTF-8''" + encodeExtValue(filename)
	}
	return header
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// asciiFallback drops accents and replaces whatever is left outside ASCII with '_'
func asciiFallback(s string) string {
	if isASCII(s) {
		return s
	}
	if stripped, _, err := transform.String(stripMarks, s); err == nil {
		s = stripped
	}
	return strings.Map(func(r rune) rune {
		if r >= utf8.RuneSelf || r < ' ' {
			return '_'
		}
		return r
	}, s)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// encodeExtValue percent-encodes every byte outside RFC 5987 attr-char
func encodeExtValue(s string) string {
	const attrChars = "!#$&+-.^_`|~"
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			strings.IndexByte(attrChars, c) >= 0:
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return b.String()
}
