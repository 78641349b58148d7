package dlcore

import (
	"bufio"
	"io"
	"strings"
)

// ChecksumMap maps a basename to its lowercase hex MD5 digest, as parsed
// from one or more checksum manifest objects. On key collision across
// manifests, the last-parsed value wins.
type ChecksumMap map[string]string

// manifestSuffixes are the case-insensitive key suffixes that mark an
// object as a checksum manifest rather than a data object.
var manifestSuffixes = []string{".md5", "md5.txt", "md5sum.txt"}

// IsManifestKey reports whether key names a checksum manifest object
// rather than a data object, based on its suffix.
func IsManifestKey(key string) bool {
	lower := strings.ToLower(key)
	for _, suf := range manifestSuffixes {
		if strings.HasSuffix(lower, suf) {
			return true
		}
	}
	return false
}

// Basename returns the substring of name after the final '/', or name
// unchanged if it contains no '/'.
func Basename(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func isHex32(s string) bool {
	if len(s) != 32 {
		return false
	}
	for _, c := range s {
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'f') && !(c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

// Parse reads manifest text and returns a basename->digest map. It never
// fails: malformed or unrecognized lines are silently skipped, and the
// result may be empty.
func Parse(r io.Reader) ChecksumMap {
	out := make(ChecksumMap)
	scanner := bufio.NewScanner(r)
	// manifests may list thousands of large filenames; grow past the
	// scanner's default 64KiB line cap.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if name, hash, ok := parseBSDLine(line); ok {
			if bn := Basename(name); bn != "" {
				out[bn] = strings.ToLower(hash)
			}
			continue
		}

		if name, hash, ok := parseGNULine(line); ok {
			bn := Basename(name)
			if bn != "" {
				out[bn] = strings.ToLower(hash)
			}
		}
	}
	return out
}

// parseBSDLine matches "MD5 (filename) = hexdigest", case-insensitive on
// the leading tag.
func parseBSDLine(line string) (name, hash string, ok bool) {
	lower := strings.ToLower(line)
	if !strings.HasPrefix(lower, "md5 (") {
		return "", "", false
	}
	rest := line[len("md5 ("):]
	idx := strings.Index(rest, ") = ")
	if idx < 0 {
		return "", "", false
	}
	name = rest[:idx]
	hash = strings.TrimSpace(rest[idx+len(") = "):])
	if !isHex32(hash) {
		return "", "", false
	}
	return name, hash, true
}

// parseGNULine matches "<32-hex><ws>filename" and "<32-hex><ws>*filename",
// the coreutils/"binary marker" formats.
func parseGNULine(line string) (name, hash string, ok bool) {
	idx := strings.IndexFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '*'
	})
	if idx < 0 {
		return "", "", false
	}
	hash = line[:idx]
	if !isHex32(hash) {
		return "", "", false
	}
	name = strings.TrimSpace(line[idx:])
	name = strings.TrimPrefix(name, "*")
	return name, hash, true
}
