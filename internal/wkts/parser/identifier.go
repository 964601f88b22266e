// Package parser extracts composite identifiers and denormalized fields
// from WKT-crs text.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdssp/planet-crs-registry/internal/wkts/domain"
)

// Body of an identifier clause: "IAU", 19900, 2015 (code precedes version).
var idClauseBodyRe = regexp.MustCompile(`^"([^"]+)"\s*,\s*(\d+)\s*,\s*(\d+)$`)

// ExtractIdentifier returns the authoritative composite key of a WKT text.
// Only ID clauses that are direct children of the outermost CRS clause
// count; nested unit identifiers (ID["EPSG", 9001]) and the base-CRS
// identifier inside a PROJCRS are ignored. Zero clauses is a malformed
// identifier; more than one distinct clause is ambiguous.
func ExtractIdentifier(wkt string) (domain.Key, error) {
	clauses := topLevelIDClauses(wkt)
	if len(clauses) == 0 {
		return domain.Key{}, domain.ErrMalformedIdentifier
	}

	distinct := make([]string, 0, 1)
	seen := make(map[string]bool, len(clauses))
	for _, c := range clauses {
		norm := strings.Join(strings.Fields(c), " ")
		if !seen[norm] {
			seen[norm] = true
			distinct = append(distinct, norm)
		}
	}
	if len(distinct) > 1 {
		return domain.Key{}, domain.ErrAmbiguousIdentifier
	}

	m := idClauseBodyRe.FindStringSubmatch(strings.TrimSpace(distinct[0]))
	if m == nil {
		return domain.Key{}, fmt.Errorf("%w: ID[%s]", domain.ErrMalformedIdentifier, distinct[0])
	}

	code, err := strconv.Atoi(m[2])
	if err != nil || code <= 0 {
		return domain.Key{}, fmt.Errorf("%w: code %q", domain.ErrMalformedIdentifier, m[2])
	}
	version, err := strconv.Atoi(m[3])
	if err != nil || version < 1000 || version > 9999 {
		return domain.Key{}, fmt.Errorf("%w: version %q is not a 4-digit year", domain.ErrMalformedIdentifier, m[3])
	}

	return domain.Key{Namespace: m[1], Version: version, Code: code}, nil
}

// topLevelIDClauses collects the bodies of every ID[...] clause sitting at
// bracket depth 1, i.e. directly inside the outermost clause.
func topLevelIDClauses(wkt string) []string {
	var clauses []string
	depth := 0
	inQuote := false
	for i := 0; i < len(wkt); i++ {
		switch wkt[i] {
		case '"':
			inQuote = !inQuote
		case '[':
			if !inQuote {
				if depth == 1 && keywordBefore(wkt, i) == "ID" {
					if end := matchingBracket(wkt, i); end > i {
						clauses = append(clauses, wkt[i+1:end])
					}
				}
				depth++
			}
		case ']':
			if !inQuote {
				depth--
			}
		}
	}
	return clauses
}

// keywordBefore returns the clause keyword immediately preceding the '['
// at position i.
func keywordBefore(s string, i int) string {
	end := i
	for end > 0 && s[end-1] == ' ' {
		end--
	}
	start := end
	for start > 0 {
		c := s[start-1]
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			start--
			continue
		}
		break
	}
	return s[start:end]
}

// matchingBracket returns the index of the ']' closing the '[' at open,
// or -1 when unbalanced.
func matchingBracket(s string, open int) int {
	depth := 0
	inQuote := false
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case '[':
			if !inQuote {
				depth++
			}
		case ']':
			if !inQuote {
				depth--
				if depth == 0 {
					return i
				}
			}
		}
	}
	return -1
}

// ParseKey parses a registry ID of the form "IAU:2015:19900".
func ParseKey(id string) (domain.Key, error) {
	parts := strings.Split(id, ":")
	if len(parts) != 3 || parts[0] == "" {
		return domain.Key{}, fmt.Errorf("%w: %q", domain.ErrInvalidKeyComponent, id)
	}
	pk, err := ParsePathSegments(parts[0], parts[1], parts[2])
	if err != nil {
		return domain.Key{}, err
	}
	key, _ := pk.Full()
	return key, nil
}

// ParsePathSegments builds a partial key from path segments. version and
// code are optional but code requires version; both must be positive
// integers when present.
func ParsePathSegments(namespace, version, code string) (domain.PartialKey, error) {
	pk := domain.PartialKey{Namespace: strings.TrimSpace(namespace)}
	if pk.Namespace == "" {
		return domain.PartialKey{}, fmt.Errorf("%w: empty namespace", domain.ErrInvalidKeyComponent)
	}
	if version == "" {
		if code != "" {
			return domain.PartialKey{}, fmt.Errorf("%w: code without version", domain.ErrInvalidKeyComponent)
		}
		return pk, nil
	}
	v, err := strconv.Atoi(version)
	if err != nil || v <= 0 {
		return domain.PartialKey{}, fmt.Errorf("%w: version %q", domain.ErrInvalidKeyComponent, version)
	}
	pk.Version = &v
	if code == "" {
		return pk, nil
	}
	c, err := strconv.Atoi(code)
	if err != nil || c <= 0 {
		return domain.PartialKey{}, fmt.Errorf("%w: code %q", domain.ErrInvalidKeyComponent, code)
	}
	pk.Code = &c
	return pk, nil
}
