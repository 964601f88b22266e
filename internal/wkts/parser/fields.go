package parser

import (
	"fmt"
	"strings"

	"github.com/pdssp/planet-crs-registry/internal/wkts/domain"
)

// Fields are the descriptive strings denormalized from a WKT for query
// efficiency.
type Fields struct {
	Name           string
	SolarBody      string
	DatumName      string
	EllipsoidName  string
	ProjectionName string
}

// ExtractFields pulls the denormalized columns out of a WKT text. The
// datum name is mandatory; its first word names the solar body (e.g.
// DATUM["Mercury (2015)", ...] -> "Mercury"). Ellipsoid and triaxial
// clauses are interchangeable. A WKT without a PROJCRS header or a
// PROJECTION clause gets the "No projection" sentinel.
func ExtractFields(wkt string) (Fields, error) {
	f := Fields{ProjectionName: domain.NoProjection}

	f.Name = firstQuoted(wkt)
	if f.Name == "" {
		return Fields{}, fmt.Errorf("wkt has no named outer clause")
	}

	f.DatumName = clauseName(wkt, "DATUM")
	if f.DatumName == "" {
		return Fields{}, fmt.Errorf("wkt has no DATUM clause")
	}
	f.SolarBody = strings.Fields(f.DatumName)[0]

	f.EllipsoidName = clauseName(wkt, "ELLIPSOID")
	if f.EllipsoidName == "" {
		f.EllipsoidName = clauseName(wkt, "TRIAXIAL")
	}
	if f.EllipsoidName == "" {
		return Fields{}, fmt.Errorf("wkt has no ELLIPSOID or TRIAXIAL clause")
	}

	if strings.HasPrefix(wkt, "PROJCRS") {
		f.ProjectionName = clauseName(wkt, "PROJCRS")
	} else if p := clauseName(wkt, "PROJECTION"); p != "" {
		f.ProjectionName = p
	}
	if f.ProjectionName == "" {
		f.ProjectionName = domain.NoProjection
	}

	return f, nil
}

// firstQuoted returns the first quoted string in s.
func firstQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// clauseName returns the quoted name opening the first kw[...] clause,
// e.g. clauseName(w, "DATUM") on DATUM["Mercury (2015)", ...] returns
// "Mercury (2015)". The keyword must not be a suffix of a longer keyword
// (BASEGEOGCRS does not match GEOGCRS).
func clauseName(wkt, kw string) string {
	for off := 0; ; {
		idx := strings.Index(wkt[off:], kw)
		if idx < 0 {
			return ""
		}
		idx += off
		off = idx + len(kw)

		if idx > 0 {
			c := wkt[idx-1]
			if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
				continue
			}
		}

		rest := strings.TrimLeft(wkt[idx+len(kw):], " ")
		if !strings.HasPrefix(rest, "[") {
			continue
		}
		rest = strings.TrimLeft(rest[1:], " ")
		if !strings.HasPrefix(rest, `"`) {
			continue
		}
		return firstQuoted(rest)
	}
}
