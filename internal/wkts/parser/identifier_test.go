package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdssp/planet-crs-registry/internal/wkts/domain"
)

const mercuryGeodWkt = `GEOGCRS["Mercury (2015) / Ocentric", DATUM["Mercury (2015)", ELLIPSOID["Mercury (2015)", 2439.4, 0, LENGTHUNIT["kilometre", 1000, ID["EPSG", 9036]]], ANCHOR["Hun Kal: 20.0"], ID["IAU", 19900, 2015]], PRIMEM["Reference Meridian", 0, ANGLEUNIT["degree", 0.0174532925199433, ID["EPSG", 9122]]], CS[spherical, 2], AXIS["planetocentric latitude (U)", north, ORDER[1], ANGLEUNIT["degree", 0.0174532925199433]], AXIS["planetocentric longitude (V)", east, ORDER[2], ANGLEUNIT["degree", 0.0174532925199433]], ID["IAU", 19902, 2015]]`

func TestExtractIdentifier(t *testing.T) {
	t.Run("single top-level clause", func(t *testing.T) {
		wkt := `GEOGCRS["Mars (2015)", DATUM["Mars (2015)", ELLIPSOID["Mars (2015)", 3396.19, 169.894447223612, LENGTHUNIT["kilometre", 1000, ID["EPSG", 9036]]]], PRIMEM["Reference Meridian", 0], CS[ellipsoidal, 2], ID["IAU", 49900, 2015]]`

		key, err := ExtractIdentifier(wkt)
		require.NoError(t, err)
		assert.Equal(t, domain.Key{Namespace: "IAU", Version: 2015, Code: 49900}, key)
		assert.Equal(t, "IAU:2015:49900", key.String())
		assert.Equal(t, "urn:ogc:def:crs:IAU:2015:49900", key.URN())
	})

	t.Run("nested unit identifiers are ignored", func(t *testing.T) {
		// The EPSG unit IDs above sit at depth > 1 and must not count.
		wkt := `GEOGCRS["Moon (2015)", DATUM["Moon (2015)", ELLIPSOID["Moon (2015)", 1737.4, 0, LENGTHUNIT["kilometre", 1000, ID["EPSG", 9036]]]], PRIMEM["Reference Meridian", 0, ANGLEUNIT["degree", 0.0174532925199433, ID["EPSG", 9122]]], ID["IAU", 30100, 2015]]`

		key, err := ExtractIdentifier(wkt)
		require.NoError(t, err)
		assert.Equal(t, 30100, key.Code)
		assert.Equal(t, 2015, key.Version)
	})

	t.Run("projected crs ignores the base-crs identifier", func(t *testing.T) {
		wkt := `PROJCRS["Mercury (2015) / Ocentric / Equirectangular, clon = 0", BASEGEOGCRS["Mercury (2015) / Ocentric", DATUM["Mercury (2015)", ELLIPSOID["Mercury (2015)", 2439.4, 0, LENGTHUNIT["kilometre", 1000]]], ID["IAU", 19902, 2015]], CONVERSION["Equirectangular, clon = 0", METHOD["Equidistant Cylindrical", ID["EPSG", 1028]]], CS[Cartesian, 2], ID["IAU", 19910, 2015]]`

		key, err := ExtractIdentifier(wkt)
		require.NoError(t, err)
		assert.Equal(t, 19910, key.Code)
	})

	t.Run("no identifier", func(t *testing.T) {
		_, err := ExtractIdentifier(`GEOGCRS["Mars (2015)", DATUM["Mars (2015)", ELLIPSOID["Mars (2015)", 3396.19, 0, LENGTHUNIT["kilometre", 1000]]]]`)
		assert.ErrorIs(t, err, domain.ErrMalformedIdentifier)
	})

	t.Run("two distinct top-level identifiers", func(t *testing.T) {
		wkt := `GEOGCRS["X", DATUM["X", ELLIPSOID["X", 1, 0, LENGTHUNIT["kilometre", 1000]]], ID["IAU", 19900, 2015], ID["IAU", 19901, 2015]]`
		_, err := ExtractIdentifier(wkt)
		assert.ErrorIs(t, err, domain.ErrAmbiguousIdentifier)
	})

	t.Run("duplicate identical identifiers collapse", func(t *testing.T) {
		wkt := `GEOGCRS["X", DATUM["X", ELLIPSOID["X", 1, 0, LENGTHUNIT["kilometre", 1000]]], ID["IAU", 19900, 2015], ID["IAU",  19900,  2015]]`
		key, err := ExtractIdentifier(wkt)
		require.NoError(t, err)
		assert.Equal(t, 19900, key.Code)
	})

	t.Run("version must be a 4-digit year", func(t *testing.T) {
		wkt := `GEOGCRS["X", DATUM["X", ELLIPSOID["X", 1, 0, LENGTHUNIT["kilometre", 1000]]], ID["IAU", 19900, 15]]`
		_, err := ExtractIdentifier(wkt)
		assert.ErrorIs(t, err, domain.ErrMalformedIdentifier)
	})

	t.Run("identifier inside quotes does not count", func(t *testing.T) {
		wkt := `GEOGCRS["weird ID[ bracket", DATUM["X", ELLIPSOID["X", 1, 0, LENGTHUNIT["kilometre", 1000]]], ID["IAU", 19900, 2015]]`
		key, err := ExtractIdentifier(wkt)
		require.NoError(t, err)
		assert.Equal(t, 19900, key.Code)
	})
}

func TestExtractIdentifierDatumIDIgnored(t *testing.T) {
	// mercuryGeodWkt also carries an ID inside its DATUM clause; only the
	// depth-1 clause is authoritative.
	key, err := ExtractIdentifier(mercuryGeodWkt)
	require.NoError(t, err)
	assert.Equal(t, 19902, key.Code)
}

func TestParseKey(t *testing.T) {
	key, err := ParseKey("IAU:2015:19900")
	require.NoError(t, err)
	assert.Equal(t, domain.Key{Namespace: "IAU", Version: 2015, Code: 19900}, key)

	for _, id := range []string{"", "IAU", "IAU:2015", "IAU:2015:19900:1", ":2015:19900", "IAU:abc:19900", "IAU:2015:-1"} {
		_, err := ParseKey(id)
		assert.ErrorIs(t, err, domain.ErrInvalidKeyComponent, "id %q", id)
	}
}

func TestParsePathSegments(t *testing.T) {
	t.Run("namespace only", func(t *testing.T) {
		pk, err := ParsePathSegments("IAU", "", "")
		require.NoError(t, err)
		assert.Equal(t, "IAU", pk.Namespace)
		assert.Nil(t, pk.Version)
		assert.Nil(t, pk.Code)
		assert.False(t, pk.IsFull())
	})

	t.Run("namespace and version", func(t *testing.T) {
		pk, err := ParsePathSegments("IAU", "2015", "")
		require.NoError(t, err)
		require.NotNil(t, pk.Version)
		assert.Equal(t, 2015, *pk.Version)
		assert.False(t, pk.IsFull())
	})

	t.Run("full key", func(t *testing.T) {
		pk, err := ParsePathSegments("IAU", "2015", "19900")
		require.NoError(t, err)
		require.True(t, pk.IsFull())
		key, ok := pk.Full()
		require.True(t, ok)
		assert.Equal(t, "IAU:2015:19900", key.String())
	})

	t.Run("invalid segments", func(t *testing.T) {
		cases := [][3]string{
			{"", "", ""},
			{"IAU", "x", ""},
			{"IAU", "0", ""},
			{"IAU", "2015", "x"},
			{"IAU", "2015", "0"},
			{"IAU", "", "19900"}, // code without version
		}
		for _, c := range cases {
			_, err := ParsePathSegments(c[0], c[1], c[2])
			assert.ErrorIs(t, err, domain.ErrInvalidKeyComponent, "segments %v", c)
		}
	})
}
