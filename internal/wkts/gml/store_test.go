package gml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdssp/planet-crs-registry/internal/wkts/domain"
)

func writeGml(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestStoreGet(t *testing.T) {
	dir := t.TempDir()
	writeGml(t, dir, "IAU_2015_19900.xml", `<gml:GeodeticCRS gml:id="iau-crs-19900"/>`)
	writeGml(t, dir, "IAU_2015_49900.xml", `<gml:GeodeticCRS gml:id="iau-crs-49900"/>`)
	writeGml(t, dir, "notes.txt", "not gml")
	writeGml(t, dir, "badname.xml", "no key")

	store := NewStore(dir)

	data, err := store.Get(domain.Key{Namespace: "IAU", Version: 2015, Code: 19900})
	require.NoError(t, err)
	assert.Contains(t, string(data), "iau-crs-19900")

	_, err = store.Get(domain.Key{Namespace: "IAU", Version: 2015, Code: 12345})
	assert.ErrorIs(t, err, domain.ErrGmlNotAvailable)
}

func TestStoreRefreshPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	key := domain.Key{Namespace: "IAU", Version: 2015, Code: 30100}
	_, err := store.Get(key)
	require.ErrorIs(t, err, domain.ErrGmlNotAvailable)

	writeGml(t, dir, "IAU_2015_30100.xml", `<gml:GeodeticCRS gml:id="iau-crs-30100"/>`)
	require.NoError(t, store.Refresh())

	data, err := store.Get(key)
	require.NoError(t, err)
	assert.Contains(t, string(data), "iau-crs-30100")
}

func TestStoreMissingDirIsNotFatal(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "does-not-exist"))

	_, err := store.Get(domain.Key{Namespace: "IAU", Version: 2015, Code: 19900})
	assert.ErrorIs(t, err, domain.ErrGmlNotAvailable)
}

func TestStoreFileRemovedBehindIndex(t *testing.T) {
	dir := t.TempDir()
	writeGml(t, dir, "IAU_2015_19900.xml", "<gml/>")
	store := NewStore(dir)

	require.NoError(t, os.Remove(filepath.Join(dir, "IAU_2015_19900.xml")))

	_, err := store.Get(domain.Key{Namespace: "IAU", Version: 2015, Code: 19900})
	assert.ErrorIs(t, err, domain.ErrGmlNotAvailable)
}
