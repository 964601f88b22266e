package domain

import "errors"

var (
	ErrMalformedIdentifier = errors.New("no identifier clause found in WKT")
	ErrAmbiguousIdentifier = errors.New("more than one identifier clause found in WKT")
	ErrInvalidKeyComponent = errors.New("invalid key component")
	ErrDuplicateKey        = errors.New("crs record already exists")
	ErrNotFound            = errors.New("crs record not found")
	ErrInvalidPageSize     = errors.New("invalid page size")
	ErrGmlNotAvailable     = errors.New("gml representation not available")
	ErrStoreUnavailable    = errors.New("record store unavailable")
)
