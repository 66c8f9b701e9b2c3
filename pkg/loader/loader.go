package loader

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// Kind names one GraphRAG output table.
type Kind string

const (
	KindDocuments        Kind = "documents"
	KindTextUnits        Kind = "text_units"
	KindEntities         Kind = "entities"
	KindRelationships    Kind = "relationships"
	KindCommunities      Kind = "communities"
	KindCommunityReports Kind = "community_reports"
)

// Kinds lists every table in import order.
var Kinds = []Kind{
	KindDocuments,
	KindEntities,
	KindRelationships,
	KindCommunities,
	KindCommunityReports,
	KindTextUnits,
}

// Valid reports whether k names a GraphRAG output table.
func (k Kind) Valid() bool {
	return slices.Contains(Kinds, k)
}

// ErrUnknownKind is returned by readers asked for a table outside Kinds.
var ErrUnknownKind = errors.New("unknown table kind")

// ErrTableNotFound is returned when the source has no table for a kind.
var ErrTableNotFound = errors.New("table not found")

// TableReader produces the ordered rows of one table. Columns may be absent
// from any row and must be treated as optional.
type TableReader interface {
	Read(ctx context.Context, kind Kind) ([]Record, error)
}

// BlobFetcher loads a named object, e.g. a file on disk or an S3 object.
// Implementations return an error wrapping ErrTableNotFound when the object
// does not exist.
type BlobFetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// Decoder turns an encoded table into rows.
type Decoder interface {
	Extension() string
	Decode(data []byte) ([]Record, error)
}

// FileTableReader reads "<kind>.<ext>" objects through a fetcher and decodes
// them with the given decoder.
type FileTableReader struct {
	fetcher BlobFetcher
	decoder Decoder
}

// NewFileTableReader creates a TableReader over file-like objects.
func NewFileTableReader(fetcher BlobFetcher, decoder Decoder) *FileTableReader {
	return &FileTableReader{fetcher: fetcher, decoder: decoder}
}

func (r *FileTableReader) Read(ctx context.Context, kind Kind) ([]Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	name := TableFileName(kind, r.decoder.Extension())
	data, err := r.fetcher.Fetch(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", name, err)
	}
	rows, err := r.decoder.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return rows, nil
}

// TableFileName returns the object name used for a kind.
func TableFileName(kind Kind, ext string) string {
	return string(kind) + "." + ext
}
