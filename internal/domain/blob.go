package domain

import "context"

// BlobWriter writes an object to cold storage.
type BlobWriter interface {
	Write(ctx context.Context, key string, data []byte) error
}

// Archiver moves aged price history out of the store into cold storage.
type Archiver interface {
	// ArchiveHistory archives and prunes history rows older than the
	// configured retention, returning the number of rows moved.
	ArchiveHistory(ctx context.Context) (int, error)
}
