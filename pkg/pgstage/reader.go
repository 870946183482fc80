package pgstage

import "context"

// DatasetReader reads a full source dataset into a Frame.
// The source's header row defines column names; types are inferred from the
// values (see Frame and ColumnType).
type DatasetReader interface {
	// Read reads the dataset at source. A header-only source yields a Frame
	// with columns but zero rows; a source without a header row is an error.
	Read(ctx context.Context, source string) (*Frame, error)
}
