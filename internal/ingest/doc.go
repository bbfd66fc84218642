// Package ingest reads the raw clinic tables the pipeline consumes.
// It handles the complete source lifecycle: fetching a table from a local
// file, a remote URL, or an uploaded stream, and decoding it from CSV or
// an Excel workbook into a uniform Table of named columns.
//
// Basic usage:
//
//	fetcher := ingest.NewFetcher(nil, logger)
//	table, err := fetcher.Fetch(ctx, "https://example.com/semmelweis_yearly.csv")
//	if err != nil {
//	    // *ingest.SourceFetchError carries the source and the underlying cause
//	}
//
// The package knows nothing about the dataset semantics; it only produces
// rows of cells keyed by the header row.
package ingest
