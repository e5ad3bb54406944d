// Package reader provides the table datastore behind tablequery.
//
// A table is a header row followed by data rows, every cell a string. Tables
// come from one of two stores:
//
//   - DirStore: a directory of table files (.csv, .xlsx, .json, .parquet),
//     addressed by file name without extension or by position.
//   - SQLiteStore: a SQLite database holding tables as JSON content, the
//     layout a TablePress export uses, addressed by title or row ID.
//
// # Basic Usage
//
// Fetching a table by name:
//
//	store := reader.NewDirStore("tables")
//	table, err := store.TableByName(ctx, "contacten")
//	if errors.Is(err, reader.ErrTableNotFound) {
//	    // ...
//	}
//
// Reading a single file without a store:
//
//	table, err := reader.ReadFile("tables/contacten.xlsx")
//
// # Cell Normalisation
//
// Every loader runs cells through NormalizeCell, which turns <br> tags into
// newlines so that downstream list functions see one delimiter.
//
// # Link Directories
//
// DirLister lists downloadable files (PDF by default) for LINK columns. It
// uses github.com/bmatcuk/doublestar/v4 for pattern matching.
package reader
