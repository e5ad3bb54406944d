// Package output renders a finished query.Query.
//
// # Supported Formats
//
//   - table: an HTML table, with the row nearest to today emphasised and
//     LINK columns turned into download anchors
//   - card: one HTML contact card per row
//   - json: JSON Lines, one object per row with keys in column order
//   - csv: comma-separated values with a header row
//   - text: an aligned plain-text table for terminals
//
// # Basic Usage
//
//	q := query.Run(ctx, table, opts)
//	formatter, err := output.ForName("card", os.Stdout)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := formatter.Format(q); err != nil {
//	    log.Fatal(err)
//	}
//
// The HTML formatters write a failed query's error message in place of the
// markup. The data formatters return the error instead.
//
// Columns that are empty in every row are left out of the HTML and text
// output. JSON and CSV keep every column.
package output
