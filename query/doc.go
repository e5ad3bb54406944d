// Package query evaluates the TablePress query mini-language over the rows
// of a spreadsheet-like table.
//
// Two kinds of expression are supported. A display expression yields one
// cell of output: a column name, a quoted literal, a call to one of the
// built-in transforms, or a '+' concatenation of those:
//
//	uppercase(Achternaam)+', '+Voornaam
//	bulleted_list(Omschrijving)
//	date_description(days_plus(7))
//
// A filter expression yields true or false for a row:
//
//	Afdeling = 'Verkoop' and (Leeftijd > 30 or 'lead' in Rol)
//
// Neither kind of expression returns an error to its caller. Unknown
// functions render as "Unsupported function name"; malformed filters
// (an unclosed quote, an unmatched parenthesis) match no rows.
//
// # Queries
//
// Run drives a complete query over a reader.Table: it resolves the column
// spec, applies the structural filter ("{Status:{Open,Pending}}", with the
// TODAY and LINK/ markers), applies the select expression, sorts, and
// detects columns that are empty in every surviving row:
//
//	q := query.Run(ctx, table, query.Options{
//	    Columns: "{Naam:Voornaam+' '+Achternaam,Email}",
//	    Filter:  "{Afdeling:{Verkoop}}",
//	    Sort:    "Achternaam,Ascending",
//	})
//	if err := q.Err(); err != nil {
//	    log.Fatal(err)
//	}
//	for _, rec := range q.Records() {
//	    fmt.Println(rec.Values)
//	}
//
// A compiled Filter and an Engine hold no per-row state and may be shared
// between goroutines.
package query
