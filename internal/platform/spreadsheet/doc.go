/*
Package spreadsheet renders test results as an xlsx workbook.

The first sheet, "all-results", holds every row. Each distinct test name then
gets its own sheet, named from the slug of the test name and cut to the
31-character limit Excel allows. Colliding names get a numeric suffix.

	var buf bytes.Buffer
	if err := spreadsheet.WriteResults(&buf, results); err != nil {
		return err
	}
*/
package spreadsheet
