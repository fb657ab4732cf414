package csv

import "strings"

// splitLine splits one sheet line on commas. A double quote toggles
// quoted mode and is dropped; commas inside quotes are kept literally.
// Fields are trimmed. The published sheet export is the only producer,
// so quote escaping ("") simply toggles twice.
func splitLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)
	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	return append(fields, strings.TrimSpace(current.String()))
}
