package catalog

import "strings"

const csvMinColumns = 5

// ParseCSV turns raw CSV text into staged products. The first non-blank line
// is a header and is always skipped. Rows with fewer than five columns are
// dropped. Ids continue from startID in row order.
//
// Quoting is not interpreted beyond stripping one leading and one trailing
// double quote from each field, so a quoted comma still splits the field.
func ParseCSV(text string, startID int64) []Product {
	lines := nonBlankLines(text)
	if len(lines) <= 1 {
		return []Product{}
	}

	out := make([]Product, 0, len(lines)-1)
	for _, line := range lines[1:] {
		cols := strings.Split(line, ",")
		if len(cols) < csvMinColumns {
			continue
		}
		for i := range cols {
			cols[i] = cleanField(cols[i])
		}

		out = append(out, Product{
			ID:          formatID(startID + int64(len(out)) + 1),
			Name:        orDefault(cols[0], DefaultName),
			Description: orDefault(cols[1], DefaultDescription),
			Price:       coercePrice(cols[2]),
			Category:    orDefault(cols[3], DefaultCategory),
			PictureURL:  orDefault(cols[4], DefaultPictureURL),
			Status:      StatusPending,
		})
	}
	return out
}

func nonBlankLines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSuffix(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

func cleanField(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return strings.TrimSpace(s)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
