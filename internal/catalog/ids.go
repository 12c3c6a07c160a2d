package catalog

import "strconv"

// MaxID returns the largest numeric id in products. Ids that do not parse as
// a non-negative integer count as 0.
func MaxID(products []Product) int64 {
	var max int64
	for _, p := range products {
		n, err := strconv.ParseInt(p.ID, 10, 64)
		if err != nil || n < 0 {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max
}

func NextID(products []Product) string {
	return formatID(MaxID(products) + 1)
}

// AllocateIDs returns n consecutive ids starting right after MaxID(products).
func AllocateIDs(products []Product, n int) []string {
	if n <= 0 {
		return nil
	}

	base := MaxID(products)
	out := make([]string, n)
	for i := range out {
		out[i] = formatID(base + int64(i) + 1)
	}
	return out
}

func formatID(n int64) string {
	return strconv.FormatInt(n, 10)
}
