package engine

// FilterSubset returns a new Index holding only the countries named in allow.
// Names missing from idx are ignored. idx is not modified.
func FilterSubset(idx *Index, allow []string) *Index {
	keep := make(map[string]bool, len(allow))
	for _, c := range allow {
		if idx.HasCountry(c) {
			keep[c] = true
		}
	}

	out := newIndex(idx.header)
	for k, rec := range idx.rows {
		if keep[k.Country] {
			out.rows[k] = rec
		}
	}
	for c := range keep {
		info := *idx.countries[c]
		out.countries[c] = &info
	}
	return out
}
