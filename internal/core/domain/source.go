package domain

// SourceName identifies a supported knowledge source. The set is a
// closed enumeration; fetch capabilities are bound to names through
// the aggregator's explicit registration point rather than ad-hoc
// string dispatch.
type SourceName string

const (
	// SourceWikipedia fetches article extracts from Wikipedia.
	SourceWikipedia SourceName = "wikipedia"
	// SourceArxiv fetches paper abstracts from arXiv.
	SourceArxiv SourceName = "arxiv"
	// SourcePubMed fetches article abstracts from PubMed.
	SourcePubMed SourceName = "pubmed"
	// SourceStackOverflow fetches Q&A from Stack Overflow.
	SourceStackOverflow SourceName = "stackoverflow"
	// SourceOpenLibrary fetches book records from OpenLibrary.
	SourceOpenLibrary SourceName = "openlibrary"
	// SourceOSM fetches location data from OpenStreetMap.
	SourceOSM SourceName = "osm"
)

// AllSources lists every supported source in canonical order.
func AllSources() []SourceName {
	return []SourceName{
		SourceWikipedia,
		SourceArxiv,
		SourcePubMed,
		SourceStackOverflow,
		SourceOpenLibrary,
		SourceOSM,
	}
}

// DefaultSources returns the sources used when a request names none.
func DefaultSources() []SourceName {
	return []SourceName{SourceWikipedia, SourceStackOverflow}
}

// ParseSourceName maps a string to a SourceName. Unrecognized names
// return false; callers ignore them rather than failing the request.
func ParseSourceName(s string) (SourceName, bool) {
	switch SourceName(s) {
	case SourceWikipedia, SourceArxiv, SourcePubMed,
		SourceStackOverflow, SourceOpenLibrary, SourceOSM:
		return SourceName(s), true
	default:
		return "", false
	}
}

// ParseSourceNames maps a list of strings to SourceNames, silently
// dropping unrecognized entries. Returns nil when nothing matched.
func ParseSourceNames(names []string) []SourceName {
	var out []SourceName
	for _, n := range names {
		if s, ok := ParseSourceName(n); ok {
			out = append(out, s)
		}
	}
	return out
}
