package table

// DefaultMissingTokens are the raw cell values loaders treat as missing
// unless told otherwise.
var DefaultMissingTokens = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// MissingSet returns a predicate for New that matches any of tokens.
// A nil slice means DefaultMissingTokens.
func MissingSet(tokens []string) func(string) bool {
	if tokens == nil {
		tokens = DefaultMissingTokens
	}
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return func(s string) bool {
		_, ok := set[s]
		return ok
	}
}
