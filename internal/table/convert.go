package table

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// numericRegex matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ToPgFloat8 parses a cell as a number after trimming surrounding whitespace.
// Anything that is not a plain decimal or scientific literal is invalid,
// including inf, Infinity and NaN spellings that strconv would accept.
func ToPgFloat8(s string) pgtype.Float8 {
	s = strings.TrimSpace(s)
	if s == "" || !numericRegex.MatchString(s) {
		return pgtype.Float8{Valid: false}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Out of range literals such as 1e400.
		return pgtype.Float8{Valid: false}
	}
	return pgtype.Float8{Float64: f, Valid: true}
}

// FormatNumber renders a numeric cell. Integral values print without a
// fractional part; very large or very small magnitudes use exponent form.
func FormatNumber(f float64) string {
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if f == 0 {
		// Normalize negative zero.
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
