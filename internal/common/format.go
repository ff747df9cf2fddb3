package common

import (
	"fmt"
	"math"
	"strings"
)

// FormatMoney renders a US-locale currency string with 2 decimals and
// thousands grouping, e.g. 2550.5 -> "$2,550.50".
func FormatMoney(v float64) string {
	neg := v < 0
	s := groupThousands(math.Abs(v))
	if neg {
		return "-$" + s
	}
	return "$" + s
}

// FormatSignedMoney renders money with an explicit +/- prefix.
func FormatSignedMoney(v float64) string {
	if v < 0 {
		return "-$" + groupThousands(math.Abs(v))
	}
	return "+$" + groupThousands(v)
}

// FormatSignedPct renders a percentage with an explicit +/- prefix and
// 2 decimals, e.g. 1.234 -> "+1.23%".
func FormatSignedPct(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-%.2f%%", math.Abs(v))
	}
	return fmt.Sprintf("+%.2f%%", v)
}

// groupThousands formats a non-negative value with 2 decimals and commas.
func groupThousands(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	dot := strings.Index(s, ".")
	intPart, fracPart := s[:dot], s[dot:]

	n := len(intPart)
	if n <= 3 {
		return intPart + fracPart
	}

	var sb strings.Builder
	lead := n % 3
	if lead > 0 {
		sb.WriteString(intPart[:lead])
	}
	for i := lead; i < n; i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(intPart[i : i+3])
	}
	return sb.String() + fracPart
}
