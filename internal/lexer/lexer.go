// Package lexer turns short free-text messages ("cà phê 35k", "thu lương
// 5tr") into a typed amount + note. It is pure and synchronous; a failed
// parse means "not a transaction message", never an error.
package lexer

import (
	"strings"
	"unicode"

	"github.com/minhdn/jarbot/internal/domain"
)

// DefaultNote is used when stripping the amount and markers leaves nothing.
const DefaultNote = "Giao dịch"

// candidate is one numeric span found in the message.
type candidate struct {
	fieldIdx  int
	suffixIdx int // index of a separate suffix token, or -1
	value     int64
	hasSuffix bool
}

// Parse extracts (kind, amount, note) from a raw message. ok is false when no
// valid positive amount is present; the caller then leaves the message to
// other interpretation paths.
func Parse(text string) (domain.ParsedIntent, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return domain.ParsedIntent{}, false
	}

	// Lowercased, punctuation-trimmed view of each token, used for keyword
	// matching only. The original fields keep their casing for the note.
	clean := make([]string, len(fields))
	for i, f := range fields {
		clean[i] = strings.ToLower(strings.TrimFunc(f, isTokenPunct))
	}

	amt, ok := findAmount(fields, clean)
	if !ok {
		return domain.ParsedIntent{}, false
	}

	skip := make(map[int]bool, len(fields))
	skip[amt.fieldIdx] = true
	if amt.suffixIdx >= 0 {
		skip[amt.suffixIdx] = true
	}

	kind, explicit := detectKind(clean, skip)

	// Strip grammar markers everywhere; strip "mua"-class markers only when
	// glued to the amount.
	for i, tok := range clean {
		if skip[i] {
			continue
		}
		if _, isGrammar := grammarMarkers[tok]; isGrammar {
			skip[i] = true
			continue
		}
		if strippedBeforeAmount[tok] && i == amt.fieldIdx-1 {
			skip[i] = true
		}
	}

	var kept []string
	for i, f := range fields {
		if !skip[i] {
			kept = append(kept, f)
		}
	}
	note := strings.Join(kept, " ")
	if note == "" {
		note = DefaultNote
	}

	if !explicit {
		kind = domain.KindExpense
		for i, tok := range clean {
			if !skip[i] && incomeHints[tok] {
				kind = domain.KindIncome
				break
			}
		}
	}

	return domain.ParsedIntent{Kind: kind, Amount: amt.value, Note: note}, true
}

// detectKind scans for explicit type markers. Priority is investment >
// expense > income regardless of token order.
func detectKind(clean []string, skip map[int]bool) (domain.Kind, bool) {
	for _, phrase := range investmentPhrases {
		if hasPhrase(clean, phrase) {
			return domain.KindInvestment, true
		}
	}

	var expense, income bool
	for i, tok := range clean {
		if skip[i] {
			continue
		}
		if k, ok := grammarMarkers[tok]; ok {
			expense = expense || k == domain.KindExpense
			income = income || k == domain.KindIncome
		}
		if k, ok := semanticMarkers[tok]; ok {
			expense = expense || k == domain.KindExpense
			income = income || k == domain.KindIncome
		}
	}
	switch {
	case expense:
		return domain.KindExpense, true
	case income:
		return domain.KindIncome, true
	}
	return "", false
}

func hasPhrase(clean []string, phrase []string) bool {
	for i := 0; i+len(phrase) <= len(clean); i++ {
		match := true
		for j, w := range phrase {
			if clean[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// findAmount scans every token for a numeric span and picks the winner: the
// first span carrying a magnitude suffix, or failing that the first bare one.
func findAmount(fields, clean []string) (candidate, bool) {
	var (
		first    candidate
		haveBare bool
	)
	for i := range fields {
		c, ok := parseAmountToken(fields, clean, i)
		if !ok {
			continue
		}
		if c.hasSuffix {
			return c, true
		}
		if !haveBare {
			first = c
			haveBare = true
		}
	}
	return first, haveBare
}

// parseAmountToken tries to read fields[i] as an amount, optionally consuming
// fields[i+1] as a standalone suffix word ("5 triệu").
func parseAmountToken(fields, clean []string, i int) (candidate, bool) {
	runes := []rune(fields[i])

	// Skip leading punctuation/currency symbols; a letter before the first
	// digit disqualifies the span (product codes like "SP500", "CAT001").
	start := 0
	for start < len(runes) && !unicode.IsDigit(runes[start]) {
		if unicode.IsLetter(runes[start]) {
			return candidate{}, false
		}
		start++
	}
	if start == len(runes) {
		return candidate{}, false
	}

	end := start
	for end < len(runes) && (unicode.IsDigit(runes[end]) || runes[end] == ',' || runes[end] == '.') {
		end++
	}
	numStr := strings.TrimRight(string(runes[start:end]), ",.")

	intPart, fracPart, ok := splitNumber(numStr)
	if !ok {
		return candidate{}, false
	}

	c := candidate{fieldIdx: i, suffixIdx: -1}

	rest := strings.ToLower(strings.TrimFunc(string(runes[end:]), isTokenPunct))
	switch {
	case rest == "":
		// Suffix may live in the next token ("1,5 triệu").
		if i+1 < len(fields) {
			if _, ok := amountSuffixes[clean[i+1]]; ok {
				rest = clean[i+1]
				c.suffixIdx = i + 1
			}
		}
	default:
		if _, ok := amountSuffixes[rest]; !ok {
			// Trailing letters that are not a magnitude suffix make this an
			// identifier-like token, not an amount.
			return candidate{}, false
		}
	}

	mult := int64(1)
	if rest != "" {
		mult = amountSuffixes[rest]
		c.hasSuffix = true
	}

	value, ok := scaleAmount(intPart, fracPart, mult)
	if !ok || value <= 0 {
		return candidate{}, false
	}
	c.value = value
	return c, true
}

// splitNumber resolves separator ambiguity: groups of exactly three digits
// after a separator are thousands grouping ("1,500,000"); a single short
// trailing group is a decimal fraction ("1,5"). Mixed separators are
// rejected.
func splitNumber(s string) (intPart string, fracPart string, ok bool) {
	if s == "" {
		return "", "", false
	}
	sep := byte(0)
	for i := 0; i < len(s); i++ {
		if s[i] == ',' || s[i] == '.' {
			if sep != 0 && s[i] != sep {
				return "", "", false
			}
			sep = s[i]
		}
	}
	if sep == 0 {
		return s, "", true
	}

	groups := strings.Split(s, string(sep))
	for _, g := range groups {
		if g == "" {
			return "", "", false
		}
	}

	grouping := true
	for _, g := range groups[1:] {
		if len(g) != 3 {
			grouping = false
			break
		}
	}
	if grouping {
		return strings.Join(groups, ""), "", true
	}
	if len(groups) == 2 {
		return groups[0], groups[1], true
	}
	return "", "", false
}

// scaleAmount computes intPart.fracPart × mult in integer arithmetic. A
// fraction is only valid when the multiplier absorbs it completely ("1,5
// triệu" works, a bare "1,5" does not).
func scaleAmount(intPart, fracPart string, mult int64) (int64, bool) {
	whole, ok := parseDigits(intPart)
	if !ok {
		return 0, false
	}
	value := whole * mult

	if fracPart == "" {
		return value, true
	}
	frac, ok := parseDigits(fracPart)
	if !ok {
		return 0, false
	}
	scale := int64(1)
	for range fracPart {
		scale *= 10
	}
	if mult%scale != 0 {
		return 0, false
	}
	return value + frac*(mult/scale), true
}

func parseDigits(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	var n int64
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int64(s[i]-'0')
	}
	return n, true
}

func isTokenPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
