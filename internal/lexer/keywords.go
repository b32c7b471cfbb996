package lexer

import (
	"github.com/minhdn/jarbot/internal/domain"
)

// Keyword tables are kept as data so the matching rules can be reviewed and
// extended without touching the scanner.
//
// Grammar markers are pure function words ("chi 35k", "thu lương"): they only
// signal the transaction type and are always removed from the note. Semantic
// markers usually double as the category itself ("lương", "thưởng"), so they
// stay in the note; the one exception is "mua", which is dropped when it sits
// directly in front of the amount and carries no information of its own.

// grammarMarkers maps a standalone token to the kind it signals.
var grammarMarkers = map[string]domain.Kind{
	"chi":  domain.KindExpense,
	"tiêu": domain.KindExpense,
	"trả":  domain.KindExpense,
	"tra":  domain.KindExpense,
	"thu":  domain.KindIncome,
	"nhận": domain.KindIncome,
}

// semanticMarkers signal a kind but are kept in the note.
var semanticMarkers = map[string]domain.Kind{
	"mua":    domain.KindExpense,
	"sắm":    domain.KindExpense,
	"bán":    domain.KindIncome,
	"lương":  domain.KindIncome,
	"luong":  domain.KindIncome,
	"thưởng": domain.KindIncome,
}

// strippedBeforeAmount lists the semantic markers that are dropped from the
// note only when the very next token is the amount.
var strippedBeforeAmount = map[string]bool{
	"mua": true,
}

// investmentPhrases are token sequences that force KindInvestment. Investment
// outranks expense, which outranks income.
var investmentPhrases = [][]string{
	{"đầu", "tư"},
	{"dau", "tu"},
}

// incomeHints is the fallback table: when no explicit marker fired, a note
// containing one of these tokens defaults to income instead of expense.
var incomeHints = map[string]bool{
	"lương":  true,
	"luong":  true,
	"thưởng": true,
	"bán":    true,
	"lãi":    true,
	"lãnh":   true,
}

// amountSuffixes maps a magnitude suffix to its multiplier.
var amountSuffixes = map[string]int64{
	"k":     1_000,
	"nghìn": 1_000,
	"nghin": 1_000,
	"tr":    1_000_000,
	"triệu": 1_000_000,
	"trieu": 1_000_000,
}
