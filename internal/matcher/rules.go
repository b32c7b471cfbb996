package matcher

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/minhdn/jarbot/internal/domain"
)

// Rule maps a set of note keywords to a target category name. Rules are
// checked in declaration order, so earlier entries take priority.
type Rule struct {
	Category string      `yaml:"category"`
	Kind     domain.Kind `yaml:"kind"`
	Keywords []string    `yaml:"keywords"`
}

// RuleSet is an ordered keyword→category lookup table. It is plain data so
// the classification rules can be tested and extended independently of the
// dialog code.
type RuleSet struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a rule table from a YAML file.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadRules: %w", err)
	}

	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("LoadRules: parse %s: %w", path, err)
	}
	for i := range rs.Rules {
		for j, kw := range rs.Rules[i].Keywords {
			rs.Rules[i].Keywords[j] = strings.ToLower(strings.TrimSpace(kw))
		}
	}
	return &rs, nil
}

// Lookup returns the target category name of the first rule whose kind
// matches and whose keyword occurs in the note.
func (rs *RuleSet) Lookup(note string, kind domain.Kind) (string, bool) {
	lower := strings.ToLower(note)
	for _, rule := range rs.Rules {
		if !kindMatches(rule.Kind, kind) {
			continue
		}
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(lower, kw) {
				return rule.Category, true
			}
		}
	}
	return "", false
}

// kindMatches pairs a category-side kind with an intent kind. Investment
// intents are money going out, so they match expense-side categories.
func kindMatches(catKind, intentKind domain.Kind) bool {
	if intentKind == domain.KindInvestment {
		return catKind == domain.KindExpense || catKind == domain.KindInvestment
	}
	return catKind == intentKind
}

// DefaultRules is the compiled-in rule table used when no YAML override is
// configured.
func DefaultRules() *RuleSet {
	return &RuleSet{Rules: []Rule{
		{Category: "Ăn uống", Kind: domain.KindExpense, Keywords: []string{
			"cà phê", "ca phe", "cafe", "coffee", "trà sữa", "ăn", "cơm", "phở",
			"bún", "bánh", "nhậu", "quán", "nhà hàng",
		}},
		{Category: "Di chuyển", Kind: domain.KindExpense, Keywords: []string{
			"xăng", "grab", "taxi", "gửi xe", "vé xe", "xe bus", "xe buýt", "tàu",
		}},
		{Category: "Hóa đơn", Kind: domain.KindExpense, Keywords: []string{
			"tiền điện", "tiền nước", "internet", "wifi", "tiền nhà", "thuê nhà",
			"điện thoại", "hóa đơn",
		}},
		{Category: "Mua sắm", Kind: domain.KindExpense, Keywords: []string{
			"quần áo", "giày", "mua sắm", "shopee", "lazada", "tiki",
		}},
		{Category: "Giải trí", Kind: domain.KindExpense, Keywords: []string{
			"phim", "game", "karaoke", "du lịch", "nhạc",
		}},
		{Category: "Sức khỏe", Kind: domain.KindExpense, Keywords: []string{
			"thuốc", "khám", "bệnh viện", "gym",
		}},
		{Category: "Giáo dục", Kind: domain.KindExpense, Keywords: []string{
			"học phí", "sách", "khóa học", "học",
		}},
		{Category: "Đầu tư", Kind: domain.KindExpense, Keywords: []string{
			"đầu tư", "btc", "bitcoin", "crypto", "chứng khoán", "cổ phiếu",
			"vàng", "quỹ",
		}},
		{Category: "Lương", Kind: domain.KindIncome, Keywords: []string{
			"lương", "luong",
		}},
		{Category: "Thưởng", Kind: domain.KindIncome, Keywords: []string{
			"thưởng", "bonus",
		}},
		{Category: "Bán hàng", Kind: domain.KindIncome, Keywords: []string{
			"bán", "đơn hàng",
		}},
	}}
}
