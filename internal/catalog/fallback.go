package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/minhdn/jarbot/internal/domain"
)

// FallbackVersion tags the built-in catalog so degraded-mode classifications
// can be traced back to the exact table that produced them.
const FallbackVersion = "fallback-v1"

// Fallback returns the fixed built-in catalog used when the remote fetch
// fails. The slice is freshly allocated on every call; callers may mutate it.
func Fallback() []domain.Category {
	return []domain.Category{
		{ID: "fb-01", Name: "Ăn uống", Kind: domain.KindExpense, Icon: "🍜", DefaultBucket: "", AutoAllocate: false},
		{ID: "fb-02", Name: "Di chuyển", Kind: domain.KindExpense, Icon: "🚕"},
		{ID: "fb-03", Name: "Hóa đơn", Kind: domain.KindExpense, Icon: "🧾", DefaultBucket: domain.BucketNEC},
		{ID: "fb-04", Name: "Mua sắm", Kind: domain.KindExpense, Icon: "🛍️"},
		{ID: "fb-05", Name: "Giải trí", Kind: domain.KindExpense, Icon: "🎮", DefaultBucket: domain.BucketPLAY},
		{ID: "fb-06", Name: "Sức khỏe", Kind: domain.KindExpense, Icon: "💊"},
		{ID: "fb-07", Name: "Giáo dục", Kind: domain.KindExpense, Icon: "📚", DefaultBucket: domain.BucketEDU},
		{ID: "fb-08", Name: "Đầu tư", Kind: domain.KindExpense, Icon: "📈", DefaultBucket: domain.BucketFFA, AutoAllocate: true},
		{ID: "fb-09", Name: "Khác", Kind: domain.KindExpense, Icon: "📦"},
		{ID: "fb-10", Name: "Lương", Kind: domain.KindIncome, Icon: "💰", AutoAllocate: true},
		{ID: "fb-11", Name: "Thưởng", Kind: domain.KindIncome, Icon: "🎁"},
		{ID: "fb-12", Name: "Bán hàng", Kind: domain.KindIncome, Icon: "🛒"},
		{ID: "fb-13", Name: "Thu khác", Kind: domain.KindIncome, Icon: "💵"},
	}
}

// fallbackFile mirrors the YAML override layout.
type fallbackFile struct {
	Version    string            `yaml:"version"`
	Categories []domain.Category `yaml:"categories"`
}

// LoadFallback reads a replacement fallback catalog from a YAML file, for
// deployments whose degraded-mode categories differ from the defaults.
func LoadFallback(path string) ([]domain.Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadFallback: %w", err)
	}
	var f fallbackFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("LoadFallback: parse %s: %w", path, err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("LoadFallback: %s contains no categories", path)
	}
	return f.Categories, nil
}
