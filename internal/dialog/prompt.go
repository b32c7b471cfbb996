package dialog

import (
	"fmt"
	"strings"

	"github.com/minhdn/jarbot/internal/domain"
)

// Choice is one button the transport should render under a prompt. Data is
// the encoded action identifier delivered back on press.
type Choice struct {
	Label string
	Data  string
}

// Prompt is what the controller asks the transport to show: a text block
// plus zero or more buttons. The zero Prompt means "render nothing".
type Prompt struct {
	Text    string
	Choices []Choice
}

// IsZero reports whether the prompt carries nothing to render.
func (p Prompt) IsZero() bool {
	return p.Text == "" && len(p.Choices) == 0
}

func choice(label string, a domain.Action) Choice {
	return Choice{Label: label, Data: a.Encode()}
}

// formatVND renders an amount with Vietnamese thousands grouping: 1500000 →
// "1.500.000đ".
func formatVND(amount int64) string {
	s := fmt.Sprintf("%d", amount)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := b.String() + "đ"
	if neg {
		return "-" + out
	}
	return out
}

func categoryLabel(c domain.Category) string {
	if c.Icon != "" {
		return c.Icon + " " + c.Name
	}
	return c.Name
}

func bucketLabel(b domain.Bucket) string {
	if p := b.Percent(); p > 0 {
		return fmt.Sprintf("%s (%s %d%%)", b.Name(), b, p)
	}
	return b.Name()
}

// draftSummary renders the full draft for the confirmation screen.
func draftSummary(d *domain.TransactionDraft) string {
	var b strings.Builder
	b.WriteString("💾 Xác nhận giao dịch\n")
	fmt.Fprintf(&b, "Loại: %s\n", d.Kind.Label())
	fmt.Fprintf(&b, "Số tiền: %s\n", formatVND(d.Amount))
	if d.Category != nil {
		fmt.Fprintf(&b, "Danh mục: %s\n", categoryLabel(*d.Category))
	}
	if d.Bucket != "" {
		fmt.Fprintf(&b, "Hũ: %s\n", bucketLabel(d.Bucket))
	}
	if d.Account != "" {
		fmt.Fprintf(&b, "Tài khoản: %s\n", d.Account.Name())
	}
	fmt.Fprintf(&b, "Ghi chú: %s", d.Note)
	return b.String()
}

func confirmPrompt(d *domain.TransactionDraft) Prompt {
	return Prompt{
		Text: draftSummary(d),
		Choices: []Choice{
			choice("✅ Xác nhận", domain.Action{Type: domain.ActionConfirm}),
			choice("✏️ Danh mục", domain.Action{Type: domain.ActionEditCategory}),
			choice("✏️ Hũ", domain.Action{Type: domain.ActionEditJar}),
			choice("✏️ Tài khoản", domain.Action{Type: domain.ActionEditAccount}),
			choice("❌ Hủy", domain.Action{Type: domain.ActionCancel}),
		},
	}
}

func jarMenuPrompt(d *domain.TransactionDraft) Prompt {
	p := Prompt{Text: fmt.Sprintf("%s %s — chọn hũ:", d.Kind.Label(), formatVND(d.Amount))}
	for _, b := range domain.Buckets() {
		p.Choices = append(p.Choices, choice(bucketLabel(b), domain.Action{Type: domain.ActionPickJar, Bucket: b}))
	}
	p.Choices = append(p.Choices,
		choice("🔄 "+domain.BucketAuto.Name(), domain.Action{Type: domain.ActionPickJar, Bucket: domain.BucketAuto}),
		choice("⏭ "+domain.BucketNone.Name(), domain.Action{Type: domain.ActionPickJar, Bucket: domain.BucketNone}),
	)
	return p
}

func accountMenuPrompt(d *domain.TransactionDraft) Prompt {
	p := Prompt{Text: fmt.Sprintf("%s %s — chọn tài khoản:", d.Kind.Label(), formatVND(d.Amount))}
	for _, a := range domain.Accounts() {
		p.Choices = append(p.Choices, choice(a.Name(), domain.Action{Type: domain.ActionPickAccount, Account: a}))
	}
	return p
}

func categoryMenuPrompt(d *domain.TransactionDraft, cats []domain.Category, showAll bool) Prompt {
	text := fmt.Sprintf("Không nhận ra danh mục cho %q — chọn giúp mình:", d.Note)
	if d.Stage == domain.StageEditCategory {
		text = "Chọn danh mục mới:"
	}
	p := Prompt{Text: text}
	for _, c := range cats {
		p.Choices = append(p.Choices, choice(categoryLabel(c), domain.Action{Type: domain.ActionPickCategory, CategoryID: c.ID}))
	}
	if !showAll {
		p.Choices = append(p.Choices, choice("📋 Tất cả danh mục", domain.Action{Type: domain.ActionShowAll}))
	}
	return p
}

func committedPrompt(entry domain.CommittedEntry) Prompt {
	var b strings.Builder
	b.WriteString("✅ Đã ghi sổ!\n")
	fmt.Fprintf(&b, "%s %s", entry.Kind.Label(), formatVND(entry.Amount))
	if entry.Category != "" {
		fmt.Fprintf(&b, " · %s", entry.Category)
	}
	if entry.Bucket != "" {
		fmt.Fprintf(&b, " · %s", entry.Bucket.Name())
	}
	if !entry.Timestamp.IsZero() {
		fmt.Fprintf(&b, "\nLúc: %s", entry.Timestamp.Format("15:04 02/01/2006"))
	}
	return Prompt{Text: b.String()}
}

func commitFailedPrompt(err error) Prompt {
	return Prompt{
		Text: fmt.Sprintf("⚠️ Chưa ghi được vào sổ (%v).\nGiao dịch vẫn được giữ, thử lại nhé.", err),
		Choices: []Choice{
			choice("🔁 Thử lại", domain.Action{Type: domain.ActionRetry}),
			choice("❌ Hủy", domain.Action{Type: domain.ActionCancel}),
		},
	}
}

func cancelledPrompt() Prompt {
	return Prompt{Text: "Đã hủy giao dịch."}
}
