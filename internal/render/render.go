// Package render formats roster and report data as chat replies and
// export documents.
//
// Chat texts use Telegram's legacy Markdown: *bold*, [label](url) links and
// backslash escapes for _ * ` [. Export documents are plain CommonMark.
package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmynk/workpilot/internal/calculator"
	"github.com/mmynk/workpilot/internal/models"
)

// MessageLimit is the longest reply, in characters, sent as one message.
const MessageLimit = 4000

// TimeLayout formats submission and generation timestamps.
const TimeLayout = "2006-01-02 15:04:05"

// Renderer formats timestamps in a fixed zone.
type Renderer struct {
	loc *time.Location
}

// New returns a Renderer for loc. A nil loc means UTC.
func New(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{loc: loc}
}

// Status renders the submission progress of a period.
func (r *Renderer) Status(periodID string, p calculator.Progress) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *%s 周报状态*\n\n", periodID)
	fmt.Fprintf(&b, "已提交: %d/%d\n\n", len(p.Submitted), p.Total)

	if len(p.Submitted) > 0 {
		b.WriteString("✅ *已提交:*\n")
		for _, m := range p.Submitted {
			fmt.Fprintf(&b, "  • %s\n", EscapeMarkdown(m.Name))
		}
	}
	if len(p.Pending) > 0 {
		fmt.Fprintf(&b, "\n⏳ *未提交 (%d人):*\n", len(p.Pending))
		for _, m := range p.Pending {
			fmt.Fprintf(&b, "  • %s\n", EscapeMarkdown(m.Name))
		}
	}
	return b.String()
}

// Summary renders every report of a period followed by the pending members.
func (r *Renderer) Summary(groupName, periodID string, reports []models.Report, pending []models.PendingMember) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *%s - %s 周报汇总*\n", EscapeMarkdown(groupName), periodID)
	b.WriteString(strings.Repeat("=", 40) + "\n\n")

	if len(reports) == 0 {
		b.WriteString("暂无周报提交\n")
	}
	for _, rep := range reports {
		fmt.Fprintf(&b, "👤 *%s*\n", EscapeMarkdown(rep.Name))
		fmt.Fprintf(&b, "提交时间: %s\n", r.formatTime(rep.SubmittedAt))
		fmt.Fprintf(&b, "内容:\n%s\n", rep.Content)
		b.WriteString(strings.Repeat("-", 30) + "\n\n")
	}

	if len(pending) > 0 {
		fmt.Fprintf(&b, "\n⚠️ *未提交周报的成员 (%d人)*:\n", len(pending))
		for _, m := range pending {
			fmt.Fprintf(&b, "- %s\n", EscapeMarkdown(m.Name))
		}
	}
	return b.String()
}

// Markdown renders the export document of a period.
func (r *Renderer) Markdown(groupName, periodID string, reports []models.Report, generatedAt time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s - %s 周报汇总\n\n", groupName, periodID)
	fmt.Fprintf(&b, "生成时间: %s\n\n", r.formatTime(generatedAt))
	b.WriteString("---\n\n")

	for _, rep := range reports {
		fmt.Fprintf(&b, "## %s\n\n", rep.Name)
		fmt.Fprintf(&b, "**提交时间**: %s\n\n", r.formatTime(rep.SubmittedAt))
		fmt.Fprintf(&b, "%s\n\n", rep.Content)
		b.WriteString("---\n\n")
	}
	return b.String()
}

// Members renders the roster.
func (r *Renderer) Members(members []models.Member) string {
	if len(members) == 0 {
		return "暂无注册成员，请使用 /register 注册"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "👥 *已注册成员 (%d人)*\n\n", len(members))
	for _, m := range members {
		fmt.Fprintf(&b, "• %s\n", EscapeMarkdown(m.Name))
	}
	return b.String()
}

// Excluded renders the exclusion list.
func (r *Renderer) Excluded(members []models.Member) string {
	if len(members) == 0 {
		return "暂无排除的成员"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🚫 *已排除成员 (%d人)*\n\n", len(members))
	for _, m := range members {
		fmt.Fprintf(&b, "• %s\n", EscapeMarkdown(m.Name))
	}
	return b.String()
}

func (r *Renderer) formatTime(t time.Time) string {
	return t.In(r.loc).Format(TimeLayout)
}

// Mention renders a link that notifies the member when sent. Link text is
// not subject to backslash escapes, so brackets that would end it are dropped.
func Mention(m models.PendingMember) string {
	return "[" + linkText.Replace(m.Name) + "](tg://user?id=" + strconv.FormatInt(m.ID, 10) + ")"
}

var linkText = strings.NewReplacer("[", "", "]", "")

// Mentions renders one mention per member, joined by spaces, in order.
func Mentions(pending []models.PendingMember) string {
	parts := make([]string, len(pending))
	for i, m := range pending {
		parts[i] = Mention(m)
	}
	return strings.Join(parts, " ")
}

var markdownEscaper = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"`", "\\`",
	"[", `\[`,
)

// EscapeMarkdown escapes the characters legacy Markdown treats as entities.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// Chunk splits text into pieces of at most limit characters. A piece ends
// after the last newline in the second half of its window when there is one.
// Multi-byte characters are never split. Concatenating the pieces yields text.
func Chunk(text string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	for text != "" {
		if utf8.RuneCountInString(text) <= limit {
			chunks = append(chunks, text)
			break
		}
		// Byte offset just past the limit-th rune.
		cut, n := 0, 0
		for i := range text {
			if n == limit {
				cut = i
				break
			}
			n++
		}
		if nl := strings.LastIndexByte(text[:cut], '\n'); nl > cut/2 {
			cut = nl + 1
		}
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	return chunks
}
