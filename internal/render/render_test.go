package render

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/workpilot/internal/calculator"
	"github.com/mmynk/workpilot/internal/models"
)

var shanghai = time.FixedZone("CST", 8*3600)

func TestStatus(t *testing.T) {
	r := New(shanghai)
	p := calculator.Progress{
		Submitted: []models.Member{{ID: 1, Name: "A"}},
		Pending:   []models.PendingMember{{ID: 2, Name: "B"}, {ID: 3, Name: "C"}},
		Total:     3,
	}

	want := "📊 *2024-W10 周报状态*\n\n" +
		"已提交: 1/3\n\n" +
		"✅ *已提交:*\n  • A\n" +
		"\n⏳ *未提交 (2人):*\n  • B\n  • C\n"
	assert.Equal(t, want, r.Status("2024-W10", p))
}

func TestSummary(t *testing.T) {
	r := New(shanghai)
	submitted := time.Date(2024, 3, 6, 2, 30, 0, 0, time.UTC)

	t.Run("reports and pending", func(t *testing.T) {
		got := r.Summary("Team", "2024-W10",
			[]models.Report{{MemberID: 1, Name: "A", Content: "done", SubmittedAt: submitted}},
			[]models.PendingMember{{ID: 2, Name: "B"}},
		)
		assert.True(t, strings.HasPrefix(got, "📊 *Team - 2024-W10 周报汇总*\n"+strings.Repeat("=", 40)+"\n\n"))
		assert.Contains(t, got, "👤 *A*\n提交时间: 2024-03-06 10:30:00\n内容:\ndone\n"+strings.Repeat("-", 30)+"\n\n")
		assert.True(t, strings.HasSuffix(got, "\n⚠️ *未提交周报的成员 (1人)*:\n- B\n"))
	})

	t.Run("no reports", func(t *testing.T) {
		got := r.Summary("Team", "2024-W10", nil, nil)
		assert.Contains(t, got, "暂无周报提交\n")
		assert.NotContains(t, got, "未提交周报的成员")
	})
}

func TestMarkdown(t *testing.T) {
	r := New(shanghai)
	generated := time.Date(2024, 3, 8, 9, 0, 0, 0, shanghai)
	reports := []models.Report{
		{MemberID: 1, Name: "A", Content: "first", SubmittedAt: generated.Add(-time.Hour)},
		{MemberID: 2, Name: "B", Content: "second", SubmittedAt: generated.Add(-time.Minute)},
	}

	want := "# Team - 2024-W10 周报汇总\n\n" +
		"生成时间: 2024-03-08 09:00:00\n\n" +
		"---\n\n" +
		"## A\n\n**提交时间**: 2024-03-08 08:00:00\n\nfirst\n\n---\n\n" +
		"## B\n\n**提交时间**: 2024-03-08 08:59:00\n\nsecond\n\n---\n\n"
	assert.Equal(t, want, r.Markdown("Team", "2024-W10", reports, generated))
}

func TestMembers(t *testing.T) {
	r := New(nil)
	assert.Equal(t, "暂无注册成员，请使用 /register 注册", r.Members(nil))
	assert.Equal(t, "👥 *已注册成员 (2人)*\n\n• A\n• snake\\_case\n",
		r.Members([]models.Member{{ID: 1, Name: "A"}, {ID: 2, Name: "snake_case"}}))
	assert.Equal(t, "暂无排除的成员", r.Excluded(nil))
}

func TestMentions(t *testing.T) {
	got := Mentions([]models.PendingMember{{ID: 2, Name: "B"}, {ID: 3, Name: "C"}})
	assert.Equal(t, "[B](tg://user?id=2) [C](tg://user?id=3)", got)
	assert.Equal(t, "", Mentions(nil))
	assert.Equal(t, `[a_b](tg://user?id=7)`, Mention(models.PendingMember{ID: 7, Name: "a_b"}))
	assert.Equal(t, `[john*doe x](tg://user?id=8)`, Mention(models.PendingMember{ID: 8, Name: "[john*doe] x"}))
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, "\\*bold\\* \\_it\\_ \\`code\\` \\[link]", EscapeMarkdown("*bold* _it_ `code` [link]"))
	assert.Equal(t, "张三", EscapeMarkdown("张三"))
}

func TestChunk(t *testing.T) {
	t.Run("short text is one chunk", func(t *testing.T) {
		assert.Equal(t, []string{"hello"}, Chunk("hello", MessageLimit))
	})

	t.Run("multi-byte text is split on character boundaries", func(t *testing.T) {
		text := strings.Repeat("周报", 5000)
		chunks := Chunk(text, MessageLimit)
		require.Len(t, chunks, 3)
		for _, c := range chunks {
			assert.True(t, utf8.ValidString(c))
			assert.LessOrEqual(t, utf8.RuneCountInString(c), MessageLimit)
		}
		assert.Equal(t, text, strings.Join(chunks, ""))
	})

	t.Run("prefers newline boundaries", func(t *testing.T) {
		text := "aaaa\nbbbb\ncc"
		chunks := Chunk(text, 7)
		assert.Equal(t, []string{"aaaa\n", "bbbb\ncc"}, chunks)
	})

	t.Run("early newline is not used", func(t *testing.T) {
		assert.Equal(t, []string{"a\nbcdef", "gh"}, Chunk("a\nbcdefgh", 7))
	})

	t.Run("line longer than limit is cut", func(t *testing.T) {
		assert.Equal(t, []string{"abc", "def", "g"}, Chunk("abcdefg", 3))
	})
}
