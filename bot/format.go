// Package bot owns the Telegram-facing surface: message formatting, the item
// keyboard, and command/callback handling.
package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"digest-bot/fetch"
	"digest-bot/storage"
)

func EscapeHTML(text string) string {
	return html.EscapeString(text)
}

// SourceEmoji returns the marker shown before an item's title.
func SourceEmoji(source string) string {
	switch source {
	case fetch.SourceHackerNews:
		return "🔶"
	case fetch.SourceGeekNews:
		return "🇰🇷"
	case fetch.SourceGitHub:
		return "🐙"
	case fetch.SourceProductHunt:
		return "🚀"
	default:
		return "📰"
	}
}

// FormatDigestHeader announces a batch before its items are delivered.
func FormatDigestHeader(batch string, total int) string {
	var label string
	switch batch {
	case storage.BatchMorning:
		label = "🌅 아침"
	case storage.BatchEvening:
		label = "🌙 저녁"
	default:
		label = "⚡ 수동"
	}

	return fmt.Sprintf(
		"<b>%s 테크 다이제스트</b>\n\n📰 오늘의 뉴스 %d개를 요약해서 보내드립니다.",
		label, total,
	)
}

// FormatDigestItem renders one delivered item with its 1-indexed position,
// summary and the sources it was also seen on.
func FormatDigestItem(item fetch.Item, summary string, index, total int) string {
	var related string
	if len(item.Related) > 0 {
		sources := make([]string, 0, len(item.Related))
		for _, r := range item.Related {
			sources = append(sources, r.Source)
		}
		related = fmt.Sprintf("\n🔗 Also on: %s", strings.Join(sources, ", "))
	}

	return fmt.Sprintf(
		"<b>%s [%d/%d] %s</b>\n\n%s\n%s\n🔗 <a href=\"%s\">원문 보기</a>",
		SourceEmoji(item.Source), index, total, EscapeHTML(item.Title),
		EscapeHTML(summary), related, item.URL,
	)
}

// FormatItemDetail re-renders a stored item with its summary for the detail
// callback.
func FormatItemDetail(item *storage.Item, summary string) string {
	return fmt.Sprintf(
		"<b>%s %s</b>\n\n%s\n\n🔗 <a href=\"%s\">원문 보기</a>",
		SourceEmoji(item.Source), EscapeHTML(item.Title),
		EscapeHTML(summary), item.URL,
	)
}

func FormatSearchResults(keyword string, results []storage.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("'%s' 검색 결과가 없습니다.", EscapeHTML(keyword))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>🔍 '%s' 검색 결과 (%d개)</b>\n\n", EscapeHTML(keyword), len(results)))

	for i, result := range results {
		if i >= 10 {
			sb.WriteString(fmt.Sprintf("... 외 %d개 결과", len(results)-10))
			break
		}
		sb.WriteString(fmt.Sprintf(
			"%d. <b>%s</b>\n   출처: %s\n   요약: %s\n   링크: %s\n\n",
			i+1, EscapeHTML(result.Title), result.Source,
			EscapeHTML(truncate(result.SummaryText, 100)), result.URL,
		))
	}

	return sb.String()
}

func FormatBookmarks(bookmarks []storage.Bookmark) string {
	if len(bookmarks) == 0 {
		return "저장된 북마크가 없습니다."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>🔖 저장한 북마크 (%d개)</b>\n\n", len(bookmarks)))

	for i, b := range bookmarks {
		if i >= 10 {
			sb.WriteString(fmt.Sprintf("... 외 %d개 북마크", len(bookmarks)-10))
			break
		}
		summary := b.SummaryText
		if summary == "" {
			summary = "N/A"
		}
		sb.WriteString(fmt.Sprintf(
			"%d. <b>%s</b>\n   출처: %s\n   요약: %s\n   링크: %s\n\n",
			i+1, EscapeHTML(b.Title), b.Source,
			EscapeHTML(truncate(summary, 100)), b.URL,
		))
	}

	return sb.String()
}

func FormatRelatedItems(source string, items []storage.Item) string {
	if len(items) == 0 {
		return "관련 글이 없습니다."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>🔗 %s %s 관련 글</b>\n\n", SourceEmoji(source), source))
	for i, item := range items {
		sb.WriteString(fmt.Sprintf(
			"%d. <a href=\"%s\">%s</a>\n",
			i+1, item.URL, EscapeHTML(item.Title),
		))
	}

	return sb.String()
}

func FormatSchedule(morning, evening string) string {
	return fmt.Sprintf(
		"<b>⚙️ 스케줄 설정</b>\n\n🌅 아침 다이제스트: %s\n🌙 저녁 다이제스트: %s",
		morning, evening,
	)
}

func FormatWelcome() string {
	return "<b>Tech Digest Bot</b>\n\n" +
		"AI 기반 기술 뉴스 다이제스트 봇입니다.\n\n" +
		"<b>명령어:</b>\n" +
		"/start - 시작 메시지\n" +
		"/help - 도움말\n" +
		"/digest - 오늘의 다이제스트 생성\n" +
		"/search &lt;키워드&gt; - 요약 검색\n" +
		"/bookmarks - 저장한 북마크 보기\n" +
		"/settings - 스케줄 설정 보기"
}

func FormatHelp() string {
	return "<b>도움말</b>\n\n" +
		"<b>사용 가능한 명령어:</b>\n" +
		"/start - 봇 시작 및 환영 메시지\n" +
		"/help - 이 도움말 표시\n" +
		"/digest - 오늘의 기술 뉴스 다이제스트 생성\n" +
		"/search &lt;키워드&gt; - 요약에서 키워드 검색\n" +
		"/bookmarks - 저장한 북마크 목록 보기\n" +
		"/settings - 현재 스케줄 설정 확인\n\n" +
		"<b>기능:</b>\n" +
		"• Hacker News, GeekNews, Product Hunt, GitHub 트렌딩에서 뉴스 수집\n" +
		"• AI 기반 요약 및 한국어 번역\n" +
		"• 북마크 및 관련 글 검색"
}

// ParseCallback splits keyboard callback data of the form "action:itemID".
func ParseCallback(data string) (string, int64, error) {
	parts := strings.SplitN(data, ":", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("invalid callback data: %s", data)
	}

	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid item id in callback data: %s", data)
	}

	return parts[0], id, nil
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
