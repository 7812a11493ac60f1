package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"digest-bot/storage"
	"digest-bot/summarizer"
)

// Stored content shorter than this is considered sparse; the detail action
// scrapes the article body before summarizing.
const sparseContentThreshold = 200

// Summarizer generates summaries and translations for the interactive actions.
type Summarizer interface {
	Summarize(ctx context.Context, title, url, content string) (string, error)
	Translate(ctx context.Context, text string) (string, error)
}

// Scraper extracts readable article text for sparse items.
type Scraper interface {
	Scrape(ctx context.Context, url string) (string, error)
}

// Handler runs the update loop: commands from the authorized chat and callback
// queries from item keyboards.
type Handler struct {
	api            *tgbotapi.BotAPI
	store          *storage.Storage
	summarizer     Summarizer
	scraper        Scraper
	chatID         int64
	defaultMorning string
	defaultEvening string
	runDigest      func(ctx context.Context, batch string)
	logger         *slog.Logger
}

func NewHandler(
	api *tgbotapi.BotAPI,
	store *storage.Storage,
	summ Summarizer,
	scr Scraper,
	chatID int64,
	defaultMorning, defaultEvening string,
	runDigest func(ctx context.Context, batch string),
	logger *slog.Logger,
) *Handler {
	return &Handler{
		api:            api,
		store:          store,
		summarizer:     summ,
		scraper:        scr,
		chatID:         chatID,
		defaultMorning: defaultMorning,
		defaultEvening: defaultEvening,
		runDigest:      runDigest,
		logger:         logger,
	}
}

func (h *Handler) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return
		case update := <-updates:
			if update.Message != nil && update.Message.IsCommand() {
				h.handleCommand(ctx, update.Message)
			}
			if update.CallbackQuery != nil {
				h.handleCallback(ctx, update.CallbackQuery)
			}
		}
	}
}

func (h *Handler) authorized(chatID int64) bool {
	return chatID == h.chatID
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	if !h.authorized(msg.Chat.ID) {
		h.logger.Warn("Unauthorized access attempt", "chat_id", msg.Chat.ID)
		return
	}

	switch msg.Command() {
	case "start":
		h.reply(FormatWelcome(), 0)

	case "help":
		h.reply(FormatHelp(), 0)

	case "digest":
		h.reply("다이제스트를 생성 중입니다... 잠시만 기다려주세요.", 0)
		go h.runDigest(ctx, storage.BatchManual)

	case "search":
		keyword := strings.TrimSpace(msg.CommandArguments())
		if keyword == "" {
			h.reply("사용법: /search &lt;키워드&gt;\n예: /search AI", 0)
			return
		}
		results, err := h.store.SearchSummaries(keyword)
		if err != nil {
			h.logger.Error("Search failed", "keyword", keyword, "error", err)
			h.reply("검색 중 오류가 발생했습니다.", 0)
			return
		}
		h.reply(FormatSearchResults(keyword, results), 0)

	case "bookmarks":
		userID := strconv.FormatInt(msg.From.ID, 10)
		bookmarks, err := h.store.Bookmarks(userID)
		if err != nil {
			h.logger.Error("Failed to load bookmarks", "user_id", userID, "error", err)
			h.reply("북마크를 불러오지 못했습니다.", 0)
			return
		}
		h.reply(FormatBookmarks(bookmarks), 0)

	case "settings":
		morning, evening := h.store.ScheduleTimes(h.defaultMorning, h.defaultEvening)
		h.reply(FormatSchedule(morning, evening), 0)

	default:
		h.reply("알 수 없는 명령어입니다. /help 를 확인해주세요.", 0)
	}
}

func (h *Handler) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	action, itemID, err := ParseCallback(query.Data)
	if err != nil {
		h.logger.Warn("Invalid callback data", "data", query.Data)
		h.answerCallback(query.ID, "")
		return
	}

	switch action {
	case ActionDetail:
		h.answerCallback(query.ID, "")
		text, err := h.detailResponse(ctx, itemID)
		if err != nil {
			h.logger.Error("Detail action failed", "item_id", itemID, "error", err)
			h.reply("기사를 찾을 수 없습니다.", 0)
			return
		}
		h.reply(text, itemID)

	case ActionTranslate:
		h.answerCallback(query.ID, "")
		text, err := h.translateResponse(ctx, itemID)
		if err != nil {
			h.logger.Error("Translate action failed", "item_id", itemID, "error", err)
			h.reply("번역을 생성할 수 없습니다.", 0)
			return
		}
		h.replyPlain(text)

	case ActionBookmark:
		userID := strconv.FormatInt(query.From.ID, 10)
		added, err := h.store.SaveBookmark(userID, itemID)
		if err != nil {
			h.logger.Error("Bookmark action failed", "item_id", itemID, "error", err)
			h.answerCallback(query.ID, "북마크 저장에 실패했습니다.")
			return
		}
		if added {
			h.answerCallback(query.ID, "북마크에 저장되었습니다!")
		} else {
			h.answerCallback(query.ID, "이미 북마크에 저장된 글입니다.")
		}

	case ActionRelated:
		h.answerCallback(query.ID, "")
		text, err := h.relatedResponse(itemID)
		if err != nil {
			h.logger.Error("Related action failed", "item_id", itemID, "error", err)
			h.reply("관련 글을 찾을 수 없습니다.", 0)
			return
		}
		h.reply(text, 0)

	default:
		h.answerCallback(query.ID, "")
	}
}

// detailResponse renders an item with its latest summary, generating and
// persisting a manual one when none exists yet.
func (h *Handler) detailResponse(ctx context.Context, itemID int64) (string, error) {
	item, err := h.store.GetItem(itemID)
	if err != nil {
		return "", err
	}

	summary, err := h.store.LatestSummary(itemID)
	if err != nil {
		return "", err
	}

	if summary == "" {
		content := item.Content
		if len(content) < sparseContentThreshold {
			if scraped, err := h.scraper.Scrape(ctx, item.URL); err == nil && scraped != "" {
				content = scraped
			}
		}

		summary, err = h.summarizer.Summarize(ctx, item.Title, item.URL, content)
		if err != nil || summary == "" {
			summary = summarizer.Fallback
		}

		if _, err := h.store.SaveSummary(itemID, summary, storage.BatchManual); err != nil {
			h.logger.Error("Failed to save manual summary", "item_id", itemID, "error", err)
		}
	}

	return FormatItemDetail(item, summary), nil
}

func (h *Handler) translateResponse(ctx context.Context, itemID int64) (string, error) {
	summary, err := h.store.LatestSummary(itemID)
	if err != nil {
		return "", err
	}
	if summary == "" {
		return "", fmt.Errorf("no summary to translate for item %d", itemID)
	}

	return h.summarizer.Translate(ctx, summary)
}

func (h *Handler) relatedResponse(itemID int64) (string, error) {
	item, err := h.store.GetItem(itemID)
	if err != nil {
		return "", err
	}

	items, err := h.store.RecentBySource(item.Source, itemID, 5)
	if err != nil {
		return "", err
	}

	return FormatRelatedItems(item.Source, items), nil
}

func (h *Handler) reply(text string, itemID int64) {
	msg := tgbotapi.NewMessage(h.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if itemID != 0 {
		msg.ReplyMarkup = ItemKeyboard(itemID)
	}

	if _, err := h.api.Send(msg); err != nil {
		h.logger.Error("Failed to send reply", "error", err)
	}
}

// replyPlain skips HTML parse mode; translated summaries carry markdown that
// Telegram's HTML parser would reject.
func (h *Handler) replyPlain(text string) {
	msg := tgbotapi.NewMessage(h.chatID, text)
	msg.DisableWebPagePreview = true

	if _, err := h.api.Send(msg); err != nil {
		h.logger.Error("Failed to send reply", "error", err)
	}
}

func (h *Handler) answerCallback(id, text string) {
	callback := tgbotapi.NewCallback(id, text)
	if _, err := h.api.Request(callback); err != nil {
		h.logger.Error("Failed to answer callback", "error", err)
	}
}
