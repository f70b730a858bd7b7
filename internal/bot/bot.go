// Package bot implements the Telegram front end for browsing posts.
package bot

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"postboard/internal/botclient"
	"postboard/internal/middleware"
	"postboard/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	callbackPostPrefix = "id:"
	callbackBack       = "back"
)

// Bot bridges Telegram updates to the posts API.
type Bot struct {
	api    *tgbotapi.BotAPI
	client *botclient.Client
}

// New creates a bot from a Telegram token and an API client.
func New(token string, client *botclient.Client) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth failed: %w", err)
	}
	return &Bot{api: api, client: client}, nil
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	middleware.Logger.Info("Bot started", "username", b.api.Self.UserName)

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	switch {
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		reply := tgbotapi.NewMessage(msg.Chat.ID,
			"Hi! Send /posts to browse the latest posts.")
		b.send(reply)
	case "posts", "post":
		b.sendPostList(ctx, msg.Chat.ID)
	default:
		reply := tgbotapi.NewMessage(msg.Chat.ID, "Unknown command. Try /posts.")
		b.send(reply)
	}
}

func (b *Bot) sendPostList(ctx context.Context, chatID int64) {
	posts, err := b.client.ListPosts(ctx)
	if err != nil {
		middleware.Logger.Error("failed to list posts", "error", err)
		b.send(tgbotapi.NewMessage(chatID, "Could not load posts, try again later."))
		return
	}

	reply := tgbotapi.NewMessage(chatID, ListText(posts))
	if len(posts) > 0 {
		reply.ReplyMarkup = ListKeyboard(posts)
	}
	b.send(reply)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// Telegram shows a spinner on the button until the callback is answered.
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		middleware.Logger.Warn("failed to answer callback", "error", err)
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	switch {
	case strings.HasPrefix(cb.Data, callbackPostPrefix):
		raw := strings.TrimPrefix(cb.Data, callbackPostPrefix)
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return
		}
		b.showPostDetail(ctx, chatID, messageID, uint(id))
	case cb.Data == callbackBack:
		b.showPostList(ctx, chatID, messageID)
	}
}

func (b *Bot) showPostDetail(ctx context.Context, chatID int64, messageID int, postID uint) {
	detail, err := b.client.GetPost(ctx, postID)
	if err != nil {
		middleware.Logger.Error("failed to get post", "post_id", postID, "error", err)
		edit := tgbotapi.NewEditMessageText(chatID, messageID, "Could not load this post.")
		b.send(edit)
		return
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(
		chatID, messageID, DetailText(detail), DetailKeyboard())
	edit.ParseMode = tgbotapi.ModeHTML
	b.send(edit)
}

func (b *Bot) showPostList(ctx context.Context, chatID int64, messageID int) {
	posts, err := b.client.ListPosts(ctx)
	if err != nil {
		middleware.Logger.Error("failed to list posts", "error", err)
		edit := tgbotapi.NewEditMessageText(chatID, messageID, "Could not load posts, try again later.")
		b.send(edit)
		return
	}

	if len(posts) == 0 {
		edit := tgbotapi.NewEditMessageText(chatID, messageID, ListText(posts))
		b.send(edit)
		return
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		chatID, messageID, ListText(posts), ListKeyboard(posts))
	b.send(edit)
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		middleware.Logger.Error("failed to send message", "error", err)
	}
}

// ListText renders the post list header.
func ListText(posts []models.PostSummary) string {
	if len(posts) == 0 {
		return "No posts yet."
	}
	return fmt.Sprintf("%d posts available", len(posts))
}

// ListKeyboard builds one button per post, callback data "id:<post id>".
func ListKeyboard(posts []models.PostSummary) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(posts))
	for _, p := range posts {
		data := fmt.Sprintf("%s%d", callbackPostPrefix, p.ID)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(p.Title, data)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// DetailText renders a post detail as HTML: bold title, underlined author,
// italic publish time, then the body.
func DetailText(detail *models.PostDetail) string {
	return fmt.Sprintf("<b>%s</b>\n<u>%s</u>\n<i>%s</i>\n\n%s",
		html.EscapeString(detail.Title),
		html.EscapeString(detail.AuthorName),
		html.EscapeString(detail.CreatedAt),
		html.EscapeString(detail.Text))
}

// DetailKeyboard is the single "Back" button under a post detail.
func DetailKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Back", callbackBack)))
}
