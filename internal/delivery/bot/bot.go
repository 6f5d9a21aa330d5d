// Package bot is the chat transport: it parses commands and web-app
// payloads coming from Telegram and renders replies. All state changes
// go through the session usecase.
package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/bmmjam/taptap/internal/config"
	"github.com/bmmjam/taptap/internal/model"
	usecase_session "github.com/bmmjam/taptap/internal/usecase/session"
)

const startPayloadPrefix = "r_"

type Bot struct {
	bot     *tele.Bot
	session *usecase_session.Usecase

	webAppURL string
	logger    *slog.Logger
}

func New(cfg config.Bot, session *usecase_session.Usecase, logger *slog.Logger) (*Bot, error) {
	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, _ tele.Context) {
			logger.Error("telegram update failed", "error", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	tb := &Bot{
		bot:       b,
		session:   session,
		webAppURL: cfg.WebAppURL,
		logger:    logger,
	}
	tb.registerHandlers()
	return tb, nil
}

func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.onStart)
	b.bot.Handle("/newroom", b.onNewRoom)
	b.bot.Handle("/groupmood", b.onGroupMood)
	b.bot.Handle("/resetroom", b.onResetRoom)
	b.bot.Handle(tele.OnWebApp, b.onWebAppResult)
}

// Start blocks polling for updates until Stop is called.
func (b *Bot) Start() {
	b.logger.Info("telegram bot started")
	b.bot.Start()
}

func (b *Bot) Stop() {
	b.bot.Stop()
}

// onStart handles both the plain /start greeting and the deep link
// /start r_<code> that joins the sender to a room.
func (b *Bot) onStart(c tele.Context) error {
	payload := strings.TrimSpace(c.Message().Payload)

	if strings.HasPrefix(payload, startPayloadPrefix) {
		code := model.RoomCode(strings.TrimPrefix(payload, startPayloadPrefix))
		room, err := b.session.JoinRoom(context.Background(), senderID(c), code)
		if err != nil {
			if errors.Is(err, usecase_session.ErrRoomNotFound) {
				return c.Send("🤷 Такой комнаты нет. Проверь ссылку или попроси новую у организатора.")
			}
			b.logger.Error("join failed", "error", err)
			return c.Send("Что-то пошло не так, попробуй ещё раз.")
		}

		return c.Send(fmt.Sprintf(
			"✅ Ты в комнате *%s*!\n\nНажми кнопку внизу, потапай по смайлику — и твой результат попадёт в общую картину.",
			room.Name,
		), b.webAppKeyboard(), tele.ModeMarkdown)
	}

	return c.Send(
		"👋 Привет! Я *TapTap* — помогу понять, что ты сейчас чувствуешь.\n\n"+
			"Нажми кнопку внизу — потапай по смайлику, и я расскажу о твоём эмоциональном состоянии.\n\n"+
			"Команды:\n"+
			"/newroom _название_ — создать комнату для компании\n"+
			"/groupmood — общее настроение твоей комнаты\n"+
			"/resetroom — сбросить результаты своей комнаты",
		b.webAppKeyboard(), tele.ModeMarkdown)
}

func (b *Bot) onNewRoom(c tele.Context) error {
	name := strings.TrimSpace(c.Message().Payload)
	if name == "" {
		return c.Send("Напиши название: /newroom Пятничные посиделки")
	}

	code, link, err := b.session.CreateRoom(context.Background(), name, senderID(c))
	if err != nil {
		b.logger.Error("room creation failed", "error", err)
		return c.Send("Не получилось создать комнату, попробуй ещё раз.")
	}

	return c.Send(fmt.Sprintf(
		"🎉 Комната *%s* создана!\n\nКод: `%s`\nСсылка для друзей:\n%s",
		name, code, link,
	), tele.ModeMarkdown)
}

func (b *Bot) onGroupMood(c tele.Context) error {
	ctx := context.Background()
	id := senderID(c)

	code, ok := b.currentRoom(ctx, id)
	if !ok {
		return c.Send("Ты пока не в комнате. Зайди по ссылке от организатора или создай свою: /newroom")
	}

	sum, err := b.session.GetSummary(ctx, code)
	if err != nil {
		if errors.Is(err, usecase_session.ErrRoomNotFound) {
			return c.Send("Твоя комната больше не существует. Создай новую: /newroom")
		}
		b.logger.Error("summary failed", "error", err)
		return c.Send("Что-то пошло не так, попробуй ещё раз.")
	}
	if sum.Total == 0 {
		return c.Send("Пока никто не потапал. Будь первым! 😊")
	}

	members, err := b.session.Members(ctx, code)
	if err != nil {
		b.logger.Error("members failed", "error", err)
		return c.Send("Что-то пошло не так, попробуй ещё раз.")
	}

	return c.Send(renderSummary(sum, members), tele.ModeMarkdown)
}

func (b *Bot) onResetRoom(c tele.Context) error {
	ctx := context.Background()
	id := senderID(c)

	code, ok := b.currentRoom(ctx, id)
	if !ok {
		return c.Send("Ты пока не в комнате, сбрасывать нечего.")
	}

	if err := b.session.ResetRoom(ctx, code, id); err != nil {
		switch {
		case errors.Is(err, usecase_session.ErrNotCreator):
			return c.Send("🔒 Сбросить результаты может только создатель комнаты.")
		case errors.Is(err, usecase_session.ErrRoomNotFound):
			return c.Send("Твоя комната больше не существует.")
		}
		b.logger.Error("reset failed", "error", err)
		return c.Send("Что-то пошло не так, попробуй ещё раз.")
	}

	return c.Send("🧹 Результаты комнаты сброшены. Можно тапать заново!")
}

type webAppPayload struct {
	Emotion string         `json:"emotion"`
	Stats   map[string]any `json:"stats"`
}

func (b *Bot) onWebAppResult(c tele.Context) error {
	var payload webAppPayload
	if err := json.Unmarshal([]byte(c.Message().WebAppData.Data), &payload); err != nil || payload.Emotion == "" {
		b.logger.Error("malformed web app payload", "error", err)
		return c.Send("Не смог разобрать результат, попробуй ещё раз.")
	}

	members, err := b.session.SubmitResult(
		context.Background(),
		senderID(c),
		displayName(c.Sender()),
		model.Emotion(payload.Emotion),
		model.Stats(payload.Stats),
	)
	if err != nil {
		switch {
		case errors.Is(err, usecase_session.ErrNotInRoom):
			return c.Send("Результат получен, но ты пока не в комнате. Зайди по ссылке от организатора, чтобы попасть в общую картину.")
		case errors.Is(err, usecase_session.ErrRoomNotFound):
			return c.Send("Твоя комната больше не существует. Создай новую: /newroom")
		}
		b.logger.Error("submit failed", "error", err)
		return c.Send("Что-то пошло не так, попробуй ещё раз.")
	}

	meta := model.Lookup(model.Emotion(payload.Emotion))
	return c.Send(fmt.Sprintf(
		"%s Записал: *%s*.\nВ комнате уже %d %s. Общая картина: /groupmood",
		meta.Emoji, meta.Title, members, pluralizeMembers(members),
	), tele.ModeMarkdown)
}

func (b *Bot) currentRoom(ctx context.Context, id model.UserID) (model.RoomCode, bool) {
	// The facade owns membership; probing with SubmitResult would
	// mutate state, so ask it directly.
	return b.session.CurrentRoom(ctx, id)
}

func (b *Bot) webAppKeyboard() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}
	btn := menu.WebApp("😊 Узнать моё состояние", &tele.WebApp{URL: b.webAppURL})
	menu.Reply(menu.Row(btn))
	return menu
}

func renderSummary(sum model.Summary, members []model.Result) string {
	var sb strings.Builder
	dominant := model.Lookup(sum.Dominant)
	fmt.Fprintf(&sb, "%s Настроение комнаты: *%s*\n\n", dominant.Emoji, dominant.Title)

	for _, bar := range sum.Bars {
		meta := model.Lookup(bar.Emotion)
		fmt.Fprintf(&sb, "%s %s %d%%\n", meta.Emoji, renderBar(bar.Length), bar.Percent)
	}

	sb.WriteString("\n")
	for _, m := range members {
		fmt.Fprintf(&sb, "• %s %s\n", m.DisplayName, model.Lookup(m.Emotion).Emoji)
	}
	fmt.Fprintf(&sb, "\nВсего: %d %s", sum.Total, pluralizeMembers(sum.Total))
	return sb.String()
}

func renderBar(length int) string {
	const slots = 10
	if length > slots {
		length = slots
	}
	return strings.Repeat("█", length) + strings.Repeat("░", slots-length)
}

func senderID(c tele.Context) model.UserID {
	return model.UserID(c.Sender().ID)
}

func displayName(u *tele.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	return name
}

func pluralizeMembers(n int) string {
	mod10, mod100 := n%10, n%100
	switch {
	case mod10 == 1 && mod100 != 11:
		return "участник"
	case mod10 >= 2 && mod10 <= 4 && (mod100 < 10 || mod100 >= 20):
		return "участника"
	default:
		return "участников"
	}
}
