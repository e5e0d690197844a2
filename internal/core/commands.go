package core

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"remindbot/internal/remind"
	"remindbot/internal/sched"
	"remindbot/internal/storage"
	"remindbot/internal/transport"
	logx "remindbot/pkg/logx"
)

const historyLimit = 10

// Dispatcher routes inbound messages: slash commands are answered directly,
// everything else goes through the reminder submit path. Replies leave
// through the notifier's async queue so a slow send never stalls intake.
type Dispatcher struct {
	mu  sync.Mutex
	loc *time.Location

	reminders *remind.Service
	scheduler *sched.Service
	notifier  Notifier
	history   storage.Store
	log       logx.Logger
}

// Notifier is the outbound surface the dispatcher needs.
type Notifier interface {
	Notify(ctx context.Context, n transport.Notification) error
}

func NewDispatcher(reminders *remind.Service, scheduler *sched.Service, notifier Notifier, history storage.Store, loc *time.Location, log logx.Logger) *Dispatcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Dispatcher{
		loc:       loc,
		reminders: reminders,
		scheduler: scheduler,
		notifier:  notifier,
		history:   history,
		log:       log,
	}
}

// Apply swaps the display timezone on config reload.
func (d *Dispatcher) Apply(loc *time.Location) {
	if loc == nil {
		return
	}
	d.mu.Lock()
	d.loc = loc
	d.mu.Unlock()
}

func (d *Dispatcher) location() *time.Location {
	d.mu.Lock()
	loc := d.loc
	d.mu.Unlock()
	return loc
}

// Loop consumes updates until ctx ends or the channel closes.
func (d *Dispatcher) Loop(ctx context.Context, updates <-chan transport.Update) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			if up.Kind != transport.UpdateMessage || up.Message == nil {
				continue
			}
			d.handle(ctx, *up.Message)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, msg transport.Message) {
	// One misbehaving message must not take the intake loop down.
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("message handler panicked",
				logx.Int64("chat", msg.ChatID),
				logx.Any("panic", r))
		}
	}()

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	owner := strconv.FormatInt(msg.ChatID, 10)
	loc := d.location()

	var reply string
	cmd := normalizeCommand(text)
	switch cmd {
	case "/start", "/help":
		reply = helpText
	case "/status":
		reply = renderStatus(d.scheduler.Snapshot(), len(d.reminders.List(owner)))
	case "/history":
		reply = d.renderOwnerHistory(ctx, owner, loc)
	default:
		// Slash commands arrive stripped of any "@BotName" suffix so the
		// management verbs match in group chats too.
		submitText := text
		if strings.HasPrefix(text, "/") {
			submitText = cmd
		}
		res := d.reminders.Submit(owner, submitText, time.Now())
		reply = renderResult(res, loc)
	}

	if reply == "" {
		return
	}
	err := d.notifier.Notify(ctx, transport.Notification{
		Target: transport.ChatTarget{ChatID: msg.ChatID},
		Text:   reply,
		Kind:   "reply",
	})
	if err != nil {
		d.log.Warn("reply enqueue failed",
			logx.Int64("chat", msg.ChatID),
			logx.Err(err))
	}
}

func (d *Dispatcher) renderOwnerHistory(ctx context.Context, owner string, loc *time.Location) string {
	if d.history == nil {
		return "通知紀錄功能未啟用"
	}
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	entries, err := d.history.RecentDeliveries(cctx, owner, historyLimit)
	if err != nil {
		d.log.Warn("history query failed", logx.String("owner", owner), logx.Err(err))
		return "查詢通知紀錄時發生錯誤"
	}
	return renderHistory(entries, loc)
}

// normalizeCommand lowercases a leading slash command and strips the
// "@BotName" suffix Telegram appends in group chats. Non-commands pass
// through unchanged so reminder text keeps its original casing.
func normalizeCommand(text string) string {
	if !strings.HasPrefix(text, "/") {
		return text
	}
	cmd := text
	if i := strings.IndexAny(cmd, " \t"); i >= 0 {
		cmd = cmd[:i]
	}
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd)
}
