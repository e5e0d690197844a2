// Package core wires the bot together: config, logging, transport,
// reminder engine, scheduler, notifier, and the optional history store.
package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"remindbot/internal/config"
	"remindbot/internal/eventbus"
	"remindbot/internal/notifier"
	"remindbot/internal/remind"
	"remindbot/internal/sched"
	"remindbot/internal/storage"
	"remindbot/internal/transport"
	"remindbot/internal/transport/telegram"
	logx "remindbot/pkg/logx"
)

const updateBuffer = 256

type App struct {
	cfgMgr *config.Manager
	logSvc *logx.Service
	log    logx.Logger

	adapter   *telegram.Adapter
	bus       eventbus.Bus
	history   storage.Store
	maint     *storage.Maintenance
	notifier  *notifier.Service
	store     *sched.Store
	scheduler *sched.Service
	reminders *remind.Service
	dispatch  *Dispatcher

	updates chan transport.Update
	sup     *Supervisor
}

func NewApp(cfgPath string) (*App, error) {
	mgr := config.NewManager(cfgPath)
	cfg, err := mgr.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logSvc, rootLog := logx.New(logxConfig(cfg.Logging))
	mgr.SetLogger(rootLog.With(logx.String("svc", "config")))
	mgr.SetValidator(func(_ context.Context, c *config.Config) error {
		return validateConfig(c)
	})

	loc, err := loadLocation(cfg.Reminder.Timezone)
	if err != nil {
		return nil, err
	}

	adapter, err := telegram.New(telegramConfig(cfg.Telegram), rootLog.With(logx.String("svc", "telegram")))
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}

	bus := eventbus.New()

	storeCfg, err := storageConfig(cfg.Storage)
	if err != nil {
		return nil, err
	}
	history, err := storage.Open(storeCfg, rootLog.With(logx.String("svc", "storage")))
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	maint, err := storage.NewMaintenance(history, storeCfg, loc, rootLog.With(logx.String("svc", "storage")))
	if err != nil {
		return nil, fmt.Errorf("storage maintenance: %w", err)
	}

	notif := notifier.New(notifierConfig(cfg.Notifier), adapter, rootLog.With(logx.String("svc", "notifier")), bus)

	schedCfg, err := schedConfig(cfg.Reminder)
	if err != nil {
		return nil, err
	}
	store := sched.NewStore()

	app := &App{
		cfgMgr:   mgr,
		logSvc:   logSvc,
		log:      rootLog.With(logx.String("svc", "app")),
		adapter:  adapter,
		bus:      bus,
		history:  history,
		maint:    maint,
		notifier: notif,
		store:    store,
		updates:  make(chan transport.Update, updateBuffer),
	}

	app.scheduler = sched.New(schedCfg, store, app.dispatchJob, rootLog.With(logx.String("svc", "sched")))
	app.reminders = remind.NewService(store, remind.Options{
		Location:           loc,
		DefaultLeadMinutes: cfg.Reminder.DefaultLeadMinutes,
	}, rootLog.With(logx.String("svc", "remind")))
	app.dispatch = NewDispatcher(app.reminders, app.scheduler, notif, history, loc, rootLog.With(logx.String("svc", "commands")))

	return app, nil
}

// dispatchJob renders and delivers one due reminder. The synchronous send
// path is used so the scheduler can log delivery failures per job.
func (a *App) dispatchJob(ctx context.Context, job sched.Job) error {
	chatID, err := strconv.ParseInt(job.Payload.OwnerID, 10, 64)
	if err != nil {
		return fmt.Errorf("bad owner id %q: %w", job.Payload.OwnerID, err)
	}
	return a.notifier.Send(ctx, transport.Notification{
		Target: transport.ChatTarget{ChatID: chatID},
		Text:   renderReminderFire(job, a.dispatch.location()),
		Kind:   "reminder",
	})
}

func (a *App) Start(ctx context.Context) error {
	if err := a.adapter.Start(ctx, a.updates); err != nil {
		return fmt.Errorf("start telegram: %w", err)
	}
	a.notifier.Start(ctx)
	a.scheduler.Start(ctx)
	a.maint.Start()

	if err := a.adapter.SetMenuCommands(menuCommands()); err != nil {
		a.log.Warn("set menu commands failed", logx.Err(err))
	}

	a.sup = NewSupervisor(ctx, WithLogger(a.log))
	a.sup.Go("commands.dispatch", func(ctx context.Context) error {
		return a.dispatch.Loop(ctx, a.updates)
	})
	a.sup.Go0("history.write", func(ctx context.Context) {
		runHistoryWriter(ctx, a.bus, a.history, a.log)
	})
	a.sup.Go("config.watch", a.cfgMgr.Watch)
	a.sup.Go0("config.apply", a.applyReloads)

	a.log.Info("bot started")
	return nil
}

func (a *App) Stop(ctx context.Context) {
	// Inbound first so nothing new enters while the pipeline drains.
	if err := a.adapter.Stop(ctx); err != nil {
		a.log.Warn("telegram stop", logx.Err(err))
	}
	if a.sup != nil {
		a.sup.Cancel()
		_ = a.sup.Wait(ctx)
	}
	a.scheduler.Stop(ctx)
	a.notifier.Stop(ctx)
	a.maint.Stop(ctx)
	if a.history != nil {
		_ = a.history.Close()
	}
	a.log.Info("bot stopped")
	_ = a.logSvc.Close()
}

// applyReloads fans a committed config change out to the live components.
// Transport and storage settings need a restart and are skipped on purpose.
func (a *App) applyReloads(ctx context.Context) {
	ch := a.cfgMgr.Subscribe(1)
	defer a.cfgMgr.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-ch:
			if !ok || cfg == nil {
				return
			}
			a.logSvc.Apply(logxConfig(cfg.Logging))

			loc, err := loadLocation(cfg.Reminder.Timezone)
			if err != nil {
				a.log.Warn("reload: timezone rejected", logx.Err(err))
				continue
			}
			schedCfg, err := schedConfig(cfg.Reminder)
			if err != nil {
				a.log.Warn("reload: scheduler config rejected", logx.Err(err))
				continue
			}
			a.scheduler.Apply(schedCfg)
			a.reminders.Apply(remind.Options{
				Location:           loc,
				DefaultLeadMinutes: cfg.Reminder.DefaultLeadMinutes,
			})
			a.notifier.Apply(notifierConfig(cfg.Notifier))
			a.dispatch.Apply(loc)
			a.log.Info("config applied")
		}
	}
}

func menuCommands() []transport.BotCommand {
	return []transport.BotCommand{
		{Command: "list", Description: "查看目前的提醒"},
		{Command: "clear", Description: "清除所有提醒"},
		{Command: "history", Description: "最近的通知紀錄"},
		{Command: "status", Description: "排程狀態"},
		{Command: "help", Description: "使用說明"},
	}
}

// --- config conversion ---

func validateConfig(cfg *config.Config) error {
	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		return fmt.Errorf("telegram.token is required")
	}
	if _, err := parseDurationField("telegram.poll_timeout", cfg.Telegram.PollTimeout); err != nil {
		return err
	}
	if _, err := loadLocation(cfg.Reminder.Timezone); err != nil {
		return err
	}
	if cfg.Reminder.DefaultLeadMinutes < 0 {
		return fmt.Errorf("reminder.default_lead_minutes must not be negative")
	}
	if _, err := schedConfig(cfg.Reminder); err != nil {
		return err
	}
	if _, err := storageConfig(cfg.Storage); err != nil {
		return err
	}
	return nil
}

func loadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Asia/Taipei"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("reminder.timezone: %w", err)
	}
	return loc, nil
}

func logxConfig(c config.LoggingConfig) logx.Config {
	return logx.Config{
		Level:   c.Level,
		Console: c.Console,
		File:    logx.FileConfig{Enabled: c.File.Enabled, Path: c.File.Path},
	}
}

func telegramConfig(c config.TelegramConfig) telegram.Config {
	// Validation already ran; a parse error here degrades to the default.
	timeout, _ := parseDurationField("telegram.poll_timeout", c.PollTimeout)
	return telegram.Config{Token: c.Token, PollTimeout: timeout}
}

func notifierConfig(c config.NotifierConfig) notifier.Config {
	return notifier.Config{
		Workers:    c.Workers,
		QueueSize:  c.QueueSize,
		RatePerSec: c.RatePerSec,
	}
}

func schedConfig(c config.ReminderConfig) (sched.Config, error) {
	poll, err := parseDurationField("reminder.poll_interval", c.PollInterval)
	if err != nil {
		return sched.Config{}, err
	}
	grace, err := parseDurationField("reminder.grace_window", c.GraceWindow)
	if err != nil {
		return sched.Config{}, err
	}
	dispatch, err := parseDurationField("reminder.dispatch_timeout", c.DispatchTimeout)
	if err != nil {
		return sched.Config{}, err
	}
	return sched.Config{
		PollInterval:    poll,
		GraceWindow:     grace,
		DispatchTimeout: dispatch,
	}, nil
}

func storageConfig(c config.StorageConfig) (storage.Config, error) {
	busy, err := parseDurationField("storage.busy_timeout", c.BusyTimeout)
	if err != nil {
		return storage.Config{}, err
	}
	return storage.Config{
		Driver:        c.Driver,
		Path:          c.Path,
		BusyTimeout:   busy,
		KeepDays:      c.KeepDays,
		PruneSchedule: c.PruneSchedule,
	}, nil
}
