package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	coretelegram "github.com/m3rciful/refbot/core/telegram"
	"github.com/m3rciful/refbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/refbot/core/telegram/helpers"
	"github.com/m3rciful/refbot/core/telegram/router"

	"github.com/m3rciful/refbot/core/scheduler"
	"github.com/m3rciful/refbot/internal/access"
	"github.com/m3rciful/refbot/internal/audit"
	"github.com/m3rciful/refbot/internal/catalog"
	"github.com/m3rciful/refbot/internal/dialog"
	"github.com/m3rciful/refbot/internal/messages"

	tele "gopkg.in/telebot.v4"
)

// App assembles the bot: the dialog machine, its storage and the audit
// reporter, exposed through the shared Telegram runtime.
type App struct {
	cfg       *Config
	responder *Responder
	machine   *dialog.Machine
	reporter  *audit.Reporter
}

// New builds the application. A nil db keeps the audit log in memory.
func New(cfg *Config, db *sqlx.DB) *App {
	var syncer catalog.Syncer
	if cfg.Storage.GitSync {
		syncer = catalog.NewGitSyncer(cfg.Storage.Dir, cfg.Storage.GitRemote, cfg.Storage.GitBranch)
	}
	store := catalog.NewFileStore(cfg.Storage.Dir, syncer)

	var recorder audit.Recorder
	if db != nil {
		recorder = audit.NewPGRecorder(db)
	} else {
		recorder = audit.NewMemoryRecorder()
	}

	responder := NewResponder()
	machine := dialog.New(dialog.Config{
		Store:              store,
		Scheduler:          scheduler.New(),
		Responder:          responder,
		Gate:               access.NewGate(cfg.Access.AllowedUsers),
		Recorder:           recorder,
		AttachmentsEnabled: cfg.Attachments.Enabled,
	})

	a := &App{
		cfg:       cfg,
		responder: responder,
		machine:   machine,
	}
	if chatID := a.statsChat(); chatID != 0 {
		window := time.Duration(cfg.Stats.IntervalHours) * time.Hour
		a.reporter = audit.NewReporter(recorder, func(ctx context.Context, text string) error {
			_, err := responder.Send(ctx, chatID, text, nil)
			return err
		}, window)
	}
	return a
}

// statsChat resolves where the usage digest goes: the dedicated stats chat
// or, failing that, the admin's private chat.
func (a *App) statsChat() int64 {
	if a.cfg.Stats.ChatID != 0 {
		return a.cfg.Stats.ChatID
	}
	return a.cfg.Telegram.AdminID
}

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.command(a.machine.Start),
		Description: "Запустить бота",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.command(a.machine.CancelDialog),
		Description: "Отменить текущий диалог",
	})
	reg.RegisterCommand("/instruction", commands.Command{
		Handler:     a.command(a.machine.Instruction),
		Description: "Как пользоваться ботом",
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     a.handleStats,
		Description: "Статистика использования",
		AdminOnly:   true,
		Hidden:      true,
	})

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
		OnAdminReject: func(c tele.Context) error {
			return tghelpers.SendText(c, messages.StatsDenied)
		},
	})
	routes = append(routes, a.eventRoutes()...)

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.responder.Bind(rt.Bot, rt.Dispatcher)
			if a.reporter != nil {
				go a.reporter.Run(ctx)
			}
			return nil
		},
	}, nil
}

// command adapts a machine entry point to a telebot handler.
func (a *App) command(fn func(context.Context, dialog.InboundEvent) error) tele.HandlerFunc {
	return func(c tele.Context) error {
		return fn(tghelpers.BuildContext(c), messageEvent(c))
	}
}

// eventRoutes binds the free-form update endpoints to the machine's single
// dispatch point.
func (a *App) eventRoutes() []coretelegram.Route {
	return router.UpdateRoutes(router.UpdateOptions{
		OnMessage: func(c tele.Context) error {
			return a.machine.HandleEvent(tghelpers.BuildContext(c), messageEvent(c))
		},
		OnCallback: func(c tele.Context) error {
			return a.machine.HandleEvent(tghelpers.BuildContext(c), callbackEvent(c))
		},
	})
}

// handleStats sends the usage digest on demand.
func (a *App) handleStats(c tele.Context) error {
	if a.reporter == nil {
		return tghelpers.SendText(c, messages.StatsDenied)
	}
	ctx := tghelpers.BuildContext(c)
	if err := a.reporter.Report(ctx); err != nil {
		return fmt.Errorf("stats report: %w", err)
	}
	return tghelpers.SendText(c, messages.StatsSent)
}
