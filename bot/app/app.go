// Package app assembles the bot from its components and the shared core.
package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"github.com/m5frls/gedanbot/bot/broadcast"
	"github.com/m5frls/gedanbot/bot/flow"
	"github.com/m5frls/gedanbot/bot/moderation"
	"github.com/m5frls/gedanbot/bot/orders"
	"github.com/m5frls/gedanbot/bot/receipts"
	"github.com/m5frls/gedanbot/bot/session"
	"github.com/m5frls/gedanbot/bot/users"
	"github.com/m5frls/gedanbot/core/bootstrap"
	"github.com/m5frls/gedanbot/core/cmd"
	coretelegram "github.com/m5frls/gedanbot/core/telegram"
	"github.com/m5frls/gedanbot/core/telegram/commands"
	"github.com/m5frls/gedanbot/core/telegram/helpers"
	"github.com/m5frls/gedanbot/core/telegram/router"
)

const accessDeniedText = "❌ У вас нет доступа"

// App holds the bootstrapped application state.
type App struct {
	cfg *Config
	db  *sqlx.DB
}

// Bootstrap initializes the logger, the database, and the migrations.
func Bootstrap(carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	return &App{cfg: cfg, db: res.DB}, nil
}

// TelegramRunOptions wires every component and returns the runtime options.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	core := a.cfg.CoreConfig()

	receiptStore, err := receipts.NewDiskStore(core.Receipts.Dir, core.Receipts.PublicBaseURL)
	if err != nil {
		return coretelegram.RunOptions{}, fmt.Errorf("app: receipt store: %w", err)
	}

	sessions := session.NewStore()
	orderStore := orders.NewPostgresStore(a.db)
	audience := users.NewPostgresRegistry(a.db)

	out := &botSender{}
	fetcher := &botFetcher{}

	broadcasts := broadcast.NewEngine(sessions, audience, out)
	engine := flow.NewEngine(core, sessions, orderStore, audience, receiptStore, fetcher, broadcasts)
	mod := moderation.NewController(core, orderStore, receiptStore, audience, out)

	reg := coretelegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     engine.CmdStart,
		Description: "Запустить бота",
	})
	reg.RegisterCommand("/reset", commands.Command{
		Handler:     engine.CmdReset,
		Description: "Начать заказ заново",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     engine.CmdCancel,
		Description: "Отменить текущее действие",
		Hidden:      true,
	})

	reg.RegisterCommand("/broadcast", commands.Command{
		Handler:     broadcasts.Start,
		Description: "Рассылка всем пользователям",
		AdminOnly:   true,
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     mod.CmdStats,
		Description: "Статистика заказов",
		AdminOnly:   true,
	})
	reg.RegisterCommand("/orders", commands.Command{
		Handler:     mod.CmdOrders,
		Description: "Последние заказы",
		AdminOnly:   true,
	})
	reg.RegisterCommand("/pending", commands.Command{
		Handler:     mod.CmdPending,
		Description: "Заказы на проверке",
		AdminOnly:   true,
	})
	reg.RegisterCommand("/paid", commands.Command{
		Handler:     mod.CmdPaid,
		Description: "Оплаченные заказы",
		AdminOnly:   true,
	})
	reg.RegisterCommand("/users", commands.Command{
		Handler:     mod.CmdUsers,
		Description: "Аудитория рассылки",
		AdminOnly:   true,
	})

	if err := engine.RegisterCallbacks(reg); err != nil {
		return coretelegram.RunOptions{}, err
	}
	if err := mod.RegisterCallbacks(reg); err != nil {
		return coretelegram.RunOptions{}, err
	}
	if err := reg.RegisterCallback(broadcast.CallbackConfirm, broadcasts.Confirm); err != nil {
		return coretelegram.RunOptions{}, err
	}
	if err := reg.RegisterCallback(broadcast.CallbackCancel, broadcasts.CancelCallback); err != nil {
		return coretelegram.RunOptions{}, err
	}

	reg.SetTextFallback(engine.HandleMenuText)

	denyAdmin := func(c tele.Context) error {
		return helpers.SendText(c, accessDeniedText)
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		IsAdmin:       core.IsAdmin,
		OnAdminReject: denyAdmin,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(engine, reg, router.TextOptions{})...)

	return coretelegram.RunOptions{
		Config:      core,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(core, nil),
		Routes:      routes,
		OnBot: func(bot *tele.Bot) {
			out.bind(bot)
			fetcher.bind(bot)
		},
	}, nil
}

// Close releases the database handle.
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
