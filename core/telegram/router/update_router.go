package router

import (
	"time"

	tg "github.com/m3rciful/refbot/core/telegram"
	"github.com/m3rciful/refbot/core/telegram/middleware"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// UpdateOptions binds the free-form update endpoints to a single dispatcher.
// OnMessage receives text, photo and document updates; OnCallback receives
// button presses after they are acknowledged.
type UpdateOptions struct {
	OnMessage  tele.HandlerFunc
	OnCallback tele.HandlerFunc
}

// UpdateRoutes builds handlers for the non-command update endpoints. Every
// handler is wrapped with recovery and logging and emits a handled summary.
func UpdateRoutes(opts UpdateOptions) []tg.Route {
	wrap := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
	}

	var routes []tg.Route

	if opts.OnMessage != nil {
		named := func(name string) tele.HandlerFunc {
			return func(c tele.Context) error {
				start := time.Now()
				return handleWithSummary(c, name, start, "", "", func() error {
					return opts.OnMessage(c)
				})
			}
		}
		routes = append(routes,
			tg.Route{Endpoint: tele.OnText, Handler: wrap(named("text"))},
			tg.Route{Endpoint: tele.OnPhoto, Handler: wrap(named("photo"))},
			tg.Route{Endpoint: tele.OnDocument, Handler: wrap(named("document"))},
		)
	}

	if opts.OnCallback != nil {
		callback := func(c tele.Context) error {
			start := time.Now()
			if c.Callback() == nil {
				return nil
			}
			key, _ := parseCallback(c.Callback())
			name := "callback." + normalizeHandlerName(key)
			extras := []slog.Attr{slog.String("cb_key", key)}

			_ = c.Respond()

			return handleWithSummary(c, name, start, "", "", func() error {
				return opts.OnCallback(c)
			}, extras...)
		}
		routes = append(routes, tg.Route{Endpoint: tele.OnCallback, Handler: wrap(callback)})
	}

	return routes
}
