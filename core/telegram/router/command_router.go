package router

import (
	"context"
	"log/slog"

	"github.com/m3rciful/insurancebot/core/logger"
	tg "github.com/m3rciful/insurancebot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// CommandRoutes binds every registered command to its endpoint with a handler summary log.
func CommandRoutes(reg *tg.Registry) []tg.Route {
	if reg == nil {
		return nil
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for cmd, def := range reg.Commands() {
		name, handler := normalizeHandlerName(cmd), def.Handler
		routes = append(routes, tg.Route{
			Endpoint: cmd,
			Handler: func(c tele.Context) error {
				return summarize(c, name, handler)
			},
		})
	}

	logger.Info(context.Background(), "tg.wire", "wire.commands",
		slog.String("status", "ok"),
		slog.Int("commands", len(routes)),
	)
	return routes
}
