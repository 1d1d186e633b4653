package telegram

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/m3rciful/insurancebot/core/logger"
	"github.com/m3rciful/insurancebot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// Registry holds bot commands and the handler for unregistered ones.
type Registry struct {
	commands       map[string]commands.Command
	unknownCommand tele.HandlerFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]commands.Command)}
}

// RegisterCommand adds a new command. Invalid and duplicate registrations are logged and skipped.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) {
	ctx := context.Background()
	switch {
	case r == nil || name == "" || cmd.Handler == nil || cmd.Description == "":
		logger.Warn(ctx, "tg.wire", "register.command.skip",
			slog.String("name", name),
			slog.String("cause", "invalid"),
		)
		return
	case name[0] != '/':
		logger.Warn(ctx, "tg.wire", "register.command.skip",
			slog.String("name", name),
			slog.String("cause", "no_slash_prefix"),
		)
		return
	}
	if _, exists := r.commands[name]; exists {
		logger.Warn(ctx, "tg.wire", "register.command.duplicate", slog.String("name", name))
		return
	}
	r.commands[name] = cmd
}

// ListCommands returns the commands sorted by name, optionally without hidden ones.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	var list []tele.Command
	for cmd, meta := range r.commands {
		if visibleOnly && meta.Hidden {
			continue
		}
		list = append(list, tele.Command{Text: strings.TrimPrefix(cmd, "/"), Description: meta.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// LookupCommand resolves a command or one of its aliases to the canonical key.
// A trailing @botname and any arguments are ignored.
func (r *Registry) LookupCommand(text string) (string, commands.Command, bool) {
	name := CommandName(text)
	if name == "" {
		return "", commands.Command{}, false
	}
	if cmd, ok := r.commands[name]; ok {
		return name, cmd, true
	}
	for key, cmd := range r.commands {
		for _, alias := range cmd.Aliases {
			if alias == name || "/"+alias == name {
				return key, cmd, true
			}
		}
	}
	return "", commands.Command{}, false
}

// Commands returns all registered commands.
func (r *Registry) Commands() map[string]commands.Command {
	return r.commands
}

// SetUnknownCommand sets the handler for slash commands nobody registered.
func (r *Registry) SetUnknownCommand(h tele.HandlerFunc) {
	r.unknownCommand = h
}

// UnknownCommand returns the handler for unregistered slash commands.
func (r *Registry) UnknownCommand() tele.HandlerFunc {
	return r.unknownCommand
}

// CommandName extracts "/name" from message text, or "" when text is not a command.
func CommandName(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	name, _, _ := strings.Cut(text, " ")
	name, _, _ = strings.Cut(name, "@")
	if name == "/" {
		return ""
	}
	return strings.ToLower(name)
}

// SetupCommands publishes the visible commands to the Telegram command menu.
func SetupCommands(bot *tele.Bot, reg *Registry) {
	cmds := reg.ListCommands(true)
	if len(cmds) == 0 {
		return
	}
	ctx := context.Background()
	if err := bot.SetCommands(cmds); err != nil {
		logger.Error(ctx, "tg.wire", "register.commands.set_failed", slog.String("err", err.Error()))
		return
	}
	logger.Info(ctx, "tg.wire", "register.commands", slog.Int("commands", len(cmds)))
}
