package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	coretelegram "github.com/m3rciful/insurancebot/core/telegram"
	"github.com/m3rciful/insurancebot/core/telegram/commands"
	tghelpers "github.com/m3rciful/insurancebot/core/telegram/helpers"
	"github.com/m3rciful/insurancebot/core/telegram/middleware"
	"github.com/m3rciful/insurancebot/core/telegram/netutil"
	"github.com/m3rciful/insurancebot/core/telegram/router"

	tele "gopkg.in/telebot.v4"
)

const rateLimitedText = "You're sending messages too quickly. Please wait a moment and try again."

func (a *App) routes() (*coretelegram.Registry, *middleware.Sequencer, []coretelegram.Route) {
	reg := coretelegram.NewRegistry()
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Start buying car insurance",
	})
	reg.SetUnknownCommand(a.handleUnknown)

	routes := router.CommandRoutes(reg)
	routes = append(routes, router.MessageRoutes(reg, router.MessageOptions{
		Text:                a.handleText,
		Photo:               a.handlePhoto,
		UnsupportedDocument: a.handleUnsupported,
	})...)
	return reg, middleware.NewSequencer(0), routes
}

// reply sends text and returns the turn error joined with any send failure.
func reply(c tele.Context, text string, turnErr error) error {
	if err := tghelpers.SendText(c, text); err != nil {
		return errors.Join(turnErr, fmt.Errorf("send reply: %w", err))
	}
	return turnErr
}

func (a *App) handleStart(c tele.Context) error {
	text, err := a.engine.Start(tghelpers.BuildContext(c), tghelpers.ChatKey(c))
	return reply(c, text, err)
}

func (a *App) handleUnknown(c tele.Context) error {
	return reply(c, a.engine.UnknownCommand(tghelpers.BuildContext(c), tghelpers.ChatKey(c)), nil)
}

func (a *App) handleUnsupported(c tele.Context) error {
	return reply(c, a.engine.UnsupportedUpload(tghelpers.BuildContext(c), tghelpers.ChatKey(c)), nil)
}

func (a *App) handleLimited(c tele.Context) error {
	return reply(c, rateLimitedText, nil)
}

func (a *App) handleText(c tele.Context) error {
	tghelpers.NotifyTyping(c)
	text, err := a.engine.Text(tghelpers.BuildContext(c), tghelpers.ChatKey(c), c.Text())
	return reply(c, text, err)
}

func (a *App) handlePhoto(c tele.Context) error {
	tghelpers.NotifyTyping(c)
	src := telegramPhoto{bot: c.Bot(), msg: c.Message()}
	text, err := a.engine.Photo(tghelpers.BuildContext(c), tghelpers.ChatKey(c), src)
	return reply(c, text, err)
}

// telegramPhoto downloads the photo or image document of one message.
type telegramPhoto struct {
	bot tele.API
	msg *tele.Message
}

func (p telegramPhoto) Save(_ context.Context, dir string) (string, error) {
	if p.msg == nil {
		return "", errors.New("no message")
	}
	var file tele.File
	switch {
	case p.msg.Photo != nil:
		file = p.msg.Photo.File
	case p.msg.Document != nil:
		file = p.msg.Document.File
	default:
		return "", errors.New("message has no photo")
	}
	path := filepath.Join(dir, uuid.NewString()+".img")
	if err := p.bot.Download(&file, path); err != nil {
		// a failed copy leaves a partial file behind
		_ = os.Remove(path)
		return "", fmt.Errorf("download %s: %w", file.FileID, netutil.WithoutURL(err))
	}
	return path, nil
}
