package app

import (
	"context"
	"fmt"
	"io"

	tele "gopkg.in/telebot.v4"
)

// botSender delivers direct messages straight through the bot API,
// bypassing the outbound dispatcher so each delivery reports its own
// result. It serves both broadcast fan-out and moderation DMs.
type botSender struct {
	bot *tele.Bot
}

func (s *botSender) bind(bot *tele.Bot) { s.bot = bot }

func (s *botSender) SendText(_ context.Context, userID int64, text string) error {
	if s.bot == nil {
		return fmt.Errorf("bot not initialized")
	}
	_, err := s.bot.Send(tele.ChatID(userID), text, tele.ModeHTML)
	return err
}

func (s *botSender) SendPhoto(_ context.Context, userID int64, fileID, caption string) error {
	if s.bot == nil {
		return fmt.Errorf("bot not initialized")
	}
	photo := &tele.Photo{File: tele.File{FileID: fileID}, Caption: caption}
	_, err := s.bot.Send(tele.ChatID(userID), photo, tele.ModeHTML)
	return err
}

// botFetcher downloads receipt files from the Telegram file storage.
type botFetcher struct {
	bot *tele.Bot
}

func (f *botFetcher) bind(bot *tele.Bot) { f.bot = bot }

func (f *botFetcher) Fetch(_ context.Context, fileID string) ([]byte, error) {
	if f.bot == nil {
		return nil, fmt.Errorf("bot not initialized")
	}
	rc, err := f.bot.File(&tele.File{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("file download failed: %w", err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
