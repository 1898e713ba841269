package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/Jen9x/TapRide/internal/models"
)

// telegramSender is the part of *tele.Bot used for alerts.
type telegramSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// TelegramAlerter posts moderation alerts to the admin chat.
type TelegramAlerter struct {
	sender telegramSender
	chat   *tele.Chat
}

// NewTelegramAlerter builds a send-only bot; it never polls for updates.
func NewTelegramAlerter(token string, chatID int64) (*TelegramAlerter, error) {
	bot, err := tele.NewBot(tele.Settings{Token: token, Offline: true})
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramAlerter{sender: bot, chat: &tele.Chat{ID: chatID}}, nil
}

func (a *TelegramAlerter) AlertNewReport(_ context.Context, report models.Report) error {
	_, err := a.sender.Send(a.chat, formatReportAlert(report), tele.ModeHTML)
	return err
}

func formatReportAlert(report models.Report) string {
	var b strings.Builder
	b.WriteString("🚩 <b>New report</b>\n\n")
	fmt.Fprintf(&b, "<b>Reason:</b> %s\n", html.EscapeString(string(report.Reason)))
	fmt.Fprintf(&b, "<b>Reporter:</b> <code>%s</code>\n", report.ReporterID)
	fmt.Fprintf(&b, "<b>Target:</b> <code>%s</code>\n", report.TargetUserID)
	if report.Details != nil {
		fmt.Fprintf(&b, "\n%s\n", html.EscapeString(*report.Details))
	}
	fmt.Fprintf(&b, "\n<i>Report %s</i>", report.ID)
	return b.String()
}
