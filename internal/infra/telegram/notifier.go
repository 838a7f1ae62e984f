package telegram

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	domainTelegram "reminder_notifier/internal/domain/telegram"

	"gopkg.in/telebot.v3"
)

// DeliveryError is returned when the messaging endpoint did not accept a message.
// Payload is the Bot API error description when one was returned, otherwise
// the transport error message.
type DeliveryError struct {
	Code    int
	Payload string
	Err     error
}

func (e *DeliveryError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("telegram delivery failed (%d): %s", e.Code, e.Payload)
	}
	return fmt.Sprintf("telegram delivery failed: %s", e.Payload)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Hint returns an operator hint for failures caused by the message text
// itself, or "" when resending the same text may succeed.
func (e *DeliveryError) Hint() string {
	if strings.Contains(strings.ToLower(e.Payload), "can't parse entities") {
		return "message is sent in HTML parse mode; escape <, > and & in the record's custom message"
	}
	return ""
}

// Notifier sends formatted reminder texts to one destination chat.
type Notifier struct {
	client domainTelegram.Client
	chatID int64
}

func NewNotifier(client domainTelegram.Client, chatID int64) *Notifier {
	return &Notifier{client: client, chatID: chatID}
}

// Send makes a single sendMessage call in HTML parse mode. No retry.
func (n *Notifier) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return newDeliveryError(err)
	}
	err := n.client.SendMessage(n.chatID, text, &telebot.SendOptions{
		ParseMode:             telebot.ModeHTML,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return newDeliveryError(err)
	}
	return nil
}

// unknownAPIError matches the plain error telebot builds for Bot API
// descriptions it has no predefined *telebot.Error for.
var unknownAPIError = regexp.MustCompile(`telegram: (.*) \((\d+)\)$`)

func newDeliveryError(err error) *DeliveryError {
	var apiErr *telebot.Error
	if errors.As(err, &apiErr) {
		return &DeliveryError{Code: apiErr.Code, Payload: apiErr.Description, Err: err}
	}
	if m := unknownAPIError.FindStringSubmatch(err.Error()); m != nil {
		if code, convErr := strconv.Atoi(m[2]); convErr == nil {
			return &DeliveryError{Code: code, Payload: m[1], Err: err}
		}
	}
	return &DeliveryError{Payload: err.Error(), Err: err}
}
