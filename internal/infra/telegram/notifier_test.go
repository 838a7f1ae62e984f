package telegram

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

type recordingClient struct {
	chatID  int64
	text    string
	options *telebot.SendOptions
	calls   int
	err     error
}

func (c *recordingClient) SendMessage(chatID int64, text string, options *telebot.SendOptions) error {
	c.calls++
	c.chatID, c.text, c.options = chatID, text, options
	return c.err
}

func TestNotifier_SendUsesHTMLToConfiguredChat(t *testing.T) {
	client := &recordingClient{}
	n := NewNotifier(client, -100200300)

	require.NoError(t, n.Send(context.Background(), "<b>hi</b>"))

	assert.Equal(t, 1, client.calls)
	assert.Equal(t, int64(-100200300), client.chatID)
	assert.Equal(t, "<b>hi</b>", client.text)
	assert.Equal(t, telebot.ModeHTML, client.options.ParseMode)
}

func TestNotifier_APIErrorCarriesDescription(t *testing.T) {
	apiErr := &telebot.Error{Code: 400, Description: "Bad Request: chat not found"}
	n := NewNotifier(&recordingClient{err: fmt.Errorf("send: %w", apiErr)}, 1)

	err := n.Send(context.Background(), "x")

	var de *DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 400, de.Code)
	assert.Equal(t, "Bad Request: chat not found", de.Payload)
	assert.ErrorIs(t, err, apiErr)
}

func TestNotifier_TransportErrorCarriesMessage(t *testing.T) {
	n := NewNotifier(&recordingClient{err: errors.New("dial tcp: i/o timeout")}, 1)

	err := n.Send(context.Background(), "x")

	var de *DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Zero(t, de.Code)
	assert.Equal(t, "dial tcp: i/o timeout", de.Payload)
	assert.Equal(t, "telegram delivery failed: dial tcp: i/o timeout", err.Error())
}

func TestNotifier_CanceledContextSkipsCall(t *testing.T) {
	client := &recordingClient{}
	n := NewNotifier(client, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := n.Send(ctx, "x")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, client.calls)
}

func TestNotifier_UnrecognisedAPIErrorCarriesCodeAndDescription(t *testing.T) {
	// telebot reports Bot API descriptions it has no predefined error for as plain errors.
	sendErr := fmt.Errorf("telegram: %s (%d)", "Bad Request: can't parse entities: Unsupported start tag \"x\" at byte offset 4", 400)
	n := NewNotifier(&recordingClient{err: sendErr}, 1)

	err := n.Send(context.Background(), "a < <x> b")

	var de *DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 400, de.Code)
	assert.Equal(t, "Bad Request: can't parse entities: Unsupported start tag \"x\" at byte offset 4", de.Payload)
	assert.ErrorIs(t, err, sendErr)
	assert.Contains(t, de.Hint(), "escape <, > and &")
}

func TestDeliveryError_Hint(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantHint bool
	}{
		{name: "entity parse failure", payload: "Bad Request: can't parse entities: unexpected end tag", wantHint: true},
		{name: "chat not found", payload: "Bad Request: chat not found"},
		{name: "transport", payload: "dial tcp: i/o timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := &DeliveryError{Payload: tt.payload}
			assert.Equal(t, tt.wantHint, de.Hint() != "")
		})
	}
}
