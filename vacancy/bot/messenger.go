package bot

import (
	tg "github.com/m3rciful/vacancybot/core/telegram"
	"github.com/m3rciful/vacancybot/core/telegram/helpers"
	"github.com/m3rciful/vacancybot/core/telegram/keyboard"
	"github.com/m3rciful/vacancybot/vacancy/listing"

	tele "gopkg.in/telebot.v4"
)

// pickUnique is the callback unique shared by every choice button.
const pickUnique = "pick"

// Choice is one keyboard button: Label is shown, Value is sent back.
type Choice struct {
	Label string
	Value string
}

// Messenger is the outbound side of one inbound event.
type Messenger interface {
	Text(text string) error
	Markdown(text string) error
	// Prompt sends text with an inline keyboard of choices, perRow per line.
	Prompt(text string, choices []Choice, perRow int) error
	// Listing sends a formatted posting with its link button.
	Listing(l listing.Listing) error
	// Ack answers the inbound callback. Events without a callback are a no-op.
	Ack() error
}

type teleMessenger struct {
	c tele.Context
}

// NewMessenger adapts a telebot context. Sends go through the shared
// dispatcher so one chat's messages keep their order.
func NewMessenger(c tele.Context) Messenger {
	return teleMessenger{c: c}
}

func (m teleMessenger) Text(text string) error {
	return helpers.SendText(m.c, text)
}

func (m teleMessenger) Markdown(text string) error {
	return helpers.SendMD(m.c, text)
}

func (m teleMessenger) Prompt(text string, choices []Choice, perRow int) error {
	buttons := make([]keyboard.InlineBtn, len(choices))
	for i, ch := range choices {
		buttons[i] = keyboard.InlineBtn{Text: ch.Label, Unique: pickUnique, Data: ch.Value}
	}
	return helpers.SendWithMarkup(m.c, text, keyboard.InlineButtonsNPerRow(buttons, perRow))
}

func (m teleMessenger) Listing(l listing.Listing) error {
	if l.URL == "" {
		return helpers.SendMD(m.c, l.Text)
	}
	return helpers.SendMD(m.c, l.Text, keyboard.URLButton(listing.OpenLabel, l.URL))
}

func (m teleMessenger) Ack() error {
	if m.c.Callback() == nil {
		return nil
	}
	if err := m.c.Respond(); err != nil && !tg.IsTransient(err) {
		return err
	}
	return nil
}
