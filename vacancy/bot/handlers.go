package bot

import (
	"context"

	tg "github.com/m3rciful/vacancybot/core/telegram"
	"github.com/m3rciful/vacancybot/core/telegram/callbacks"
	"github.com/m3rciful/vacancybot/core/telegram/commands"
	"github.com/m3rciful/vacancybot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

type action func(ctx context.Context, u User, m Messenger) error

// Register binds the controller to reg: the public commands, the hidden
// admin /stats and the "pick" callback carried by every choice button.
// Buttons with any other unique come from keyboards of older releases and
// get StaleButtonHandler.
func Register(reg *tg.Registry, ctrl *Controller) error {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     adapt(ctrl.Start),
		Description: "Начать работу с ботом",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     adapt(ctrl.Help),
		Description: "Список команд",
	})
	reg.RegisterCommand("/get_vaccancy", commands.Command{
		Handler:     adapt(ctrl.BeginSearch),
		Description: "Найти подходящие вакансии",
	})
	reg.RegisterCommand("/get_top_5", commands.Command{
		Handler:     adapt(ctrl.Top),
		Description: "Вывести топ 5 вакансий по зарплатам",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     adapt(ctrl.Cancel),
		Description: "Отменить поиск вакансий",
		Aliases:     []string{"cancel"},
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     adapt(ctrl.Stats),
		Description: "Статистика бота",
		AdminOnly:   true,
		Hidden:      true,
	})

	reg.SetCallbackNotFound(StaleButtonHandler)

	return reg.RegisterCallback(pickUnique, func(c tele.Context) error {
		return ctrl.Select(helpers.BuildContext(c), userOf(c), callbacks.CallbackPayload(c), NewMessenger(c))
	})
}

func adapt(fn action) tele.HandlerFunc {
	return func(c tele.Context) error {
		return fn(helpers.BuildContext(c), userOf(c), NewMessenger(c))
	}
}

func userOf(c tele.Context) User {
	id, name := helpers.SenderInfo(c)
	return User{ID: id, FullName: name}
}

// AdminRejectHandler answers non-admins who call admin commands.
func AdminRejectHandler(c tele.Context) error {
	return helpers.SendText(c, textAdminOnly)
}

// RateLimitedHandler answers users who hit the rate limit. Callbacks get a
// toast so the button stops spinning.
func RateLimitedHandler(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: textSlowDown})
	}
	return helpers.SendText(c, textSlowDown)
}

// StaleButtonHandler answers callbacks nothing is registered for.
func StaleButtonHandler(c tele.Context) error {
	err := c.Respond(&tele.CallbackResponse{Text: textStale})
	if tg.IsTransient(err) {
		return nil
	}
	return err
}
