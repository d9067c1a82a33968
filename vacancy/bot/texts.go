package bot

import (
	"fmt"
	"strings"

	"github.com/m3rciful/vacancybot/core/buildinfo"
	"github.com/m3rciful/vacancybot/core/telegram/format"
	"github.com/m3rciful/vacancybot/vacancy/conversation"
)

const (
	textHelp = "Доступные команды:\n" +
		"/get_vaccancy - Найти подходящие вакансии\n" +
		"/get_top_5 - Вывести топ 5 вакансий по зарплатам\n" +
		"/cancel - отменить все действия по поиску вакансий"

	textChooseLanguage = "Выберите специализацию или язык программирования 👨🏼‍💻"
	textChooseSalary   = "Выберите желаемую зарплату? 🤑💰"
	textChooseRegion   = "Выберите желаемый регион ☮️"

	textCancelled = "Отменено."
	textNotFound  = "По вашему запросу вакансий не найдено."
	textFailed    = "Что-то пошло не так, попробуйте ещё раз позже."
	textPending   = "Записал данные, выполняю запрос на сервер..."
	textAdminOnly = "Команда доступна только администратору."
	textSlowDown  = "Слишком много запросов, подождите немного."
	textStale     = "Кнопка устарела, начните заново: /get_vaccancy"
)

func startText(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Привет!\nОтправьте /help, если хотите посмотреть мои команды"
	}
	return fmt.Sprintf("Привет, %s.\nОтправьте /help, если хотите посмотреть мои команды", name)
}

// summaryText echoes a completed selection before the query runs.
// The remote sentinel is a work format rather than a place.
func summaryText(sel conversation.Selection, remote bool) string {
	place := "Регион"
	if remote {
		place = "Формат"
	}
	parts := []string{
		"*Вы выбрали:*",
		"Специализация: *" + format.Escape(sel.Language) + "*",
		"Зарплата: *" + format.Escape(sel.SalaryBand) + "*",
		place + ": *" + format.Escape(sel.Region) + "*",
		"`" + textPending + "`",
	}
	return strings.Join(parts, "\n\n")
}

// Stats is the snapshot reported by /stats.
type Stats struct {
	Postings int
	// Sessions is -1 when the session backend cannot count.
	Sessions int
}

func statsText(s Stats) string {
	sessions := "н/д"
	if s.Sessions >= 0 {
		sessions = fmt.Sprint(s.Sessions)
	}
	return fmt.Sprintf("Версия: %s\nВакансий в базе: %d\nАктивных диалогов: %s",
		buildinfo.String(), s.Postings, sessions)
}
