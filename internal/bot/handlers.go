package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
)

// HandleStart registers the chat identity and greets by role.
func (c *Controller) HandleStart(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	from := update.Message.From
	fullName := strings.TrimSpace(from.FirstName + " " + from.LastName)

	user, err := c.users.RegisterContact(ctx, from.ID, fullName)
	if err != nil {
		c.logger.Error("failed to register contact", zap.Int64("user_id", from.ID), zap.Error(err))
		c.reply(ctx, b, update, "❌ Произошла ошибка при регистрации. Попробуйте позже.")
		return
	}

	var text string
	switch user.Role {
	case models.RoleAdmin:
		text = "👋 Добро пожаловать, администратор!\n\n" +
			"Вам доступны:\n" +
			"/pending - заявки на рассмотрении\n" +
			"/schedule - расписание\n" +
			"/help - справка"
	case models.RoleTeacher:
		text = "👋 Добро пожаловать, преподаватель!\n\n" +
			"Вам доступны:\n" +
			"/schedule - ваше расписание\n" +
			"/myrequests - ваши заявки\n" +
			"/help - справка"
	default:
		text = "👋 Добро пожаловать!\n\n" +
			"Я помогу вам узнать расписание занятий.\n\n" +
			"Выберите специальность командой /specialty и получите актуальное расписание."
	}
	c.reply(ctx, b, update, text)
}

// HandleHelp prints the command reference.
func (c *Controller) HandleHelp(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	text := "📚 Справка по командам:\n\n" +
		"/start - начать работу с ботом\n" +
		"/specialty <название> - выбрать специальность\n" +
		"/group <название> - выбрать группу\n" +
		"/schedule - расписание на неделю\n" +
		"/today - расписание на сегодня\n" +
		"/specialties - список специальностей\n\n" +
		"Для преподавателей:\n" +
		"/myrequests - мои заявки на изменение расписания\n\n" +
		"Для администраторов:\n" +
		"/pending - заявки на рассмотрении"
	c.reply(ctx, b, update, text)
}

// HandleSpecialties lists the known study programs.
func (c *Controller) HandleSpecialties(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	specialties, err := c.schedules.Specialties(ctx)
	if err != nil {
		c.logger.Error("failed to list specialties", zap.Error(err))
		c.reply(ctx, b, update, "❌ Не удалось получить список специальностей")
		return
	}
	c.reply(ctx, b, update, formatSpecialties(specialties))
}

// HandleSetSpecialty stores the user's specialty choice.
func (c *Controller) HandleSetSpecialty(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	arg := commandArgument(update.Message.Text)
	if arg == "" {
		c.reply(ctx, b, update, "Укажите специальность: /specialty <название>\n\nСписок: /specialties")
		return
	}
	if _, err := c.users.UpdateProfile(ctx, update.Message.From.ID, arg, ""); err != nil {
		c.logger.Error("failed to update specialty", zap.Int64("user_id", update.Message.From.ID), zap.Error(err))
		c.reply(ctx, b, update, "❌ Не удалось сохранить специальность")
		return
	}
	c.reply(ctx, b, update, fmt.Sprintf("✅ Специальность сохранена: %s", arg))
}

// HandleSetGroup stores the user's group choice.
func (c *Controller) HandleSetGroup(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	arg := commandArgument(update.Message.Text)
	if arg == "" {
		c.reply(ctx, b, update, "Укажите группу: /group <название>")
		return
	}
	if _, err := c.users.UpdateProfile(ctx, update.Message.From.ID, "", arg); err != nil {
		c.logger.Error("failed to update group", zap.Int64("user_id", update.Message.From.ID), zap.Error(err))
		c.reply(ctx, b, update, "❌ Не удалось сохранить группу")
		return
	}
	c.reply(ctx, b, update, fmt.Sprintf("✅ Группа сохранена: %s", arg))
}

// HandleSchedule shows the week timetable for the user's profile. A
// teacher sees their own classes instead.
func (c *Controller) HandleSchedule(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	c.sendSchedule(ctx, b, update, nil)
}

// HandleToday shows only today's occurrences.
func (c *Controller) HandleToday(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	now := time.Now()
	c.sendSchedule(ctx, b, update, &now)
}

func (c *Controller) sendSchedule(ctx context.Context, b *bot.Bot, update *tgmodels.Update, day *time.Time) {
	user, err := c.users.Get(ctx, update.Message.From.ID)
	if err != nil {
		c.reply(ctx, b, update, "Сначала выполните /start")
		return
	}

	filter := models.ScheduleFilter{}
	title := "Расписание"
	switch {
	case user.Role == models.RoleTeacher:
		filter.TeacherID = user.ID
		title = "Ваше расписание"
	case user.Specialty != nil:
		filter.Specialty = *user.Specialty
		title = "Расписание: " + *user.Specialty
		if user.GroupName != nil {
			filter.GroupName = *user.GroupName
		}
	default:
		c.reply(ctx, b, update, "Сначала выберите специальность: /specialty <название>")
		return
	}
	if day != nil {
		filter.DayOfWeek = models.WeekdayName(day.Weekday())
		title += " на сегодня"
	}

	schedules, err := c.schedules.List(ctx, filter)
	if err != nil {
		c.logger.Error("failed to list schedule", zap.Error(err))
		c.reply(ctx, b, update, "❌ Не удалось получить расписание")
		return
	}
	c.reply(ctx, b, update, formatSchedules(schedules, title))
}

// HandleMyRequests lists the teacher's own change requests.
func (c *Controller) HandleMyRequests(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	requests, err := c.requests.ListForTeacher(ctx, update.Message.From.ID)
	if err != nil {
		c.logger.Error("failed to list teacher requests", zap.Error(err))
		c.reply(ctx, b, update, "❌ Не удалось получить заявки")
		return
	}
	c.reply(ctx, b, update, formatRequests(requests))
}

// HandlePending lists pending requests for admins.
func (c *Controller) HandlePending(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	user, err := c.users.Get(ctx, update.Message.From.ID)
	if err != nil || user.Role != models.RoleAdmin {
		c.reply(ctx, b, update, "⛔ Команда доступна только администраторам")
		return
	}
	requests, err := c.requests.ListPending(ctx)
	if err != nil {
		c.logger.Error("failed to list pending requests", zap.Error(err))
		c.reply(ctx, b, update, "❌ Не удалось получить заявки")
		return
	}
	c.reply(ctx, b, update, formatRequests(requests))
}

// HandleUnknown answers anything that is not a known command.
func (c *Controller) HandleUnknown(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	if update.Message == nil || !strings.HasPrefix(update.Message.Text, "/") {
		return
	}
	c.reply(ctx, b, update, "🤷 Неизвестная команда. Используйте /help")
}

func (c *Controller) reply(ctx context.Context, b *bot.Bot, update *tgmodels.Update, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   text,
	})
	if err != nil {
		c.logger.Warn("failed to send reply", zap.Error(err))
	}
}

func commandArgument(text string) string {
	parts := strings.SplitN(strings.TrimSpace(text), " ", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
