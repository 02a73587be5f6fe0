package bot

import (
	"context"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
)

type userService interface {
	Get(ctx context.Context, id int64) (*models.User, error)
	RegisterContact(ctx context.Context, id int64, fullName string) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, specialty, groupName string) (*models.User, error)
}

type scheduleService interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, error)
	Specialties(ctx context.Context) ([]models.Specialty, error)
}

type requestService interface {
	ListForTeacher(ctx context.Context, teacherID int64) ([]models.Request, error)
	ListPending(ctx context.Context) ([]models.Request, error)
}

// Controller owns the Telegram bot instance and its command handlers.
type Controller struct {
	bot       *bot.Bot
	users     userService
	schedules scheduleService
	requests  requestService
	logger    *zap.Logger
}

// New builds the bot from a token and wires command handlers.
func New(token string, users userService, schedules scheduleService, requests requestService, logger *zap.Logger) (*Controller, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		users:     users,
		schedules: schedules,
		requests:  requests,
		logger:    logger,
	}

	b, err := bot.New(token, bot.WithDefaultHandler(c.HandleUnknown))
	if err != nil {
		return nil, err
	}
	c.bot = b

	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.HandleStart)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.HandleHelp)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/specialties", bot.MatchTypeExact, c.HandleSpecialties)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/specialty", bot.MatchTypePrefix, c.HandleSetSpecialty)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/group", bot.MatchTypePrefix, c.HandleSetGroup)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/schedule", bot.MatchTypeExact, c.HandleSchedule)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/today", bot.MatchTypeExact, c.HandleToday)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/myrequests", bot.MatchTypeExact, c.HandleMyRequests)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/pending", bot.MatchTypeExact, c.HandlePending)

	return c, nil
}

// Start begins long polling. Blocks until the context is cancelled.
func (c *Controller) Start(ctx context.Context) {
	if err := c.setCommands(ctx); err != nil {
		c.logger.Warn("failed to set bot commands", zap.Error(err))
	}
	c.logger.Info("bot started")
	c.bot.Start(ctx)
}

// Sender returns a ChatSender backed by this bot.
func (c *Controller) Sender() *Sender {
	return &Sender{bot: c.bot}
}

func (c *Controller) setCommands(ctx context.Context) error {
	commands := []tgmodels.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "help", Description: "❓ Справка по командам"},
		{Command: "specialties", Description: "📚 Список специальностей"},
		{Command: "schedule", Description: "🗓 Расписание на неделю"},
		{Command: "today", Description: "📅 Расписание на сегодня"},
		{Command: "myrequests", Description: "📨 Мои заявки (преподаватель)"},
		{Command: "pending", Description: "⏳ Заявки на рассмотрении (админ)"},
	}
	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: commands})
	return err
}
