// Package bot turns inbound chat updates into roster, ledger and reminder
// operations and replies in the chat.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/workpilot/internal/classifier"
	"github.com/mmynk/workpilot/internal/metrics"
	"github.com/mmynk/workpilot/internal/models"
	"github.com/mmynk/workpilot/internal/render"
	"github.com/mmynk/workpilot/internal/service"
	"github.com/mmynk/workpilot/internal/transport"
)

// Router dispatches updates to command handlers.
type Router struct {
	reports    *service.ReportService
	transport  transport.Transport
	renderer   *render.Renderer
	classifier *classifier.Classifier
	logger     *slog.Logger

	commands map[string]func(ctx context.Context, u transport.Update)
}

var _ transport.Handler = (*Router)(nil)

// NewRouter creates a Router.
func NewRouter(
	reports *service.ReportService,
	t transport.Transport,
	renderer *render.Renderer,
	c *classifier.Classifier,
	logger *slog.Logger,
) *Router {
	r := &Router{
		reports:    reports,
		transport:  t,
		renderer:   renderer,
		classifier: c,
		logger:     logger,
	}
	r.commands = map[string]func(context.Context, transport.Update){
		"start":      r.start,
		"help":       r.help,
		"sync":       r.sync,
		"register":   r.register,
		"unregister": r.unregister,
		"submit":     r.submit,
		"status":     r.status,
		"summary":    r.summary,
		"remind":     r.remind,
		"export":     r.export,
		"members":    r.members,
		"exclude":    r.exclude,
		"include":    r.include,
		"excluded":   r.excluded,
	}
	return r
}

// Handle processes one update. Replies and failures stay in the chat; nothing
// is returned to the caller.
func (r *Router) Handle(ctx context.Context, u transport.Update) {
	if u.Command == "" {
		r.message(ctx, u)
		return
	}

	handler, ok := r.commands[u.Command]
	if !ok {
		r.logger.Debug("Ignoring unknown command", "command", u.Command, "chat_id", u.ChatID)
		return
	}

	if !u.IsGroup() {
		switch u.Command {
		case "start":
			r.reply(ctx, u.ChatID, textAddToGroup)
		case "help":
			r.help(ctx, u)
		default:
			r.reply(ctx, u.ChatID, textGroupOnly)
		}
		return
	}

	if _, err := r.reports.Roster.RegisterGroup(ctx, u.ChatID, u.ChatTitle); err != nil {
		r.fail(ctx, u, "register group", err)
		return
	}

	r.logger.Info("Command received", "command", u.Command, "chat_id", u.ChatID, "user_id", u.From.ID)
	handler(ctx, u)
}

func (r *Router) message(ctx context.Context, u transport.Update) {
	if !u.IsGroup() || !r.classifier.Match(u.Text) {
		return
	}
	if _, err := r.reports.Roster.RegisterGroup(ctx, u.ChatID, u.ChatTitle); err != nil {
		r.fail(ctx, u, "register group", err)
		return
	}

	sub, err := r.reports.Submit(ctx, u.ChatID, u.From, u.Text, u.At, metrics.SourceMessage)
	if err != nil {
		r.fail(ctx, u, "record report", err)
		return
	}
	r.logger.Info("Report detected in message", "chat_id", u.ChatID, "user_id", u.From.ID, "period", sub.Period)
	r.reply(ctx, u.ChatID, fmt.Sprintf("✅ 检测到周报内容，已自动收录！\n提交者: %s", render.EscapeMarkdown(u.From.Name)))
}

func (r *Router) start(ctx context.Context, u transport.Update) {
	synced, err := r.syncAdministrators(ctx, u.ChatID)
	if err != nil {
		r.logger.Warn("Could not list group administrators", "chat_id", u.ChatID, "error", err)
	}

	text := fmt.Sprintf("👋 你好！我是周报收集助手\n\n已注册群组: %s\n\n", render.EscapeMarkdown(u.ChatTitle))
	if synced > 0 {
		text += fmt.Sprintf("✅ 已自动添加 %d 位管理员到周报名单\n\n", synced)
	} else {
		text += "⚠️ 未获取到成员列表，请确保 Bot 是群管理员\n或手动使用 /register 注册\n\n"
	}
	r.reply(ctx, u.ChatID, text+textWelcomeCommands)
}

func (r *Router) help(ctx context.Context, u transport.Update) {
	r.reply(ctx, u.ChatID, textHelp)
}

func (r *Router) sync(ctx context.Context, u transport.Update) {
	synced, err := r.syncAdministrators(ctx, u.ChatID)
	if err != nil {
		r.logger.Error("Member sync failed", "chat_id", u.ChatID, "error", err)
		r.reply(ctx, u.ChatID, "❌ 同步失败，请确保 Bot 是群管理员")
		return
	}
	r.reply(ctx, u.ChatID, fmt.Sprintf("✅ 已同步 %d 位成员\n他们现在需要提交周报了！", synced))
}

func (r *Router) syncAdministrators(ctx context.Context, chatID int64) (int, error) {
	admins, err := r.transport.ListAdministrators(ctx, chatID)
	if err != nil {
		return 0, err
	}
	return r.reports.Roster.SyncMembers(ctx, chatID, admins)
}

func (r *Router) register(ctx context.Context, u transport.Update) {
	if err := r.reports.Roster.AddMember(ctx, u.ChatID, u.From); err != nil {
		r.fail(ctx, u, "register member", err)
		return
	}
	r.reply(ctx, u.ChatID, fmt.Sprintf("✅ %s 已注册！\n每周请记得提交周报哦~", render.EscapeMarkdown(u.From.Name)))
}

func (r *Router) unregister(ctx context.Context, u transport.Update) {
	if err := r.reports.Roster.RemoveMember(ctx, u.ChatID, u.From.ID); err != nil {
		r.fail(ctx, u, "unregister member", err)
		return
	}
	r.reply(ctx, u.ChatID, fmt.Sprintf("✅ %s 已取消注册", render.EscapeMarkdown(u.From.Name)))
}

func (r *Router) submit(ctx context.Context, u transport.Update) {
	if u.Args == "" {
		r.reply(ctx, u.ChatID, textSubmitHelp)
		return
	}
	sub, err := r.reports.Submit(ctx, u.ChatID, u.From, u.Args, u.At, metrics.SourceCommand)
	if err != nil {
		r.fail(ctx, u, "submit report", err)
		return
	}
	r.reply(ctx, u.ChatID, fmt.Sprintf("✅ 周报已收到！\n提交者: %s\n周次: %s", render.EscapeMarkdown(u.From.Name), sub.Period))
}

func (r *Router) status(ctx context.Context, u transport.Update) {
	l, p, err := r.reports.Progress(ctx, u.ChatID, r.reports.Resolver.Current(u.At))
	if err != nil {
		r.fail(ctx, u, "load status", err)
		return
	}
	r.reply(ctx, u.ChatID, r.renderer.Status(l.Period, p))
}

func (r *Router) summary(ctx context.Context, u transport.Update) {
	l, p, err := r.reports.Progress(ctx, u.ChatID, r.reports.Resolver.Current(u.At))
	if err != nil {
		r.fail(ctx, u, "load summary", err)
		return
	}
	text := r.renderer.Summary(u.ChatTitle, l.Period, l.Reports, p.Pending)
	for _, part := range render.Chunk(text, render.MessageLimit) {
		if !r.reply(ctx, u.ChatID, part) {
			return
		}
	}
}

func (r *Router) remind(ctx context.Context, u transport.Update) {
	res, err := r.reports.Remind(ctx, u.ChatID, r.reports.Resolver.Current(u.At))
	if err != nil {
		r.fail(ctx, u, "send reminder", err)
		return
	}
	if res.AllSubmitted {
		r.reply(ctx, u.ChatID, textAllDone)
	}
}

func (r *Router) export(ctx context.Context, u transport.Update) {
	periodID := u.Args
	if periodID == "" {
		periodID = r.reports.Resolver.Current(u.At)
	}

	doc, err := r.reports.Exporter.Export(ctx, u.ChatID, periodID)
	if errors.Is(err, models.ErrInvalidPeriod) {
		r.reply(ctx, u.ChatID, textBadPeriod)
		return
	}
	if err != nil {
		r.fail(ctx, u, "export reports", err)
		return
	}

	caption := fmt.Sprintf("📄 周报汇总文件 (%s)", doc.Period)
	if err := r.transport.SendDocument(ctx, u.ChatID, doc.Name, doc.Body, caption); err != nil {
		r.logger.Error("Failed to send export", "chat_id", u.ChatID, "export_id", doc.ID, "error", err)
	}
}

func (r *Router) members(ctx context.Context, u transport.Update) {
	members, err := r.reports.Roster.ListMembers(ctx, u.ChatID)
	if err != nil {
		r.fail(ctx, u, "list members", err)
		return
	}
	r.reply(ctx, u.ChatID, r.renderer.Members(members))
}

// target is the author of the replied-to message, or the sender.
func target(u transport.Update) models.Member {
	if u.ReplyTo != nil {
		return *u.ReplyTo
	}
	return u.From
}

func (r *Router) exclude(ctx context.Context, u transport.Update) {
	m := target(u)
	if err := r.reports.Roster.Exclude(ctx, u.ChatID, m); err != nil {
		r.fail(ctx, u, "exclude member", err)
		return
	}
	r.reply(ctx, u.ChatID, fmt.Sprintf("🚫 %s 已从周报名单中排除，不会再被提醒", render.EscapeMarkdown(m.Name)))
}

func (r *Router) include(ctx context.Context, u transport.Update) {
	m := target(u)
	lifted, err := r.reports.Roster.Include(ctx, u.ChatID, m.ID)
	if err != nil {
		r.fail(ctx, u, "include member", err)
		return
	}
	name := render.EscapeMarkdown(m.Name)
	if !lifted {
		r.reply(ctx, u.ChatID, fmt.Sprintf("%s 不在排除名单中", name))
		return
	}
	r.reply(ctx, u.ChatID, fmt.Sprintf("✅ %s 已移出排除名单，可使用 /register 重新加入周报名单", name))
}

func (r *Router) excluded(ctx context.Context, u transport.Update) {
	excluded, err := r.reports.Roster.ListExcluded(ctx, u.ChatID)
	if err != nil {
		r.fail(ctx, u, "list excluded", err)
		return
	}
	r.reply(ctx, u.ChatID, r.renderer.Excluded(excluded))
}

func (r *Router) reply(ctx context.Context, chatID int64, text string) bool {
	if err := r.transport.SendMessage(ctx, chatID, text); err != nil {
		r.logger.Error("Failed to send reply", "chat_id", chatID, "error", err)
		return false
	}
	return true
}

func (r *Router) fail(ctx context.Context, u transport.Update, action string, err error) {
	r.logger.Error("Command failed",
		"action", action,
		"command", u.Command,
		"chat_id", u.ChatID,
		"user_id", u.From.ID,
		"error", err,
	)
	r.reply(ctx, u.ChatID, textFailed)
}
