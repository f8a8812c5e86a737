package bot

const (
	textGroupOnly  = "请在群组中使用此命令"
	textAddToGroup = "请将我添加到工作群中使用！\n添加后发送 /start 初始化。"
	textFailed     = "❌ 操作失败，请稍后再试"
	textSubmitHelp = "请在命令后附上周报内容，例如:\n/submit 本周完成了XX，下周计划YY"
	textAllDone    = "🎉 所有人都已提交周报！"
	textBadPeriod  = "❌ 周次格式错误，例如: /export 2024-W10"
)

const textHelp = `📖 *周报收集 Bot 使用指南*

*成员命令:*
• /sync - 同步群组成员列表（需要 Bot 是管理员）
• /register - 加入周报名单
• /unregister - 取消注册（不需要提交周报）
• /submit - 提交周报
• /status - 查看提交状态

*管理命令:*
• /summary - 查看周报汇总
• /remind - 发送提醒
• /export - 导出周报文件，可指定周次如 2024-W10
• /members - 查看成员列表
• /exclude - 将自己或被回复的成员排除出名单
• /include - 恢复被排除的成员
• /excluded - 查看排除名单

*提交周报方式:*
1. 使用 /submit 命令后跟周报内容
2. 直接发送包含「周报」关键词的消息

*示例:*
` + "```" + `
/submit
本周完成:
1. 完成XX功能开发
2. 修复XX bug

下周计划:
1. 开始YY模块
` + "```" + `

*说明:*
- Bot 会自动同步群组成员，无需手动注册
- 如需退出周报名单，使用 /unregister`

const textWelcomeCommands = `*可用命令:*
/sync - 同步群组成员列表
/submit - 提交周报 (或直接发送包含「周报」的消息)
/status - 查看本周周报提交状态
/summary - 查看本周周报汇总
/remind - 手动触发提醒
/export - 导出周报为文件
/help - 查看帮助`
