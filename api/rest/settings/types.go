package settings

import "codeberg.org/parley/server/chat"

type UpdateSettingsRequest struct {
	AgentName      string `json:"agent_name" binding:"max=100"`
	Avatar         string `json:"avatar" binding:"max=500"`
	WelcomeMessage string `json:"welcome_message" binding:"max=1000"`
}

type AddQuickReplyRequest struct {
	Title   string `json:"title" binding:"required,max=100"`
	Content string `json:"content" binding:"required,max=1000"`
}

type SettingsResponse struct {
	Settings chat.SettingsView `json:"settings"`
}

type QuickReplyResponse struct {
	QuickReply chat.QuickReply `json:"quick_reply"`
}
