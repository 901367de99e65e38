package chats

import "codeberg.org/parley/server/chat"

type CreateChatRequest struct {
	VisitorName string `json:"visitor_name" binding:"max=100"`
	AgentID     string `json:"agent_id" binding:"max=100"` // optional preferred agent
}

type JoinChatRequest struct {
	AccessCode  string `json:"access_code" binding:"required,max=32"`
	VisitorName string `json:"visitor_name" binding:"max=100"`
}

type SendMessageRequest struct {
	Content     string            `json:"content" binding:"max=5000"`
	Attachments []chat.Attachment `json:"attachments"`
}

type AgentMessageRequest struct {
	AgentID     string            `json:"agent_id" binding:"required,max=100"`
	Content     string            `json:"content" binding:"max=5000"`
	Attachments []chat.Attachment `json:"attachments"`
}

type AcceptChatRequest struct {
	AgentID string `json:"agent_id" binding:"required,max=100"`
}

type FocusRequest struct {
	ChatID string `json:"chat_id"` // empty clears the focus
}

type ChatResponse struct {
	Chat chat.SessionView `json:"chat"`
}

type ChatListResponse struct {
	Chats []chat.SessionView `json:"chats"`
	Count int                `json:"count"`
}

type MessageResponse struct {
	Message chat.Message `json:"message"`
}

type FocusResponse struct {
	ChatID string `json:"chat_id,omitempty"`
}
