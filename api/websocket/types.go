package websocket

type ConnectParams struct {
	ChatID      string `form:"chat_id" binding:"required"`
	Role        string `form:"role" binding:"required,oneof=visitor agent"`
	AgentID     string `form:"agent_id"`                       // required when role=agent
	DisplayName string `form:"display_name" binding:"max=100"` // optional display name
}
