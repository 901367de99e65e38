package visitors

type PresenceRequest struct {
	Online bool `json:"online"`
}

type BlockResponse struct {
	VisitorID     string `json:"visitor_id"`
	Blocked       bool   `json:"blocked"`
	ChatsAffected int    `json:"chats_affected,omitempty"`
}
