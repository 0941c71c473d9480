package dto

// Reply directives accepted by POST /api/emails/reply.
const (
	ReplyApprove         = "approve"
	ReplyDecline         = "decline"
	ReplyRequestInfo     = "request_info"
	ReplyScheduleMeeting = "schedule_meeting"
	ReplyCustom          = "custom"
)

type ReplyRequest struct {
	MessageID     string `json:"messageId"`
	ReplyType     string `json:"replyType"`
	CustomMessage string `json:"customMessage,omitempty"`
}

type ArchiveRequest struct {
	MessageID string `json:"messageId"`
}

type ReplyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
