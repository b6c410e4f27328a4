package enquiry

import "time"

type Enquiry struct {
	ID         string     `json:"id" db:"enquiry_id"`
	PropertyID string     `json:"property_id" db:"property_id"`
	UserID     string     `json:"user_id" db:"user_id"`
	AgentID    string     `json:"agent_id" db:"agent_id"`
	Subject    string     `json:"subject" db:"subject"`
	Message    string     `json:"message" db:"message"`
	Reply      *string    `json:"reply" db:"reply"`
	RepliedAt  *time.Time `json:"replied_at" db:"replied_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

type EnquiryNew struct {
	Subject string `json:"subject" validate:"required,max=120"`
	Message string `json:"message" validate:"required,max=2000"`
}

type ReplyUp struct {
	Reply string `json:"reply" validate:"required,max=2000"`
}
