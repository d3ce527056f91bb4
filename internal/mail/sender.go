package mail

type Message struct {
	To          []string
	Cc          []string
	Subject     string
	Body        string
	IsHTML      bool
	Attachments []string
}

type MailSender interface {
	Send(message *Message) error
}
