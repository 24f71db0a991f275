package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"

	"campushub/internal/domain"
	"campushub/internal/model"
)

type Config struct {
	Host     string
	Port     string
	From     string
	Password string
}

type Mailer struct {
	cfg Config
	log *zerolog.Logger
}

func New(cfg Config, log *zerolog.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

type Message struct {
	Subject string
	Body    string
}

// Render produces the kind-specific notification body. The confirmation
// mail embeds the registration QR code so it can be scanned at check-in.
func Render(kind domain.NotificationKind, reg *model.Registration, event *model.Event, user *model.User) Message {
	greeting := user.FirstName
	if greeting == "" {
		greeting = "there"
	}

	details := fmt.Sprintf(
		`<h3>Event Details:</h3>
<p><strong>Event:</strong> %s</p>
<p><strong>Date:</strong> %s</p>
<p><strong>Time:</strong> %s - %s</p>
<p><strong>Location:</strong> %s</p>`,
		event.Title,
		event.StartDate.Format("Monday, 2 January 2006"),
		event.StartDate.Format("15:04"),
		event.EndDate.Format("15:04"),
		orTBD(event.Location),
	)

	switch kind {
	case domain.KindConfirmation:
		return Message{
			Subject: "Registration Confirmation: " + event.Title,
			Body: fmt.Sprintf(
				`<h2>Registration Confirmation</h2>
<p>Hello %s,</p>
<p>Your registration for <strong>%s</strong> has been received!</p>
%s
<p>Please show this QR code at the event check-in:</p>
<img src="%s" alt="Registration QR Code" style="max-width: 200px;" />
<p>We look forward to seeing you there!</p>
<p>Best regards,<br>The CampusHub Team</p>`,
				greeting, event.Title, details, reg.QRCodeURL,
			),
		}
	case domain.KindCancellation:
		return Message{
			Subject: "Registration Cancelled: " + event.Title,
			Body: fmt.Sprintf(
				`<h2>Registration Cancelled</h2>
<p>Hello %s,</p>
<p>Your registration for <strong>%s</strong> has been cancelled.</p>
%s
<p>If this was a mistake or you have any questions, please contact the event organizer.</p>
<p>Best regards,<br>The CampusHub Team</p>`,
				greeting, event.Title, details,
			),
		}
	default:
		return Message{
			Subject: "Registration Update: " + event.Title,
			Body: fmt.Sprintf(
				`<h2>Registration Status Update</h2>
<p>Hello %s,</p>
<p>%s</p>
%s
<p>If you have any questions, please contact the event organizer.</p>
<p>Best regards,<br>The CampusHub Team</p>`,
				greeting, statusMessage(reg.Status), details,
			),
		}
	}
}

func statusMessage(status model.RegistrationStatus) string {
	switch status {
	case model.StatusConfirmed:
		return "Your registration has been confirmed!"
	case model.StatusWaitlisted:
		return "You have been added to the waitlist."
	case model.StatusCancelled:
		return "Your registration has been cancelled."
	default:
		return "Your registration status has been updated to: " + status.String()
	}
}

func orTBD(location string) string {
	if location == "" {
		return "TBD"
	}
	return location
}

func (m *Mailer) Send(recipient string, msg Message) error {
	headers := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n",
		m.cfg.From, recipient, msg.Subject,
	)

	addr := m.cfg.Host + ":" + m.cfg.Port
	auth := smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{recipient}, []byte(headers+msg.Body)); err != nil {
		m.log.Warn().Err(err).Str("recipient", recipient).Msg("failed to send email")
		return fmt.Errorf("send email: %w", err)
	}

	m.log.Info().Str("recipient", recipient).Str("subject", msg.Subject).Msg("email sent")
	return nil
}
