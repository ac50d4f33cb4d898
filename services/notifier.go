package services

import (
	"fmt"

	"github.com/Govind-619/TripSphere/models"
	"github.com/Govind-619/TripSphere/utils"
)

// Notifier tells the traveler about booking events. Delivery is best effort.
type Notifier interface {
	BookingConfirmed(booking models.Booking, payment models.Payment) error
}

// MailNotifier emails the booking's contact address.
type MailNotifier struct {
	mailer *utils.Mailer
}

// NewMailNotifier returns nil when mail is not configured.
func NewMailNotifier(mailer *utils.Mailer) *MailNotifier {
	if mailer == nil {
		return nil
	}
	return &MailNotifier{mailer: mailer}
}

func (n *MailNotifier) BookingConfirmed(booking models.Booking, payment models.Payment) error {
	if booking.ContactEmail == "" {
		utils.LogDebug("Booking %d has no contact email, skipping confirmation mail", booking.ID)
		return nil
	}

	subject := fmt.Sprintf("Your %s booking #%d is confirmed", utils.AppName, booking.ID)
	body := fmt.Sprintf(`
		<h2>Booking confirmed</h2>
		<p>We received your payment of <strong>%s %s</strong> for booking #%d.</p>
		<p>Travelers: %d</p>
		<p>Payment reference: %s</p>
		<p>Have a great trip!</p>
	`, payment.Currency, utils.FormatAmount(payment.Amount), booking.ID, booking.TravelerCount, payment.ProviderOrderID)

	return n.mailer.Send(booking.ContactEmail, subject, body)
}

// notifyAsync runs fn off the request path. Failures are only logged.
func notifyAsync(what string, fn func() error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				utils.LogError("Notifier panicked while sending %s: %v", what, r)
			}
		}()
		if err := fn(); err != nil {
			utils.LogError("Failed to send %s: %v", what, err)
		}
	}()
}
