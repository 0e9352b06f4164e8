package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"bistro/internal/config"
	"bistro/internal/model"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt"))
)

// mailSender is satisfied by *gomail.Dialer.
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailNotifier struct {
	sender     mailSender
	from       string
	restaurant config.RestaurantConfig
	logger     zerolog.Logger
}

// NewEmailNotifier sends mail through the configured SMTP server.
func NewEmailNotifier(smtp config.SMTPConfig, restaurant config.RestaurantConfig, logger zerolog.Logger) Notifier {
	return newEmailNotifier(gomail.NewDialer(smtp.Host, smtp.Port, smtp.Username, smtp.Password), smtp.From, restaurant, logger)
}

func newEmailNotifier(sender mailSender, from string, restaurant config.RestaurantConfig, logger zerolog.Logger) *emailNotifier {
	return &emailNotifier{
		sender:     sender,
		from:       from,
		restaurant: restaurant,
		logger:     logger.With().Str("component", "email-notifier").Logger(),
	}
}

func (n *emailNotifier) OrderConfirmed(_ context.Context, order *model.Order) error {
	view := newOrderView(n.restaurant.Name, order)
	subject := fmt.Sprintf("Order Confirmed - #%s | %s", view.Number, n.restaurant.Name)
	return n.send(order.Email, subject, "order_confirmed", view)
}

func (n *emailNotifier) NewOrder(_ context.Context, order *model.Order) error {
	if n.restaurant.Email == "" {
		return nil
	}
	view := newOrderView(n.restaurant.Name, order)
	subject := fmt.Sprintf("New Order #%s - %s - Pickup: %s",
		view.Number, view.Total, order.PickupTime.Format(shortLayout))
	return n.send(n.restaurant.Email, subject, "new_order", view)
}

func (n *emailNotifier) ReservationReceived(_ context.Context, res *model.Reservation) error {
	subject := fmt.Sprintf("Your reservation at %s", n.restaurant.Name)
	return n.send(res.Email, subject, "reservation", newReservationView(n.restaurant.Name, res))
}

// send renders name.txt and, when present, name.html into a multipart message.
func (n *emailNotifier) send(to, subject, name string, data any) error {
	var plain bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&plain, name+".txt", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plain.String())

	if t := htmlTemplates.Lookup(name + ".html"); t != nil {
		var html bytes.Buffer
		if err := t.Execute(&html, data); err != nil {
			return fmt.Errorf("failed to render %s: %w", name, err)
		}
		m.AddAlternative("text/html", html.String())
	}

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	n.logger.Info().Str("to", to).Str("template", name).Msg("email sent")
	return nil
}
