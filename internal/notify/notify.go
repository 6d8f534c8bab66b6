// Package notify delivers alert and report notifications to the terminal
// and the application log.
package notify

import (
	"context"
	"fmt"
	"time"

	"marketdesk/internal/models"
)

// Notifier defines the interface for sending notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
	SendAlert(ctx context.Context, alert *models.Alert, tick models.Tick) error
	SendReport(ctx context.Context, report *models.Report) error
	SendError(ctx context.Context, err error, source string) error
}

// Notification represents a notification message.
type Notification struct {
	Type      NotificationType
	Title     string
	Message   string
	Symbol    string
	Timestamp time.Time
}

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationAlert  NotificationType = "alert"
	NotificationReport NotificationType = "report"
	NotificationError  NotificationType = "error"
	NotificationInfo   NotificationType = "info"
)

// MultiNotifier fans one notification out to several channels. A failing
// channel does not stop delivery to the others.
type MultiNotifier struct {
	channels []Notifier
}

// NewMultiNotifier creates a MultiNotifier over the given channels.
func NewMultiNotifier(channels ...Notifier) *MultiNotifier {
	return &MultiNotifier{channels: channels}
}

// Notify implements Notifier.
func (m *MultiNotifier) Notify(ctx context.Context, n Notification) error {
	var firstErr error
	for _, ch := range m.channels {
		if err := ch.Notify(ctx, n); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SendAlert implements Notifier. Each channel renders the alert its own
// way, so delivery goes through the channel's SendAlert rather than a
// pre-rendered Notification.
func (m *MultiNotifier) SendAlert(ctx context.Context, alert *models.Alert, tick models.Tick) error {
	var firstErr error
	for _, ch := range m.channels {
		if err := ch.SendAlert(ctx, alert, tick); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SendReport implements Notifier.
func (m *MultiNotifier) SendReport(ctx context.Context, report *models.Report) error {
	var firstErr error
	for _, ch := range m.channels {
		if err := ch.SendReport(ctx, report); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SendError implements Notifier.
func (m *MultiNotifier) SendError(ctx context.Context, err error, source string) error {
	var firstErr error
	for _, ch := range m.channels {
		if err := ch.SendError(ctx, err, source); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func alertNotification(alert *models.Alert, tick models.Tick) Notification {
	return Notification{
		Type:      NotificationAlert,
		Title:     fmt.Sprintf("Alert: %s", alert.Symbol),
		Message:   fmt.Sprintf("%s %s %.2f (last %.2f)", alert.Symbol, alert.Condition, alert.Price, tick.LTP),
		Symbol:    alert.Symbol,
		Timestamp: tick.Timestamp,
	}
}

func reportNotification(report *models.Report) Notification {
	return Notification{
		Type:      NotificationReport,
		Title:     report.Title,
		Message:   fmt.Sprintf("%s generated for %s", report.Title, report.Date.Format("2006-01-02")),
		Timestamp: report.GeneratedAt,
	}
}

func errorNotification(err error, source string) Notification {
	return Notification{
		Type:      NotificationError,
		Title:     fmt.Sprintf("Error: %s", source),
		Message:   err.Error(),
		Timestamp: time.Now(),
	}
}
