package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"marketdesk/internal/logging"
	"marketdesk/internal/models"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// TerminalNotifier prints notifications to a terminal writer.
type TerminalNotifier struct {
	mu           sync.Mutex
	out          io.Writer
	colorEnabled bool
	bellEnabled  bool
	timeFormat   string
}

// NewTerminalNotifier creates a terminal notification channel.
func NewTerminalNotifier(out io.Writer, colorEnabled, bellEnabled bool) *TerminalNotifier {
	return &TerminalNotifier{
		out:          out,
		colorEnabled: colorEnabled,
		bellEnabled:  bellEnabled,
		timeFormat:   "15:04:05",
	}
}

// SetTimeFormat overrides the timestamp format in printed lines.
func (t *TerminalNotifier) SetTimeFormat(format string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if format != "" {
		t.timeFormat = format
	}
}

// Notify implements Notifier.
func (t *TerminalNotifier) Notify(_ context.Context, n Notification) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	prefix := ""
	if t.bellEnabled && (n.Type == NotificationAlert || n.Type == NotificationError) {
		prefix = "\a"
	}

	label := t.colorize(n.Type)
	_, err := fmt.Fprintf(t.out, "%s[%s] %s %s\n",
		prefix, n.Timestamp.Format(t.timeFormat), label, n.Message)
	return err
}

func (t *TerminalNotifier) colorize(typ NotificationType) string {
	label := string(typ)
	if !t.colorEnabled {
		return label
	}
	switch typ {
	case NotificationAlert:
		return colorYellow + label + colorReset
	case NotificationError:
		return colorRed + label + colorReset
	case NotificationReport:
		return colorCyan + label + colorReset
	default:
		return colorGreen + label + colorReset
	}
}

// SendAlert implements Notifier.
func (t *TerminalNotifier) SendAlert(ctx context.Context, alert *models.Alert, tick models.Tick) error {
	return t.Notify(ctx, alertNotification(alert, tick))
}

// SendReport implements Notifier.
func (t *TerminalNotifier) SendReport(ctx context.Context, report *models.Report) error {
	return t.Notify(ctx, reportNotification(report))
}

// SendError implements Notifier.
func (t *TerminalNotifier) SendError(ctx context.Context, err error, source string) error {
	return t.Notify(ctx, errorNotification(err, source))
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a log-backed notification channel.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logging.WithComponent(logger, "notify")}
}

// Notify implements Notifier.
func (l *LogNotifier) Notify(_ context.Context, n Notification) error {
	event := l.logger.Info()
	if n.Type == NotificationError {
		event = l.logger.Error()
	}
	event.
		Str("type", string(n.Type)).
		Str("title", n.Title).
		Str("symbol", n.Symbol).
		Msg(n.Message)
	return nil
}

// SendAlert implements Notifier. Alert triggers use the structured alert
// event so they are queryable in the log stream.
func (l *LogNotifier) SendAlert(_ context.Context, alert *models.Alert, tick models.Tick) error {
	logging.LogAlert(l.logger, alert.ID, alert.Symbol, alert.Condition, tick.LTP)
	return nil
}

// SendReport implements Notifier.
func (l *LogNotifier) SendReport(ctx context.Context, report *models.Report) error {
	return l.Notify(ctx, reportNotification(report))
}

// SendError implements Notifier.
func (l *LogNotifier) SendError(ctx context.Context, err error, source string) error {
	return l.Notify(ctx, errorNotification(err, source))
}
