package wa

import (
	"context"
	"time"

	"github.com/matheus3301/wamirror/internal/bus"
	"github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	"go.uber.org/zap"
)

// AuthEventType enumerates auth event types.
type AuthEventType string

const (
	AuthEventQRCode        AuthEventType = "qr_code"
	AuthEventAuthenticated AuthEventType = "authenticated"
	AuthEventAuthFailed    AuthEventType = "auth_failed"
	AuthEventTimeout       AuthEventType = "timeout"
)

// AuthEvent represents an auth lifecycle event.
type AuthEvent struct {
	Type    AuthEventType
	QRCode  string
	Message string
}

// StartQRAuth begins the QR pairing flow and streams events to the bus.
// The daemon runs headless, so each pairing code is also rendered as a
// PNG at qrPath for the user to scan. Returns a channel of AuthEvents;
// the caller should read until the channel closes.
func (a *Adapter) StartQRAuth(ctx context.Context, qrPath string) (<-chan AuthEvent, error) {
	qrChan, err := a.GetQRChannel(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan AuthEvent, 10)

	go func() {
		defer close(out)

		// Connect must be called after GetQRChannel.
		if err := a.Connect(); err != nil {
			out <- AuthEvent{Type: AuthEventAuthFailed, Message: err.Error()}
			a.publishAuth("session.auth_failed", err.Error())
			return
		}

		for item := range qrChan {
			switch item.Event {
			case "code":
				if qrPath != "" {
					if err := qrcode.WriteFile(item.Code, qrcode.Medium, 512, qrPath); err != nil {
						a.logger.Warn("failed to write QR code image",
							zap.String("path", qrPath), zap.Error(err))
					} else {
						a.logger.Info("QR code written, scan it with the WhatsApp app",
							zap.String("path", qrPath))
					}
				}
				out <- AuthEvent{Type: AuthEventQRCode, QRCode: item.Code}
				a.publishAuth("session.qr_generated", item.Code)
			case "success":
				out <- AuthEvent{Type: AuthEventAuthenticated, Message: "authenticated"}
				a.publishAuth("session.authenticated", nil)
				return
			case "timeout":
				out <- AuthEvent{Type: AuthEventTimeout, Message: "QR code timeout"}
				a.publishAuth("session.auth_failed", "timeout")
				return
			default:
				if item.Error != nil {
					out <- AuthEvent{Type: AuthEventAuthFailed, Message: item.Error.Error()}
					a.publishAuth("session.auth_failed", item.Error.Error())
					return
				}
			}
		}
	}()

	return out, nil
}

func (a *Adapter) publishAuth(kind string, payload any) {
	a.bus.Publish(bus.Event{
		Kind:      kind,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

// IsQREvent checks whether a QR channel item is a QR code event.
func IsQREvent(item whatsmeow.QRChannelItem) bool {
	return item.Event == "code"
}
