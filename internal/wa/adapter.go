package wa

import (
	"context"
	"fmt"

	"github.com/matheus3301/wamirror/internal/bus"
	"github.com/matheus3301/wamirror/internal/session"
	"github.com/matheus3301/wamirror/internal/store"
	"go.mau.fi/whatsmeow"
	wastore "go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.uber.org/zap"

	_ "github.com/mattn/go-sqlite3"
)

// Adapter wraps the whatsmeow client: it is the transport collaborator
// that produces the synchronization event stream and serves the profile
// picture lookups the engine asks for.
type Adapter struct {
	client    *whatsmeow.Client
	container *sqlstore.Container
	bus       *bus.Bus
	logger    *zap.Logger
	session   string
}

// NewAdapter creates a new WhatsApp adapter for the given session.
func NewAdapter(ctx context.Context, sessionName string, b *bus.Bus, logger *zap.Logger) (*Adapter, error) {
	// Device name shown on the phone's linked devices list.
	wastore.SetOSInfo("wamirror", [3]uint32{0, 1, 0})

	dbPath := session.SessionDBPath(sessionName)

	container, err := sqlstore.New(ctx, "sqlite3",
		fmt.Sprintf("file:%s?_foreign_keys=on", dbPath),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create session store: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("get device store: %w", err)
	}

	return &Adapter{
		client:    whatsmeow.NewClient(deviceStore, nil),
		container: container,
		bus:       b,
		logger:    logger,
		session:   sessionName,
	}, nil
}

// Client returns the underlying whatsmeow client.
func (a *Adapter) Client() *whatsmeow.Client {
	return a.client
}

// IsLoggedIn returns whether the adapter has valid credentials.
func (a *Adapter) IsLoggedIn() bool {
	return a.client.Store.ID != nil
}

// Connect initiates the WhatsApp connection.
func (a *Adapter) Connect() error {
	a.logger.Info("connecting to WhatsApp")
	return a.client.Connect()
}

// Disconnect terminates the WhatsApp connection.
func (a *Adapter) Disconnect() {
	a.logger.Info("disconnecting from WhatsApp")
	a.client.Disconnect()
}

// Logout invalidates the session and removes credentials.
func (a *Adapter) Logout(ctx context.Context) error {
	return a.client.Logout(ctx)
}

// RegisterEventHandler adds a handler for whatsmeow events.
func (a *Adapter) RegisterEventHandler(handler whatsmeow.EventHandler) {
	a.client.AddEventHandler(handler)
}

// GetQRChannel returns the QR channel for pairing. Must be called before
// Connect.
func (a *Adapter) GetQRChannel(ctx context.Context) (<-chan whatsmeow.QRChannelItem, error) {
	if a.IsLoggedIn() {
		return nil, fmt.Errorf("already logged in")
	}
	ch, err := a.client.GetQRChannel(ctx)
	if err != nil {
		return nil, fmt.Errorf("get QR channel: %w", err)
	}
	return ch, nil
}

// ProfilePictureURL fetches the current picture URL for a contact JID.
// Returns empty without error when no picture is set or visible.
func (a *Adapter) ProfilePictureURL(ctx context.Context, jid string) (string, error) {
	target, err := types.ParseJID(jid)
	if err != nil {
		return "", fmt.Errorf("parse JID: %w", err)
	}
	info, err := a.client.GetProfilePictureInfo(ctx, target, nil)
	if err != nil {
		return "", fmt.Errorf("profile picture info: %w", err)
	}
	if info == nil {
		return "", nil
	}
	return info.URL, nil
}

// JoinedGroups fetches metadata for every group the account belongs to.
// Feeds the mirror's unmanaged group metadata passthrough.
func (a *Adapter) JoinedGroups(ctx context.Context) []store.GroupMetadata {
	groups, err := a.client.GetJoinedGroups(ctx)
	if err != nil {
		a.logger.Warn("failed to fetch joined groups", zap.Error(err))
		return nil
	}
	out := make([]store.GroupMetadata, 0, len(groups))
	for _, g := range groups {
		out = append(out, store.GroupMetadata{
			JID:          g.JID.String(),
			Subject:      g.Name,
			OwnerJID:     g.OwnerJID.String(),
			Participants: len(g.Participants),
		})
	}
	return out
}

// ResolveLID resolves a LID JID to its phone number JID using the device
// store mapping. Returns the original JID if it is not a LID or the
// mapping is unknown.
func (a *Adapter) ResolveLID(ctx context.Context, jid types.JID) types.JID {
	if jid.Server != types.HiddenUserServer && jid.Server != types.HostedLIDServer {
		return jid
	}
	if a.client == nil || a.client.Store == nil || a.client.Store.LIDs == nil {
		return jid
	}
	pn, err := a.client.Store.LIDs.GetPNForLID(ctx, jid)
	if err != nil || pn.IsEmpty() {
		return jid
	}
	return pn
}

// PhoneNumber returns the phone number from the device store, or empty.
func (a *Adapter) PhoneNumber() string {
	if a.client.Store.ID == nil {
		return ""
	}
	return a.client.Store.ID.User
}
