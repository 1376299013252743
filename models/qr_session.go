package models

import "time"

// QR sign-in session states. A session is created by the logged-out device,
// claimed by a logged-in device that scanned the code, then approved or
// denied by that same device. Approved sessions are consumed by exactly one
// successful poll. Expiry is enforced by the store TTL rather than a state.
const (
	QRStatePending  = "pending"
	QRStateClaimed  = "claimed"
	QRStateApproved = "approved"
	QRStateDenied   = "denied"
	QRStateConsumed = "consumed"
)

// QRSession is the ephemeral record behind a QR sign-in handshake. It lives
// in Redis under a TTL; there is no relational row.
//
// Two independent credentials protect the handshake:
//   - the poll secret, known only to the device that created the session;
//   - the scan token, embedded in the QR code and presented by the device
//     that scanned it.
//
// Both are stored as keyed hashes so a leaked store snapshot cannot be
// replayed against either endpoint.
type QRSession struct {
	ID            string `json:"id"`
	SecretHash    string `json:"secret_hash"`
	ScanTokenHash string `json:"scan_token_hash"`
	State         string `json:"state"`

	// UserID is set when a logged-in device claims the session and is the
	// only account allowed to approve or deny it afterwards.
	UserID int64 `json:"user_id,omitempty"`

	// DeviceName and IP describe the initiating (logged-out) device. They
	// are echoed to the claiming device so the user can see what they are
	// about to approve.
	DeviceName string `json:"device_name"`
	IP         string `json:"ip"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	// Grant carries the minted token pair while the session sits in the
	// approved state, waiting for the final poll to collect it.
	Grant *TokenPair `json:"grant,omitempty"`
}

// QRSessionInfo is the claim response shown on the approving device.
type QRSessionInfo struct {
	DeviceName string    `json:"device_name"`
	IP         string    `json:"ip"`
	CreatedAt  time.Time `json:"created_at"`
}

// QRCreated is returned to the device that opened a QR sign-in session.
// Secret authenticates its polls; QRContent is what the code encodes.
type QRCreated struct {
	SessionID   string `json:"session_id"`
	Secret      string `json:"secret"`
	ExpiresIn   int64  `json:"expires_in"`
	QRContent   string `json:"qr_content"`
	QRPNGBase64 string `json:"qr_png_base64"`
}

// QRPollResult is the poll response. Tokens is non-nil exactly once, on the
// poll that observes the approved state.
type QRPollResult struct {
	State  string     `json:"state"`
	Tokens *TokenPair `json:"tokens,omitempty"`
}
