package discordrpc

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hugolgst/rich-go/ipc"
	"github.com/small-frappuccino/richpresence/pkg/log"
	"github.com/tidwall/gjson"
)

// Client is the connection to the local Discord client used by the Broadcaster.
type Client interface {
	Connect(clientID string) error
	Update(activity *Activity) error
	Clear() error
	Close() error
}

const (
	opHandshake = 0
	opFrame     = 1

	cmdSetActivity = "SET_ACTIVITY"
	evtReady       = "READY"
	evtError       = "ERROR"
)

// transport is the framed socket underneath IPCClient.
type transport interface {
	Open() error
	Close() error
	Send(opcode int, payload string) string
}

// richTransport delegates to the process-wide socket held by rich-go.
type richTransport struct{}

func (richTransport) Open() error                            { return ipc.OpenSocket() }
func (richTransport) Close() error                           { return ipc.CloseSocket() }
func (richTransport) Send(opcode int, payload string) string { return ipc.Send(opcode, payload) }

// IPCClient speaks the Discord RPC protocol over the local IPC socket.
type IPCClient struct {
	mu        sync.Mutex
	conn      transport
	connected bool
	pid       int
	nonce     func() string
}

// NewIPCClient returns a client bound to the Discord IPC socket.
func NewIPCClient() *IPCClient {
	return newIPCClient(richTransport{})
}

func newIPCClient(conn transport) *IPCClient {
	return &IPCClient{
		conn:  conn,
		pid:   os.Getpid(),
		nonce: func() string { return uuid.NewString() },
	}
}

// Connect opens the socket and performs the handshake for clientID.
func (c *IPCClient) Connect(clientID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return fmt.Errorf("application id is required")
	}

	payload, err := json.Marshal(rpcHandshake{
		Version:  "1",
		ClientID: clientID,
	})
	if err != nil {
		return fmt.Errorf("marshal handshake: %w", err)
	}
	if err := c.conn.Open(); err != nil {
		return fmt.Errorf("open rpc socket: %w", err)
	}

	resp := c.conn.Send(opHandshake, string(payload))
	if err := checkResponse(resp); err != nil {
		_ = c.conn.Close()
		return fmt.Errorf("rpc handshake: %w", err)
	}
	if evt := gjson.Get(resp, "evt").String(); evt != "" && evt != evtReady {
		log.RPCLogger().Warn("Unexpected handshake event", "evt", evt)
	}

	c.connected = true
	log.RPCLogger().Info("Discord RPC connected", "client_id", clientID)
	return nil
}

// Update replaces the activity shown for this process.
func (c *IPCClient) Update(activity *Activity) error {
	if activity == nil {
		return fmt.Errorf("activity is required")
	}
	return c.setActivity(activity)
}

// Clear removes the activity shown for this process.
func (c *IPCClient) Clear() error {
	return c.setActivity(nil)
}

// Close releases the socket. Closing a client that is not connected is a no-op.
func (c *IPCClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}
	c.connected = false
	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("close rpc socket: %w", err)
	}
	log.RPCLogger().Info("Discord RPC disconnected")
	return nil
}

func (c *IPCClient) setActivity(activity *Activity) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return fmt.Errorf("rpc client is not connected")
	}

	payload, err := json.Marshal(rpcFrame{
		Command: cmdSetActivity,
		Args: rpcArgs{
			Pid:      c.pid,
			Activity: activity,
		},
		Nonce: c.nonce(),
	})
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}

	resp := c.conn.Send(opFrame, string(payload))
	if err := checkResponse(resp); err != nil {
		return fmt.Errorf("set activity: %w", err)
	}
	return nil
}

// checkResponse inspects a reply from Discord. Replies longer than the read
// buffer arrive truncated, so fields are looked up leniently with gjson.
func checkResponse(resp string) error {
	if strings.TrimSpace(resp) == "" {
		return fmt.Errorf("connection lost: empty response")
	}
	if gjson.Get(resp, "evt").String() == evtError {
		msg := gjson.Get(resp, "data.message").String()
		if msg == "" {
			msg = "unknown error"
		}
		return fmt.Errorf("discord: %s (code %d)", msg, gjson.Get(resp, "data.code").Int())
	}
	// Close payloads carry a top-level code and message and no cmd.
	if !gjson.Get(resp, "cmd").Exists() {
		if code := gjson.Get(resp, "code"); code.Exists() {
			return fmt.Errorf("discord closed the connection: %s (code %d)", gjson.Get(resp, "message").String(), code.Int())
		}
	}
	return nil
}

type rpcHandshake struct {
	Version  string `json:"v"`
	ClientID string `json:"client_id"`
}

type rpcFrame struct {
	Command string  `json:"cmd"`
	Args    rpcArgs `json:"args"`
	Nonce   string  `json:"nonce"`
}

type rpcArgs struct {
	Pid      int       `json:"pid"`
	Activity *Activity `json:"activity,omitempty"`
}
