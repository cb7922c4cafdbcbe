package bulbaux

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/soypat/glbulb"
)

// Op is a control plane operation.
type Op uint8

const (
	// OpGet replies with the current settings.
	OpGet Op = iota
	// OpSet replaces the settings with the command's.
	OpSet
	// OpReset restores all defaults.
	OpReset
	// OpResetCamera restores the camera defaults.
	OpResetCamera
	// OpAction applies the command's Action.
	OpAction
)

func (op Op) String() string {
	switch op {
	case OpGet:
		return "get"
	case OpSet:
		return "set"
	case OpReset:
		return "reset"
	case OpResetCamera:
		return "reset camera"
	case OpAction:
		return "action"
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}

// Command is a request sent to a control server.
type Command struct {
	Op       Op
	Settings glbulb.Settings
	Action   Action
}

// Reply is the response to every Command. Settings holds the settings after
// the command was applied.
type Reply struct {
	Settings glbulb.Settings
	Err      string
}

// ServeControl accepts connections on ln and applies the commands they send
// to shared until ctx is done or ln fails. Mutations are applied under
// shared's lock so the frame loop never synchronizes a partially applied
// command. ServeControl closes ln before returning.
func ServeControl(ctx context.Context, ln net.Listener, shared *glbulb.SharedSettings) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	defer ln.Close()
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		logger.Infof("control connection from %s", conn.RemoteAddr())
		wg.Add(1)
		go func() {
			defer wg.Done()
			closeConn := context.AfterFunc(ctx, func() { conn.Close() })
			defer closeConn()
			err := serveConn(conn, shared)
			if err != nil && ctx.Err() == nil {
				logger.Warningf("control connection: %s", err)
			}
		}()
	}
}

func serveConn(conn net.Conn, shared *glbulb.SharedSettings) error {
	defer conn.Close()
	dec := gob.NewDecoder(conn)
	enc := gob.NewEncoder(conn)
	for {
		var cmd Command
		err := dec.Decode(&cmd)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		reply := applyCommand(shared, cmd)
		logger.Debugf("control %s: %q", cmd.Op, reply.Err)
		err = enc.Encode(&reply)
		if err != nil {
			return err
		}
	}
}

func applyCommand(shared *glbulb.SharedSettings, cmd Command) (reply Reply) {
	switch cmd.Op {
	case OpGet:
	case OpSet:
		shared.Store(cmd.Settings)
	case OpReset:
		shared.Reset()
	case OpResetCamera:
		shared.ResetCamera()
	case OpAction:
		if cmd.Action.WindowOnly() || cmd.Action >= actionCount {
			reply.Err = "action " + cmd.Action.String() + " is not a settings action"
			break
		}
		shared.Update(func(s *glbulb.Settings) { ApplyAction(s, cmd.Action) })
	default:
		reply.Err = "unknown op " + cmd.Op.String()
	}
	reply.Settings = shared.Load()
	return reply
}

// ControlClient sends commands to a control server over a single connection.
// It is not safe for concurrent use.
type ControlClient struct {
	conn net.Conn
	enc  *gob.Encoder
	dec  *gob.Decoder
}

// NewControlClient returns a client communicating over conn.
func NewControlClient(conn net.Conn) *ControlClient {
	return &ControlClient{
		conn: conn,
		enc:  gob.NewEncoder(conn),
		dec:  gob.NewDecoder(conn),
	}
}

// DialControl connects to a control server listening on TCP address addr.
func DialControl(ctx context.Context, addr string) (*ControlClient, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewControlClient(conn), nil
}

// Do sends cmd and waits for the reply.
func (c *ControlClient) Do(cmd Command) (glbulb.Settings, error) {
	err := c.enc.Encode(&cmd)
	if err != nil {
		return glbulb.Settings{}, err
	}
	var reply Reply
	err = c.dec.Decode(&reply)
	if err != nil {
		return glbulb.Settings{}, err
	}
	if reply.Err != "" {
		return reply.Settings, errors.New(reply.Err)
	}
	return reply.Settings, nil
}

// Get returns the server's current settings.
func (c *ControlClient) Get() (glbulb.Settings, error) {
	return c.Do(Command{Op: OpGet})
}

// Set replaces the server's settings.
func (c *ControlClient) Set(s glbulb.Settings) (glbulb.Settings, error) {
	return c.Do(Command{Op: OpSet, Settings: s})
}

// Apply applies an input action on the server's settings.
func (c *ControlClient) Apply(a Action) (glbulb.Settings, error) {
	return c.Do(Command{Op: OpAction, Action: a})
}

// Close closes the underlying connection.
func (c *ControlClient) Close() error {
	return c.conn.Close()
}

// NewPipeListener returns an in-process listener which accepts exactly one
// connection, the other end of the returned client connection.
func NewPipeListener() (client net.Conn, listener net.Listener) {
	clientPipe, listenerPipe := net.Pipe()
	return clientPipe, &pipeListener{
		pipe: listenerPipe,
		done: make(chan struct{}),
	}
}

type pipeListener struct {
	mu     sync.Mutex
	pipe   net.Conn
	done   chan struct{}
	closed bool
}

func (p *pipeListener) Accept() (net.Conn, error) {
	p.mu.Lock()
	conn := p.pipe
	p.pipe = nil
	p.mu.Unlock()
	if conn != nil {
		return conn, nil
	}
	<-p.done
	return nil, net.ErrClosed
}

func (p *pipeListener) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.done)
	if p.pipe != nil {
		return p.pipe.Close()
	}
	return nil
}

func (p *pipeListener) Addr() net.Addr {
	return pipeAddr{}
}

type pipeAddr struct{}

func (pipeAddr) Network() string { return "pipe" }
func (pipeAddr) String() string  { return "pipe" }
