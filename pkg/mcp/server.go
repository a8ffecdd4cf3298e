package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/windlass-sh/windlass/pkg/logging"
	"github.com/windlass-sh/windlass/pkg/tools"
)

// DefaultProtocolVersion is advertised when the client does not name a
// protocol version of its own.
const DefaultProtocolVersion = "2024-11-05"

// maxLineSize bounds a single request line. Tool arguments can carry
// page-sized payloads, so the ceiling is generous.
const maxLineSize = 16 * 1024 * 1024

// ToolCatalog is the slice of the registry the server needs: the
// current tool list, name lookup, and change subscription.
type ToolCatalog interface {
	Tools() []tools.Tool
	Lookup(name string) (tools.Tool, bool)
	OnChange(fn func())
}

// Server speaks line-delimited JSON-RPC 2.0 on a reader/writer pair.
// Requests are dispatched strictly in arrival order; the only out-of-
// band writes are tools/list_changed notifications, serialized against
// responses by outMu.
type Server struct {
	in      io.Reader
	out     io.Writer
	outMu   sync.Mutex
	catalog ToolCatalog
	log     *logging.Logger

	serverName    string
	serverVersion string
}

// NewServer creates a server bound to the given streams and catalog and
// subscribes to catalog changes.
func NewServer(in io.Reader, out io.Writer, catalog ToolCatalog, name, version string, log *logging.Logger) *Server {
	s := &Server{
		in:            in,
		out:           out,
		catalog:       catalog,
		log:           log,
		serverName:    name,
		serverVersion: version,
	}
	catalog.OnChange(s.notifyToolListChanged)
	return s
}

// Run reads requests until the input stream closes or the context is
// cancelled. Each line is handled to completion before the next is
// read. Reading happens on a separate goroutine so a cancellation (the
// signal path) ends the loop even while stdin is idle; the reader
// itself stays blocked in its read, which is fine because cancellation
// is followed by process exit.
func (s *Server) Run(ctx context.Context) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(s.in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := make([]byte, len(scanner.Bytes()))
			copy(line, scanner.Bytes())
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			return err
		case line := <-lines:
			line = bytes.TrimSpace(line)
			if len(line) == 0 {
				continue
			}
			s.handleLine(ctx, line)
		}
	}
}

func (s *Server) handleLine(ctx context.Context, line []byte) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		s.log.Warnf("unparseable request: %v", err)
		s.writeResponse(Response{
			JSONRPC: "2.0",
			ID:      json.RawMessage("null"),
			Error:   &RPCError{Code: CodeParseError, Message: fmt.Sprintf("parse error: %v", err)},
		})
		return
	}

	if req.IsNotification() {
		s.handleNotification(req)
		return
	}
	s.writeResponse(s.dispatch(ctx, req))
}

// handleNotification consumes client notifications. Notifications get
// no response, success or not.
func (s *Server) handleNotification(req Request) {
	switch req.Method {
	case "notifications/initialized", "initialized":
		s.log.Infof("client initialized")
	default:
		s.log.Debugf("ignoring notification %q", req.Method)
	}
}

func (s *Server) dispatch(ctx context.Context, req Request) Response {
	resp := Response{JSONRPC: "2.0", ID: req.ID}

	switch req.Method {
	case "initialize":
		result, rpcErr := s.handleInitialize(req.Params)
		resp.Result, resp.Error = result, rpcErr
	case "tools/list":
		resp.Result = s.handleToolsList()
	case "tools/call":
		result, rpcErr := s.handleToolsCall(ctx, req.Params)
		resp.Result, resp.Error = result, rpcErr
	case "ping":
		resp.Result = map[string]interface{}{}
	default:
		resp.Error = &RPCError{
			Code:    CodeMethodNotFound,
			Message: fmt.Sprintf("method not found: %s", req.Method),
		}
	}
	return resp
}

// handleInitialize echoes the client's protocol version when it names
// one. A client on a version this server has never heard of still gets
// a well-formed handshake back.
func (s *Server) handleInitialize(params json.RawMessage) (interface{}, *RPCError) {
	var p InitializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, &RPCError{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid initialize params: %v", err)}
		}
	}

	version := p.ProtocolVersion
	if version == "" {
		version = DefaultProtocolVersion
	}
	if p.ClientInfo.Name != "" {
		s.log.Infof("initialize from %s %s (protocol %s)", p.ClientInfo.Name, p.ClientInfo.Version, version)
	}

	return InitializeResult{
		ProtocolVersion: version,
		Capabilities:    Capabilities{Tools: ToolsCapability{ListChanged: true}},
		ServerInfo:      ServerInfo{Name: s.serverName, Version: s.serverVersion},
	}, nil
}

func (s *Server) handleToolsList() ToolsListResult {
	catalog := s.catalog.Tools()
	descriptors := make([]ToolDescriptor, 0, len(catalog))
	for _, tool := range catalog {
		descriptors = append(descriptors, ToolDescriptor{
			Name:        tool.Name(),
			Description: tool.Description(),
			InputSchema: tool.Schema(),
		})
	}
	return ToolsListResult{Tools: descriptors}
}

func (s *Server) handleToolsCall(ctx context.Context, params json.RawMessage) (interface{}, *RPCError) {
	var call CallParams
	if err := json.Unmarshal(params, &call); err != nil {
		return nil, &RPCError{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid tools/call params: %v", err)}
	}
	if call.Name == "" {
		return nil, &RPCError{Code: CodeInvalidParams, Message: "tool name is required"}
	}

	tool, ok := s.catalog.Lookup(call.Name)
	if !ok {
		return nil, &RPCError{Code: CodeMethodNotFound, Message: fmt.Sprintf("unknown tool: %s", call.Name)}
	}

	return s.executeTool(ctx, tool, call.Arguments), nil
}

// executeTool runs one tool and folds both errors and panics into an
// error-flagged result so a misbehaving tool cannot take the protocol
// stream down.
func (s *Server) executeTool(ctx context.Context, tool tools.Tool, args json.RawMessage) (result CallResult) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorf("tool %s panicked: %v", tool.Name(), r)
			result = ErrorResult(fmt.Sprintf("tool %s panicked: %v", tool.Name(), r))
		}
	}()

	text, meta, err := tool.Execute(ctx, args)
	if err != nil {
		s.log.Warnf("tool %s failed: %v", tool.Name(), err)
		return ErrorResult(err.Error())
	}

	result = TextResult(text)
	if len(meta) > 0 {
		encoded, err := json.Marshal(meta)
		if err != nil {
			s.log.Warnf("tool %s produced unencodable metadata: %v", tool.Name(), err)
		} else {
			result.Content = append(result.Content, ContentBlock{Type: "text", Text: string(encoded)})
		}
	}
	return result
}

func (s *Server) notifyToolListChanged() {
	s.writeMessage(Notification{
		JSONRPC: "2.0",
		Method:  "notifications/tools/list_changed",
	})
}

func (s *Server) writeResponse(resp Response) {
	s.writeMessage(resp)
}

func (s *Server) writeMessage(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.log.Errorf("failed to encode outgoing message: %v", err)
		return
	}

	s.outMu.Lock()
	defer s.outMu.Unlock()
	if _, err := s.out.Write(append(data, '\n')); err != nil {
		s.log.Errorf("failed to write message: %v", err)
	}
}
