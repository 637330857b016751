// Package lsp implements a Language Server Protocol server for Lumen. The
// grammar has no resource/field/hook namespace to drive completion or
// go-to-definition against, so the server's one job is diagnostics: run the
// pipeline on every open, change, and save, and publish whatever stage
// failure comes back.
package lsp

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"sync"

	"github.com/lumen-lang/lumen/internal/compiler/pipeline"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap"
)

// Server implements the LSP server for Lumen.
type Server struct {
	conn   jsonrpc2.Conn
	client protocol.Client
	logger *log.Logger

	workspaceRoot string
	capabilities  protocol.ServerCapabilities

	mu   sync.Mutex
	docs map[string]string

	cancel context.CancelFunc
}

// NewServer creates a new LSP server instance.
func NewServer() *Server {
	return &Server{
		logger: log.New(os.Stderr, "[LSP] ", log.LstdFlags),
		docs:   make(map[string]string),
		capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
				Save: &protocol.SaveOptions{
					IncludeText: false,
				},
			},
		},
	}
}

// Run starts the LSP server over stdin/stdout.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Println("Starting Lumen Language Server")

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	stream := jsonrpc2.NewStream(stdrwc{})
	conn := jsonrpc2.NewConn(stream)
	s.conn = conn

	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		s.logger.Printf("warning: failed to create zap logger: %v", err)
		zapLogger = zap.NewNop()
	}
	s.client = protocol.ClientDispatcher(conn, zapLogger)

	conn.Go(ctx, s.handler())

	<-ctx.Done()

	s.logger.Println("Shutting down Lumen Language Server")
	return conn.Close()
}

func (s *Server) handler() jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		s.logger.Printf("received: %s", req.Method())

		switch req.Method() {
		case protocol.MethodInitialize:
			return s.handleInitialize(ctx, reply, req)
		case protocol.MethodInitialized:
			return s.handleInitialized(ctx, reply, req)
		case protocol.MethodShutdown:
			return s.handleShutdown(ctx, reply, req)
		case protocol.MethodExit:
			return s.handleExit(ctx, reply, req)
		case protocol.MethodTextDocumentDidOpen:
			return s.handleTextDocumentDidOpen(ctx, reply, req)
		case protocol.MethodTextDocumentDidChange:
			return s.handleTextDocumentDidChange(ctx, reply, req)
		case protocol.MethodTextDocumentDidClose:
			return s.handleTextDocumentDidClose(ctx, reply, req)
		case protocol.MethodTextDocumentDidSave:
			return s.handleTextDocumentDidSave(ctx, reply, req)
		default:
			return reply(ctx, nil, jsonrpc2.ErrMethodNotFound)
		}
	}
}

func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.InitializeParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse initialize params")
	}

	s.logger.Printf("initialize from client: %v", params.ClientInfo)

	switch {
	case len(params.WorkspaceFolders) > 0:
		s.workspaceRoot = uri.URI(params.WorkspaceFolders[0].URI).Filename()
	case params.RootURI != "":
		s.workspaceRoot = params.RootURI.Filename()
	case params.RootPath != "":
		s.workspaceRoot = params.RootPath
	}

	result := protocol.InitializeResult{
		Capabilities: s.capabilities,
		ServerInfo: &protocol.ServerInfo{
			Name:    "lumen-lsp",
			Version: "0.1.0",
		},
	}
	return reply(ctx, result, nil)
}

func (s *Server) handleInitialized(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	return reply(ctx, nil, nil)
}

func (s *Server) handleShutdown(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	return reply(ctx, nil, nil)
}

func (s *Server) handleExit(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	if err := reply(ctx, nil, nil); err != nil {
		s.logger.Printf("error replying to exit: %v", err)
	}
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

func (s *Server) handleTextDocumentDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse didOpen params")
	}

	docURI := string(params.TextDocument.URI)
	s.setDocument(docURI, params.TextDocument.Text)
	s.publishDiagnostics(ctx, docURI)
	return reply(ctx, nil, nil)
}

func (s *Server) handleTextDocumentDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidChangeTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse didChange params")
	}
	if len(params.ContentChanges) == 0 {
		return reply(ctx, nil, nil)
	}

	docURI := string(params.TextDocument.URI)
	content := params.ContentChanges[len(params.ContentChanges)-1].Text
	s.setDocument(docURI, content)
	s.publishDiagnostics(ctx, docURI)
	return reply(ctx, nil, nil)
}

func (s *Server) handleTextDocumentDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse didClose params")
	}

	docURI := string(params.TextDocument.URI)
	s.mu.Lock()
	delete(s.docs, docURI)
	s.mu.Unlock()
	return reply(ctx, nil, nil)
}

func (s *Server) handleTextDocumentDidSave(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidSaveTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "failed to parse didSave params")
	}
	s.publishDiagnostics(ctx, string(params.TextDocument.URI))
	return reply(ctx, nil, nil)
}

func (s *Server) setDocument(uri, content string) {
	s.mu.Lock()
	s.docs[uri] = content
	s.mu.Unlock()
}

// publishDiagnostics runs the full pipeline over the document's current
// content and reports either its single failing diagnostic or none.
func (s *Server) publishDiagnostics(ctx context.Context, docURI string) {
	s.mu.Lock()
	content := s.docs[docURI]
	s.mu.Unlock()

	result := pipeline.Compile(content)

	diagnostics := make([]protocol.Diagnostic, 0, len(result.Diagnostics))
	for _, d := range result.Diagnostics {
		line := d.Line - 1
		if line < 0 {
			line = 0
		}
		col := d.Column - 1
		if col < 0 {
			col = 0
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: uint32(line), Character: uint32(col)},
				End:   protocol.Position{Line: uint32(line), Character: uint32(col + 1)},
			},
			Severity: protocol.DiagnosticSeverityError,
			Source:   string(d.Stage),
			Message:  d.Message,
		})
	}

	params := protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentURI(docURI),
		Diagnostics: diagnostics,
	}
	if err := s.client.PublishDiagnostics(ctx, &params); err != nil {
		s.logger.Printf("error publishing diagnostics: %v", err)
	}
}

func (s *Server) replyWithError(ctx context.Context, reply jsonrpc2.Replier, code jsonrpc2.Code, message string) error {
	return reply(ctx, nil, &jsonrpc2.Error{Code: code, Message: message})
}

type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}
