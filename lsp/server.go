// Package lsp serves diagnostics for signature vector files over the
// Language Server Protocol.
package lsp

import (
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/sigkit/sig"
	"github.com/dhamidi/sigkit/sigfile"
)

const lsName = "sigtool"

// Extension is the file suffix the server checks; other documents are
// ignored.
const Extension = ".sigs"

type Server struct {
	handler protocol.Handler
	server  *server.Server
	version string
	opts    []sig.Option
	log     commonlog.Logger

	mu   sync.Mutex
	docs map[string]string
}

func NewServer(version string, opts ...sig.Option) *Server {
	s := &Server{
		version: version,
		opts:    opts,
		log:     commonlog.GetLogger("sigkit.lsp"),
		docs:    map[string]string{},
	}

	s.handler = protocol.Handler{
		Initialize:            s.initialize,
		Initialized:           s.initialized,
		Shutdown:              s.shutdown,
		SetTrace:              s.setTrace,
		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,
		TextDocumentDidSave:   s.textDocumentDidSave,
	}

	s.server = server.NewServer(&s.handler, lsName, false)

	return s
}

func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := s.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	s.log.Info("client initialized")
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		s.update(ctx, params.TextDocument.URI, whole.Text)
	}
	return nil
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		s.update(ctx, params.TextDocument.URI, *params.Text)
		return nil
	}
	s.mu.Lock()
	text, ok := s.docs[params.TextDocument.URI]
	s.mu.Unlock()
	if ok {
		s.publish(ctx, params.TextDocument.URI, text)
	}
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.mu.Lock()
	_, ok := s.docs[uri]
	delete(s.docs, uri)
	s.mu.Unlock()
	if ok {
		ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: []protocol.Diagnostic{},
		})
	}
	return nil
}

func (s *Server) update(ctx *glsp.Context, uri, text string) {
	if !strings.HasSuffix(uri, Extension) {
		return
	}
	s.mu.Lock()
	s.docs[uri] = text
	s.mu.Unlock()
	s.publish(ctx, uri, text)
}

func (s *Server) publish(ctx *glsp.Context, uri, text string) {
	diags := Diagnostics(text, s.opts...)
	s.log.Debugf("%s: %d diagnostics", uri, len(diags))
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}

// Diagnostics checks a vector file and reports every bad line. The result
// is never nil so that publishing it clears earlier diagnostics.
func Diagnostics(text string, opts ...sig.Option) []protocol.Diagnostic {
	lines, err := sigfile.Parse(strings.NewReader(text))
	found := append(sigfile.ErrorDiagnostics(err), sigfile.Diagnose(lines, opts...)...)

	source := lsName
	severity := protocol.DiagnosticSeverityError
	rows := strings.Split(text, "\n")
	out := make([]protocol.Diagnostic, 0, len(found))
	for _, d := range found {
		row := ""
		if d.Line-1 < len(rows) {
			row = strings.TrimRight(rows[d.Line-1], "\r")
		}
		line := protocol.UInteger(d.Line - 1)
		out = append(out, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: line, Character: utf16Column(row, d.Column)},
				End:   protocol.Position{Line: line, Character: utf16Column(row, d.EndColumn)},
			},
			Severity: &severity,
			Source:   &source,
			Message:  d.Message,
		})
	}
	return out
}

// utf16Column converts a byte offset within line to the UTF-16 code unit
// offset LSP positions use.
func utf16Column(line string, byteCol int) protocol.UInteger {
	if byteCol > len(line) {
		byteCol = len(line)
	}
	n := 0
	for _, r := range line[:byteCol] {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return protocol.UInteger(n)
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
