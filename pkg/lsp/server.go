// Package lsp provides a Language Server Protocol (LSP) server for CSS.
// It publishes validation diagnostics, shows the syntax of properties and
// at-rules on hover, and completes property names.
package lsp

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/Sumatoshi-tech/csstree/pkg/syntax"
	"github.com/Sumatoshi-tech/csstree/pkg/validator"
	"github.com/Sumatoshi-tech/csstree/pkg/version"
)

const (
	serverName       = "csstree"
	diagnosticSource = "csstree"
)

// DocumentStore is a thread-safe store for document contents keyed by URI.
type DocumentStore struct {
	documents map[string]string
	mu        sync.RWMutex
}

// NewDocumentStore creates a new empty DocumentStore.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]string),
	}
}

// Set stores document content for the given URI.
func (ds *DocumentStore) Set(uri, content string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.documents[uri] = content
}

// Get retrieves document content by URI.
func (ds *DocumentStore) Get(uri string) (string, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	content, ok := ds.documents[uri]

	return content, ok
}

// Delete removes document content by URI.
func (ds *DocumentStore) Delete(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	delete(ds.documents, uri)
}

// Server implements the CSS language server.
type Server struct {
	syntax  *syntax.Syntax
	logger  *slog.Logger
	store   *DocumentStore
	handler protocol.Handler
}

// NewServer creates a language server checking documents against syn.
func NewServer(syn *syntax.Syntax, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	srv := &Server{syntax: syn, logger: logger, store: NewDocumentStore()}

	srv.handler = protocol.Handler{
		Initialize:             srv.initialize,
		Initialized:            srv.initialized,
		Shutdown:               srv.shutdown,
		SetTrace:               srv.setTrace,
		TextDocumentDidOpen:    srv.didOpen,
		TextDocumentDidChange:  srv.didChange,
		TextDocumentDidSave:    srv.didSave,
		TextDocumentDidClose:   srv.didClose,
		TextDocumentCompletion: srv.completion,
		TextDocumentHover:      srv.hover,
	}

	return srv
}

// Handler returns the protocol handler of the server.
func (srv *Server) Handler() *protocol.Handler {
	return &srv.handler
}

// Store returns the open documents.
func (srv *Server) Store() *DocumentStore {
	return srv.store
}

// Run serves the protocol on stdio until the client disconnects.
func (srv *Server) Run() error {
	lspServer := server.NewServer(&srv.handler, serverName, false)

	srv.logger.Info("language server started", "version", version.Version)

	return lspServer.RunStdio()
}

func (srv *Server) initialize(_ *glsp.Context, _ *protocol.InitializeParams) (any, error) {
	capabilities := srv.handler.CreateServerCapabilities()

	if syncOpts, ok := capabilities.TextDocumentSync.(*protocol.TextDocumentSyncOptions); ok {
		full := protocol.TextDocumentSyncKindFull
		syncOpts.Change = &full
	}

	ver := version.Version

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &ver,
		},
	}, nil
}

func (srv *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	return nil
}

func (srv *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)

	return nil
}

func (srv *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)

	return nil
}

func (srv *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI

	srv.store.Set(uri, params.TextDocument.Text)
	srv.publishDiagnostics(ctx, uri)

	return nil
}

func (srv *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	text, _ := srv.store.Get(uri)

	for _, change := range params.ContentChanges {
		switch change := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = change.Text
		case protocol.TextDocumentContentChangeEvent:
			text = applyChange(text, change)
		}
	}

	srv.store.Set(uri, text)
	srv.publishDiagnostics(ctx, uri)

	return nil
}

// applyChange replaces the range of an incremental change.
func applyChange(text string, change protocol.TextDocumentContentChangeEvent) string {
	if change.Range == nil {
		return change.Text
	}

	start := offsetOf(text, change.Range.Start)
	end := max(offsetOf(text, change.Range.End), start)

	return text[:start] + change.Text + text[end:]
}

// offsetOf returns the byte offset of an LSP position in text.
func offsetOf(text string, pos protocol.Position) int {
	offset := 0

	for range pos.Line {
		next := strings.IndexByte(text[offset:], '\n')
		if next < 0 {
			return len(text)
		}

		offset += next + 1
	}

	lineEnd := strings.IndexByte(text[offset:], '\n')
	if lineEnd < 0 {
		lineEnd = len(text) - offset
	}

	return offset + byteIndex(text[offset:offset+lineEnd], int(pos.Character))
}

func (srv *Server) didSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI

	if _, ok := srv.store.Get(uri); ok {
		srv.publishDiagnostics(ctx, uri)
	}

	return nil
}

func (srv *Server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	srv.store.Delete(uri)

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})

	return nil
}

// Diagnostics validates text and converts the problems into LSP
// diagnostics.
func (srv *Server) Diagnostics(text string) []protocol.Diagnostic {
	report, err := validator.Validate(srv.syntax, text)
	if err != nil {
		srv.logger.Warn("validation failed", "error", err)

		return []protocol.Diagnostic{}
	}

	lines := splitLines(text)
	source := diagnosticSource
	diagnostics := make([]protocol.Diagnostic, 0, len(report.Problems))

	for _, problem := range report.Problems {
		severity := protocol.DiagnosticSeverityError
		if problem.Severity == validator.SeverityWarning {
			severity = protocol.DiagnosticSeverityWarning
		}

		message := problem.Message
		if len(problem.Suggestions) > 0 {
			message += ". Did you mean `" + problem.Suggestions[0] + "`?"
		}

		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: toProtocolPosition(lines, problem.Start),
				End:   toProtocolPosition(lines, problem.End),
			},
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: string(problem.Kind)},
			Source:   &source,
			Message:  message,
		})
	}

	return diagnostics
}

func (srv *Server) publishDiagnostics(ctx *glsp.Context, uri string) {
	text, ok := srv.store.Get(uri)
	if !ok {
		return
	}

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: srv.Diagnostics(text),
	})
}

func (srv *Server) completion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	text, _ := srv.store.Get(params.TextDocument.URI)

	return srv.Complete(text, params.Position), nil
}

// Complete lists the property names starting with the word before pos.
func (srv *Server) Complete(text string, pos protocol.Position) protocol.CompletionList {
	_, prefix := wordAt(text, pos)
	prefix = strings.ToLower(prefix)

	lex := srv.syntax.Lexer()

	kind := protocol.CompletionItemKindProperty
	items := make([]protocol.CompletionItem, 0)

	for _, name := range lex.Properties() {
		if !strings.HasPrefix(name, prefix) {
			continue
		}

		detail := lex.GetProperty(name, false).Source

		items = append(items, protocol.CompletionItem{
			Label:  name,
			Kind:   &kind,
			Detail: &detail,
		})
	}

	return protocol.CompletionList{IsIncomplete: false, Items: items}
}

func (srv *Server) hover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := srv.store.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil //nolint:nilnil // LSP expects a null hover for unknown documents.
	}

	return srv.Hover(text, params.Position), nil
}

// Hover describes the property or at-rule under pos, or returns nil.
func (srv *Server) Hover(text string, pos protocol.Position) *protocol.Hover {
	word, _ := wordAt(text, pos)
	if word == "" {
		return nil
	}

	lex := srv.syntax.Lexer()

	var doc string

	if name, ok := strings.CutPrefix(word, "@"); ok {
		atrule := lex.GetAtrule(name, true)
		if atrule == nil {
			return nil
		}

		doc = "@" + name
		if atrule.Prelude != nil {
			doc += " " + atrule.Prelude.Source
		}
	} else {
		desc := lex.GetProperty(word, true)
		if desc == nil {
			return nil
		}

		doc = word + ": " + desc.Source
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: "```css\n" + doc + "\n```",
		},
	}
}
