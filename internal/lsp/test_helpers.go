package lsp

// This file documents testing constraints for LSP server tests.
// Unexported methods on the jsonrpc2.Request interface make unit-testing
// the handler layer directly impractical; the pipeline it wraps is covered
// in internal/compiler/pipeline instead. Integration testing should be
// performed using a real LSP client.
