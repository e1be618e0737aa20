// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package ingest

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/hashsoft7/astrograph/internal/ue"
)

// containerKind is the scope-tracking classification of an enclosing
// declaration, used only to decide fq_name composition and method-vs-
// function disambiguation (spec.md §4.4). It is never emitted.
type containerKind int

const (
	containerModule containerKind = iota
	containerNamespace
	containerType
	containerImpl
)

// container is one entry of the containers stack walked during extraction.
type container struct {
	name string
	kind containerKind
}

// extractState is the mutable walk state for a single file, mirroring the
// two explicit stacks of spec.md §4.4: containers (module/namespace/type/
// impl) and functions (caller id stack, for attributing call edges).
type extractState struct {
	source     []byte
	file       string
	modulePath string
	language   Language
	symbols    []Symbol
	calls      []CallEdge
	containers []container
	functions  []string
}

// ExtractFile parses raw source bytes with the tree-sitter grammar for
// language and walks the resulting CST to produce symbols and call edges
// per spec.md §4.4-§4.6. relPath is the repo-relative, slash-separated path
// stamped on every emitted Symbol/CallEdge and used to derive module_path.
func ExtractFile(ps *parserSet, relPath string, source []byte, language Language) (ParsedFile, error) {
	parser := ps.forLanguage(language)
	if parser == nil {
		return ParsedFile{}, ue.NewParseError(
			"No grammar registered for "+string(language)+" (needed for "+relPath+")",
			"internal grammar registry is missing an entry",
			"this is a bug; please report it",
			nil,
		)
	}

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil || tree == nil {
		return ParsedFile{}, ue.NewParseError(
			"Failed to parse "+relPath+" as "+string(language),
			"tree-sitter returned no tree",
			"check the file for syntax the grammar cannot handle",
			err,
		)
	}
	defer tree.Close()

	state := &extractState{
		source:     source,
		file:       relPath,
		modulePath: modulePathFromFile(relPath),
		language:   language,
	}

	walkNode(tree.RootNode(), state)

	return ParsedFile{Symbols: state.symbols, Calls: state.calls}, nil
}

// walkNode is the single recursive descent shared by every language: a node
// either opens a container, opens a function/method scope, is a call site,
// or is transparent and its children are visited as-is. Containers and
// function scopes push onto their stack for the duration of their subtree
// only, so fq_name and caller_id reflect lexical nesting exactly.
func walkNode(node *sitter.Node, state *extractState) {
	if info, ok := containerInfo(node, state); ok {
		if info.symbol != nil {
			state.symbols = append(state.symbols, *info.symbol)
		}
		state.containers = append(state.containers, container{name: info.name, kind: info.kind})
		walkChildren(node, state)
		state.containers = state.containers[:len(state.containers)-1]
		return
	}

	if symbol, ok := functionSymbol(node, state); ok {
		functionID := symbol.ID
		state.symbols = append(state.symbols, symbol)
		state.functions = append(state.functions, functionID)
		walkChildren(node, state)
		state.functions = state.functions[:len(state.functions)-1]
		return
	}

	if call, ok := callEdge(node, state); ok {
		state.calls = append(state.calls, call)
	}

	walkChildren(node, state)
}

func walkChildren(node *sitter.Node, state *extractState) {
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		walkNode(node.Child(i), state)
	}
}

type containerInfoResult struct {
	name   string
	kind   containerKind
	symbol *Symbol
}

func containerInfo(node *sitter.Node, state *extractState) (containerInfoResult, bool) {
	switch state.language {
	case LanguageRust:
		return rustContainerInfo(node, state)
	default:
		return jsContainerInfo(node, state)
	}
}

func functionSymbol(node *sitter.Node, state *extractState) (Symbol, bool) {
	switch state.language {
	case LanguageRust:
		return rustFunctionSymbol(node, state)
	default:
		return jsFunctionSymbol(node, state)
	}
}

func callEdge(node *sitter.Node, state *extractState) (CallEdge, bool) {
	var calleeName string
	var ok bool
	switch state.language {
	case LanguageRust:
		calleeName, ok = rustCallName(node, state.source)
	default:
		calleeName, ok = jsCallName(node, state.source)
	}
	if !ok {
		return CallEdge{}, false
	}

	if len(state.functions) == 0 {
		return CallEdge{}, false
	}
	callerID := state.functions[len(state.functions)-1]
	span := spanFromNode(node)

	return CallEdge{
		ID:         callEdgeID(callerID, calleeName, state.file, span, state.language),
		CallerID:   callerID,
		CalleeName: calleeName,
		File:       state.file,
		Span:       span,
	}, true
}

// newSymbol composes a Symbol per spec.md §4.5: fq_name from module_path +
// enclosing containers + name, container set to the innermost enclosing
// container's name (nil at file scope), and is_entrypoint true when the
// name is "main" or the symbol is exported.
func newSymbol(state *extractState, name string, kind SymbolKind, node *sitter.Node, isExported bool) Symbol {
	span := spanFromNode(node)
	fqName := buildFQName(state.modulePath, state.containers, name)

	var containerName *string
	if len(state.containers) > 0 {
		c := state.containers[len(state.containers)-1].name
		containerName = &c
	}

	return Symbol{
		ID:           symbolID(state.file, kind, fqName, span, state.language),
		Name:         name,
		Kind:         kind,
		File:         state.file,
		Span:         span,
		FQName:       fqName,
		Container:    containerName,
		IsExported:   isExported,
		IsEntrypoint: name == "main" || isExported,
	}
}

func buildFQName(modulePath string, containers []container, name string) string {
	var parts []string
	if modulePath != "" {
		parts = append(parts, modulePath)
	}
	for _, c := range containers {
		parts = append(parts, c.name)
	}
	parts = append(parts, name)
	return strings.Join(parts, "::")
}

// inMethodContext reports whether the containers stack currently holds a
// Type or Impl entry, the signal that turns a bare function declaration
// into a method (spec.md §4.4).
func inMethodContext(containers []container) bool {
	for _, c := range containers {
		if c.kind == containerType || c.kind == containerImpl {
			return true
		}
	}
	return false
}

// normalizeCallName strips generic-argument suffixes (spec.md §4.4: callee
// names are normalized before matching).
func normalizeCallName(value string) string {
	trimmed := strings.TrimSpace(value)
	if idx := strings.IndexByte(trimmed, '<'); idx >= 0 {
		return trimmed[:idx]
	}
	return trimmed
}

func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

func spanFromNode(node *sitter.Node) Span {
	start := node.StartPoint()
	end := node.EndPoint()
	return Span{
		StartLine: int(start.Row) + 1,
		StartCol:  int(start.Column) + 1,
		EndLine:   int(end.Row) + 1,
		EndCol:    int(end.Column) + 1,
	}
}

// modulePathFromFile derives module_path per spec.md §4.5: the repo-
// relative path with its extension stripped, and a final "mod" or "index"
// segment dropped, joined with "::".
func modulePathFromFile(relPath string) string {
	components := strings.Split(relPath, "/")
	last := components[len(components)-1]
	if dot := strings.LastIndexByte(last, '.'); dot >= 0 {
		last = last[:dot]
	}
	components[len(components)-1] = last
	if last == "mod" || last == "index" {
		components = components[:len(components)-1]
	}
	return strings.Join(components, "::")
}

// findDescendant does a pre-order search for the first node whose kind is
// in kinds, used by the Rust impl-block target lookup.
func findDescendant(node *sitter.Node, kinds map[string]struct{}) *sitter.Node {
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		child := node.Child(i)
		if _, ok := kinds[child.Type()]; ok {
			return child
		}
		if found := findDescendant(child, kinds); found != nil {
			return found
		}
	}
	return nil
}
