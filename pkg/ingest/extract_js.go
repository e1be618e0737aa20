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
	sitter "github.com/smacker/go-tree-sitter"
)

// jsContainerInfo covers JavaScript/TypeScript/Tsx alike: the three
// grammars share these node kinds (spec.md §4.4 treats them as one family).
func jsContainerInfo(node *sitter.Node, state *extractState) (containerInfoResult, bool) {
	switch node.Type() {
	case "class_declaration":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return containerInfoResult{}, false
		}
		name := nodeText(nameNode, state.source)
		symbol := newSymbol(state, name, KindClass, node, jsIsExported(node))
		return containerInfoResult{name: name, kind: containerType, symbol: &symbol}, true

	case "interface_declaration":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return containerInfoResult{}, false
		}
		name := nodeText(nameNode, state.source)
		symbol := newSymbol(state, name, KindInterface, node, jsIsExported(node))
		return containerInfoResult{name: name, kind: containerType, symbol: &symbol}, true

	case "module_declaration":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return containerInfoResult{}, false
		}
		name := nodeText(nameNode, state.source)
		symbol := newSymbol(state, name, KindNamespace, node, jsIsExported(node))
		return containerInfoResult{name: name, kind: containerNamespace, symbol: &symbol}, true

	default:
		return containerInfoResult{}, false
	}
}

func jsFunctionSymbol(node *sitter.Node, state *extractState) (Symbol, bool) {
	switch node.Type() {
	case "function_declaration":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return Symbol{}, false
		}
		name := nodeText(nameNode, state.source)
		kind := KindFunction
		if inMethodContext(state.containers) {
			kind = KindMethod
		}
		return newSymbol(state, name, kind, node, jsIsExported(node)), true

	case "method_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return Symbol{}, false
		}
		name := nodeText(nameNode, state.source)
		return newSymbol(state, name, KindMethod, node, jsIsExported(node)), true

	case "variable_declarator":
		nameNode := node.ChildByFieldName("name")
		valueNode := node.ChildByFieldName("value")
		if nameNode == nil || valueNode == nil {
			return Symbol{}, false
		}
		switch valueNode.Type() {
		case "arrow_function", "function", "function_expression":
			name := nodeText(nameNode, state.source)
			return newSymbol(state, name, KindFunction, node, jsIsExported(node)), true
		default:
			return Symbol{}, false
		}

	case "enum_declaration":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return Symbol{}, false
		}
		name := nodeText(nameNode, state.source)
		return newSymbol(state, name, KindEnum, node, jsIsExported(node)), true

	default:
		return Symbol{}, false
	}
}

func jsCallName(node *sitter.Node, source []byte) (string, bool) {
	switch node.Type() {
	case "call_expression":
		fn := node.ChildByFieldName("function")
		if fn == nil {
			return "", false
		}
		return normalizeCallName(nodeText(fn, source)), true

	case "new_expression":
		ctor := node.ChildByFieldName("constructor")
		if ctor == nil {
			return "", false
		}
		return normalizeCallName(nodeText(ctor, source)), true

	default:
		return "", false
	}
}

// jsIsExported walks up to the program root looking for an enclosing
// export_statement/export_clause (spec.md §4.5).
func jsIsExported(node *sitter.Node) bool {
	current := node
	for current != nil {
		switch current.Type() {
		case "export_statement", "export_clause":
			return true
		case "program":
			return false
		}
		current = current.Parent()
	}
	return false
}
