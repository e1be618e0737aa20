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
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

var rustImplTargetKinds = map[string]struct{}{
	"type_identifier":        {},
	"scoped_type_identifier": {},
	"generic_type":           {},
}

func rustContainerInfo(node *sitter.Node, state *extractState) (containerInfoResult, bool) {
	switch node.Type() {
	case "mod_item":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return containerInfoResult{}, false
		}
		name := nodeText(nameNode, state.source)
		symbol := newSymbol(state, name, KindModule, node, rustIsExported(node, state.source))
		return containerInfoResult{name: name, kind: containerModule, symbol: &symbol}, true

	case "trait_item":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return containerInfoResult{}, false
		}
		name := nodeText(nameNode, state.source)
		symbol := newSymbol(state, name, KindTrait, node, rustIsExported(node, state.source))
		return containerInfoResult{name: name, kind: containerType, symbol: &symbol}, true

	case "impl_item":
		target := node.ChildByFieldName("type")
		if target == nil {
			target = node.ChildByFieldName("trait")
		}
		if target == nil {
			target = findDescendant(node, rustImplTargetKinds)
		}
		name := "impl"
		if target != nil {
			name = nodeText(target, state.source)
		}
		return containerInfoResult{name: name, kind: containerImpl, symbol: nil}, true

	default:
		return containerInfoResult{}, false
	}
}

func rustFunctionSymbol(node *sitter.Node, state *extractState) (Symbol, bool) {
	switch node.Type() {
	case "function_item":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return Symbol{}, false
		}
		name := nodeText(nameNode, state.source)
		kind := KindFunction
		if inMethodContext(state.containers) {
			kind = KindMethod
		}
		return newSymbol(state, name, kind, node, rustIsExported(node, state.source)), true

	case "function_signature_item":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return Symbol{}, false
		}
		name := nodeText(nameNode, state.source)
		return newSymbol(state, name, KindMethod, node, rustIsExported(node, state.source)), true

	case "struct_item":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return Symbol{}, false
		}
		name := nodeText(nameNode, state.source)
		return newSymbol(state, name, KindStruct, node, rustIsExported(node, state.source)), true

	case "enum_item":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return Symbol{}, false
		}
		name := nodeText(nameNode, state.source)
		return newSymbol(state, name, KindEnum, node, rustIsExported(node, state.source)), true

	default:
		return Symbol{}, false
	}
}

func rustCallName(node *sitter.Node, source []byte) (string, bool) {
	switch node.Type() {
	case "call_expression":
		fn := node.ChildByFieldName("function")
		if fn == nil {
			return "", false
		}
		return normalizeCallName(nodeText(fn, source)), true

	case "method_call_expression":
		name := node.ChildByFieldName("name")
		if name == nil {
			return "", false
		}
		return strings.TrimSpace(nodeText(name, source)), true

	default:
		return "", false
	}
}

// rustIsExported reports whether node carries a pub visibility_modifier
// among its direct children (spec.md §4.5: Rust exported symbols are
// those with any `pub` visibility).
func rustIsExported(node *sitter.Node, source []byte) bool {
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		child := node.Child(i)
		if child.Type() == "visibility_modifier" {
			text := strings.TrimSpace(nodeText(child, source))
			if strings.HasPrefix(text, "pub") {
				return true
			}
		}
	}
	return false
}
