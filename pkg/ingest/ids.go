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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// symbolID derives a Symbol.id per spec.md §4.5: SHA-256-hex of a composed
// seed string. Deterministic and stable across runs over identical input.
func symbolID(file string, kind SymbolKind, fqName string, span Span, language Language) string {
	seed := fmt.Sprintf("symbol:%s:%s:%s:%d:%d:%d:%d:%s",
		file, kind, fqName, span.StartLine, span.StartCol, span.EndLine, span.EndCol, language)
	return hashHex(seed)
}

// callEdgeID derives a CallEdge.id per spec.md §4.5.
func callEdgeID(callerID, calleeName, file string, span Span, language Language) string {
	seed := fmt.Sprintf("call:%s:%s:%s:%d:%d:%d:%d:%s",
		callerID, calleeName, file, span.StartLine, span.StartCol, span.EndLine, span.EndCol, language)
	return hashHex(seed)
}

func hashHex(seed string) string {
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])
}
