// Copyright 2026 The Kestrel Authors.
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

package frontend

import "fmt"

// kind identifies a lexical token category. Kestrel's surface grammar is
// small enough that a single flat enum (rather than a generated
// terminal table) is legible grounded on the teacher's own small
// handwritten lexers.
type kind int

const (
	tokEOF kind = iota
	tokNewline
	tokIdent
	tokNumber
	tokString
	tokRawString

	// punctuation
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokLBrace
	tokRBrace
	tokComma
	tokColon
	tokDot
	tokSlashSlash // "//" inside scheme://source
	tokEq
	tokNe
	tokLt
	tokLe
	tokGt
	tokGe

	// keywords
	tokNEW
	tokWHERE
	tokDISP
	tokATTR
	tokEXPLAIN
	tokAPPLY
	tokON
	tokWITH
	tokFIND
	tokREVERSED
	tokFROM
	tokLIMIT
	tokOFFSET
	tokSORT
	tokBY
	tokASC
	tokDESC
	tokLAST
	tokSTART
	tokSTOP
	tokDAY
	tokHOUR
	tokMINUTE
	tokSECOND
	tokAND
	tokOR
	tokNOT
	tokIN
	tokLIKE
	tokMATCHES
	tokTRUE
	tokFALSE
	tokNULL
)

var keywords = map[string]kind{
	"NEW":      tokNEW,
	"WHERE":    tokWHERE,
	"DISP":     tokDISP,
	"ATTR":     tokATTR,
	"EXPLAIN":  tokEXPLAIN,
	"APPLY":    tokAPPLY,
	"ON":       tokON,
	"WITH":     tokWITH,
	"FIND":     tokFIND,
	"REVERSED": tokREVERSED,
	"FROM":     tokFROM,
	"LIMIT":    tokLIMIT,
	"OFFSET":   tokOFFSET,
	"SORT":     tokSORT,
	"BY":       tokBY,
	"ASC":      tokASC,
	"DESC":     tokDESC,
	"LAST":     tokLAST,
	"START":    tokSTART,
	"STOP":     tokSTOP,
	"DAY":      tokDAY,
	"DAYS":     tokDAY,
	"HOUR":     tokHOUR,
	"HOURS":    tokHOUR,
	"MINUTE":   tokMINUTE,
	"MINUTES":  tokMINUTE,
	"SECOND":   tokSECOND,
	"SECONDS":  tokSECOND,
	"AND":      tokAND,
	"OR":       tokOR,
	"NOT":      tokNOT,
	"IN":       tokIN,
	"LIKE":     tokLIKE,
	"MATCHES":  tokMATCHES,
	"TRUE":     tokTRUE,
	"FALSE":    tokFALSE,
	"NULL":     tokNULL,
}

type token struct {
	kind kind
	text string
	line int
}

func (t token) String() string {
	return fmt.Sprintf("%q@%d", t.text, t.line)
}
