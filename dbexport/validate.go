package dbexport

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"

	"sqlexport/exporterr"
)

// ValidateQuery checks that query parses as exactly one statement. It is a
// generic SQL grammar, so vendor-specific syntax may need SkipValidation.
func ValidateQuery(query string) (ast.StmtNode, error) {
	if query == "" {
		return nil, exporterr.QuerySyntax("validate query", errors.New("empty query"))
	}
	p := parser.New()
	stmts, _, err := p.Parse(query, "", "")
	if err != nil {
		return nil, exporterr.QuerySyntax("validate query", err)
	}
	switch len(stmts) {
	case 0:
		return nil, exporterr.QuerySyntax("validate query", errors.New("no statement found"))
	case 1:
		return stmts[0], nil
	default:
		return nil, exporterr.QuerySyntax("validate query", fmt.Errorf("expected one statement, found %d", len(stmts)))
	}
}

// IsSelect reports whether stmt returns rows that can be counted.
func IsSelect(stmt ast.StmtNode) bool {
	switch stmt.(type) {
	case *ast.SelectStmt, *ast.SetOprStmt:
		return true
	}
	return false
}

// CheckQuery validates query for dialect d. Dialects with StrictGrammar must
// pass ValidateQuery. For the others a grammar failure comes back as warning
// and only an empty query or more than one statement is rejected; stmt is
// nil in that case.
func CheckQuery(d Dialect, query string) (stmt ast.StmtNode, warning, err error) {
	stmt, err = ValidateQuery(query)
	if err == nil || d.StrictGrammar {
		return stmt, nil, err
	}
	switch n := countStatements(query); n {
	case 0:
		return nil, nil, exporterr.QuerySyntax("validate query", errors.New("empty query"))
	case 1:
		return nil, err, nil
	default:
		return nil, nil, exporterr.QuerySyntax("validate query", fmt.Errorf("expected one statement, found %d", n))
	}
}

// countStatements counts the non-empty statements separated by semicolons
// outside quotes and comments. Oracle q'[...]' literals are recognized.
func countStatements(query string) int {
	count, pending := 0, false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '-' && i+1 < len(query) && query[i+1] == '-':
			for i < len(query) && query[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(query) && query[i+1] == '*':
			end := strings.Index(query[i+2:], "*/")
			if end < 0 {
				return count + b2i(pending)
			}
			i += end + 3
		case (c == 'q' || c == 'Q') && i+2 < len(query) && query[i+1] == '\'' && (i == 0 || !isIdentByte(query[i-1])):
			closer := quoteCloser(query[i+2])
			end := strings.Index(query[i+3:], string(closer)+"'")
			pending = true
			if end < 0 {
				return count + 1
			}
			i += end + 4
		case c == '\'' || c == '"' || c == '`':
			pending = true
			for i++; i < len(query); i++ {
				if query[i] == c {
					if i+1 < len(query) && query[i+1] == c {
						i++
						continue
					}
					break
				}
			}
		case c == ';':
			count += b2i(pending)
			pending = false
		case c != ' ' && c != '\t' && c != '\n' && c != '\r':
			pending = true
		}
	}
	return count + b2i(pending)
}

func quoteCloser(open byte) byte {
	switch open {
	case '[':
		return ']'
	case '{':
		return '}'
	case '(':
		return ')'
	case '<':
		return '>'
	}
	return open
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isIdentByte(c byte) bool {
	switch {
	case c == '_', c == '$', c == '#':
		return true
	case '0' <= c && c <= '9', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		return true
	}
	return false
}
