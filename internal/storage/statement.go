package storage

import (
	"errors"
	"strconv"
	"strings"
)

// Statement shape errors, reported before anything is executed.
var (
	errEmptyStatement     = errors.New("sql: empty statement")
	errMultipleStatements = errors.New("sql: multiple statements provided")
)

// statementInfo describes SQL text the way SQLite tokenizes it.
type statementInfo struct {
	// statements counts non-empty statements
	statements int
	// params is the largest parameter index, as sqlite3_bind_parameter_count
	// reports it for a single statement
	params int
}

// checkStatement rejects SQL that is empty, holds more than one statement or
// takes a different number of parameters than args.
func checkStatement(sql string, args int) error {
	info := inspectSQL(sql)
	switch {
	case info.statements == 0:
		return errEmptyStatement
	case info.statements > 1:
		return errMultipleStatements
	}
	return checkArgCount(info.params, args)
}

// inspectSQL scans sql without a database. String literals, quoted
// identifiers and comments are skipped. Parameters are numbered like SQLite
// numbers them: "?" takes the next index, "?NNN" the given one, and a named
// parameter (":a", "@a", "$a") takes the next index on first use only.
// Semicolons inside a CREATE TRIGGER body do not end the statement.
func inspectSQL(sql string) statementInfo {
	var (
		info  statementInfo
		names = make(map[string]int)
		stmt  statementScan
	)

	endStatement := func() {
		if stmt.tokens > 0 {
			info.statements++
		}
		stmt = statementScan{}
	}

	for i := 0; i < len(sql); {
		c := sql[i]
		switch {
		case isSpace(c):
			i++

		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			if nl := strings.IndexByte(sql[i:], '\n'); nl >= 0 {
				i += nl + 1
			} else {
				i = len(sql)
			}

		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			if end := strings.Index(sql[i+2:], "*/"); end >= 0 {
				i += end + 4
			} else {
				i = len(sql)
			}

		case c == '\'' || c == '"' || c == '`':
			i = skipQuoted(sql, i, c)
			stmt.token("")

		case c == '[':
			if end := strings.IndexByte(sql[i:], ']'); end >= 0 {
				i += end + 1
			} else {
				i = len(sql)
			}
			stmt.token("")

		case c == ';':
			i++
			if stmt.inTrigger && !stmt.afterEnd {
				stmt.token("")
				continue
			}
			endStatement()

		case c == '?':
			j := i + 1
			for j < len(sql) && sql[j] >= '0' && sql[j] <= '9' {
				j++
			}
			if j > i+1 {
				if n, err := strconv.Atoi(sql[i+1 : j]); err == nil && n > info.params {
					info.params = n
				}
			} else {
				info.params++
			}
			i = j
			stmt.token("")

		case (c == ':' || c == '@' || c == '$') && i+1 < len(sql) && isIdentChar(sql[i+1]):
			j := i + 1
			for j < len(sql) {
				if isIdentChar(sql[j]) {
					j++
					continue
				}
				if c == '$' && strings.HasPrefix(sql[j:], "::") {
					j += 2
					continue
				}
				break
			}
			name := sql[i:j]
			if _, seen := names[name]; !seen {
				info.params++
				names[name] = info.params
			}
			i = j
			stmt.token("")

		case isIdentStart(c):
			j := i + 1
			for j < len(sql) && isIdentChar(sql[j]) {
				j++
			}
			stmt.token(strings.ToUpper(sql[i:j]))
			i = j

		default:
			i++
			stmt.token("")
		}
	}
	endStatement()

	return info
}

// statementScan tracks the statement currently being scanned.
type statementScan struct {
	tokens    int
	leading   []string // first keywords, for CREATE [TEMP] TRIGGER
	inTrigger bool
	afterEnd  bool // previous token was END
}

// token records the next token; word is the upper-cased keyword or
// identifier, empty for anything else.
func (s *statementScan) token(word string) {
	if s.tokens == 0 && word == "EXPLAIN" {
		return
	}
	s.tokens++
	s.afterEnd = word == "END"

	if len(s.leading) < 3 {
		s.leading = append(s.leading, word)
		if len(s.leading) >= 2 && s.leading[0] == "CREATE" {
			switch {
			case s.leading[1] == "TRIGGER":
				s.inTrigger = true
			case len(s.leading) == 3 && (s.leading[1] == "TEMP" || s.leading[1] == "TEMPORARY") && s.leading[2] == "TRIGGER":
				s.inTrigger = true
			}
		}
	}
}

// skipQuoted returns the index just past the quoted token starting at i.
// A doubled quote character is an escaped quote.
func skipQuoted(sql string, i int, quote byte) int {
	for j := i + 1; j < len(sql); j++ {
		if sql[j] != quote {
			continue
		}
		if j+1 < len(sql) && sql[j+1] == quote {
			j++
			continue
		}
		return j + 1
	}
	return len(sql)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || c == '$' || (c >= '0' && c <= '9')
}
