// Package path implements a parser for field paths into record trees.
package path

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/creachadair/jrecord/doc"
)

/*
Grammar:

  path = name steps
 steps = step [steps]
  step = "." name
  step = "[" INDEX "]"
  name = WORD
  name = "`" QTEXT "`"

  WORD = RE `[^.\[\]`]+`
 QTEXT = RE `([^`]|``)*`
 INDEX = RE `-?\d+`

A doubled backquote inside a quoted name denotes a single backquote.
*/

// A Path is a parsed field path.
type Path []Step

// An Op is a path operator.
type Op byte

const (
	Invalid Op = iota // invalid operator
	Member            // map member lookup (.)
	Index             // array index lookup
)

func (o Op) String() string {
	switch o {
	case Member:
		return "."
	case Index:
		return "index"
	}
	return "invalid"
}

// A Step is a single step of a path.
type Step struct {
	Op    Op
	Key   string // for Member
	Index int    // for Index
}

// Parse parses s as a field path.
func Parse(s string) (Path, error) {
	if s == "" {
		return nil, errors.New("empty path")
	}
	name, rest, err := parseName(s)
	if err != nil {
		return nil, fmt.Errorf("offset 0: %w", err)
	}
	p := Path{{Op: Member, Key: name}}
	for rest != "" {
		off := len(s) - len(rest)
		step, u, err := parseStep(rest)
		if err != nil {
			return nil, fmt.Errorf("offset %d: %w", off, err)
		}
		p = append(p, step)
		rest = u
	}
	return p, nil
}

// MustParse parses s as a field path, and panics if it is invalid.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("path.MustParse %q: %v", s, err))
	}
	return p
}

func parseStep(s string) (_ Step, rest string, _ error) {
	if t, ok := strings.CutPrefix(s, "."); ok {
		name, u, err := parseName(t)
		if err != nil {
			return Step{}, s, fmt.Errorf("invalid .name: %w", err)
		}
		return Step{Op: Member, Key: name}, u, nil
	}
	if t, ok := strings.CutPrefix(s, "["); ok {
		m := indexRE.FindStringSubmatch(t)
		if m == nil {
			return Step{}, s, errors.New("invalid index")
		}
		v, err := strconv.Atoi(m[1])
		if err != nil {
			return Step{}, s, fmt.Errorf("invalid index: %w", err)
		}
		return Step{Op: Index, Index: v}, t[len(m[0]):], nil
	}
	return Step{}, s, errors.New("invalid path step")
}

func parseName(s string) (name, rest string, _ error) {
	if m := quoteRE.FindStringSubmatch(s); m != nil {
		if m[1] == "" {
			return "", s, errors.New("empty name")
		}
		return strings.ReplaceAll(m[1], "``", "`"), s[len(m[0]):], nil
	}
	if m := wordRE.FindStringSubmatch(s); m != nil {
		return m[1], s[len(m[0]):], nil
	}
	return "", s, errors.New("invalid name")
}

var (
	wordRE  = regexp.MustCompile("^([^.\\[\\]`]+)")
	quoteRE = regexp.MustCompile("^`((?:[^`]|``)*)`")
	indexRE = regexp.MustCompile(`^(-?\d+)\]`)
)

func (p Path) String() string {
	var buf strings.Builder
	for i, s := range p {
		switch s.Op {
		case Member:
			if i > 0 {
				buf.WriteByte('.')
			}
			if wordRE.FindString(s.Key) == s.Key {
				buf.WriteString(s.Key)
			} else {
				fmt.Fprintf(&buf, "`%s`", strings.ReplaceAll(s.Key, "`", "``"))
			}
		case Index:
			fmt.Fprintf(&buf, "[%d]", s.Index)
		}
	}
	return buf.String()
}

// Elems returns the steps of p as a sequence of string keys and int
// offsets, in the form accepted by doc.Get.
func (p Path) Elems() []any {
	out := make([]any, len(p))
	for i, s := range p {
		if s.Op == Index {
			out[i] = s.Index
		} else {
			out[i] = s.Key
		}
	}
	return out
}

// Get returns the value reached by following p from v. See doc.Get.
func (p Path) Get(v doc.Value) (doc.Value, bool, error) { return doc.Get(v, p.Elems()...) }
