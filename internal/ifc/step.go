// Package ifc indexes the DATA section of IFC-STEP (ISO 10303-21) files.
//
// Only the entity table is read: instance ids, entity types and their raw
// top-level attributes. Geometry is never evaluated; the index exists so the
// viewer engine can answer "which elements exist", "which are of type X",
// "what are the storeys" and "what are this element's attributes".
package ifc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrNotStep reports input without an ISO-10303-21 header.
	ErrNotStep = errors.New("ifc: not an ISO-10303-21 file")
	// ErrNoData reports a file without a DATA section.
	ErrNoData = errors.New("ifc: missing DATA section")
)

// Entity is one instance line, e.g. #246=IFCSPACE('2x...',#5,'Room',...).
type Entity struct {
	ID   int
	Type string
	Args []string
	// Parts lists the partial record types of a complex instance
	// (#n=(A(..)B(..))) in file order. Type is the first of them and Args
	// concatenates their attributes. Empty for simple instances.
	Parts []string
}

// Attr returns the raw attribute at index i, or "$" when absent.
func (e *Entity) Attr(i int) string {
	if e == nil || i < 0 || i >= len(e.Args) {
		return "$"
	}
	return e.Args[i]
}

// GlobalID returns the IfcRoot GlobalId attribute when present.
func (e *Entity) GlobalID() string {
	return Unquote(e.Attr(0))
}

// Name returns the IfcRoot Name attribute when present.
func (e *Entity) Name() string {
	return Unquote(e.Attr(2))
}

// Refs lists every instance reference found in the attributes, in order.
func (e *Entity) Refs() []int {
	if e == nil {
		return nil
	}
	var refs []int
	for _, arg := range e.Args {
		refs = appendRefs(refs, arg)
	}
	return refs
}

// File is the indexed entity table of one STEP file.
type File struct {
	Name     string
	Path     string
	Schema   string
	entities map[int]*Entity
	order    []int
	inverse  map[int][]int
}

// ParseFile opens and indexes the file at path.
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	file, err := Parse(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	file.Path = path
	return file, nil
}

// Parse reads a STEP stream and indexes its DATA section.
func Parse(r io.Reader, name string) (*File, error) {
	file := &File{
		Name:     name,
		entities: make(map[int]*Entity),
		inverse:  make(map[int][]int),
	}
	reader := bufio.NewReader(r)
	sawHeader := false
	inData := false
	sawData := false
	for {
		stmt, err := nextStatement(reader)
		if stmt == "" && err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		switch {
		case !sawHeader:
			if !strings.HasPrefix(strings.ToUpper(stmt), "ISO-10303-21") {
				return nil, ErrNotStep
			}
			sawHeader = true
		case strings.EqualFold(stmt, "DATA"):
			inData = true
			sawData = true
		case strings.EqualFold(stmt, "ENDSEC"):
			inData = false
		case inData:
			ent, perr := parseEntity(stmt)
			if perr != nil {
				return nil, perr
			}
			file.add(ent)
		default:
			if schema, ok := parseSchema(stmt); ok {
				file.Schema = schema
			}
		}
		if err != nil {
			break
		}
	}
	if !sawHeader {
		return nil, ErrNotStep
	}
	if !sawData {
		return nil, ErrNoData
	}
	return file, nil
}

func (f *File) add(ent *Entity) {
	if _, dup := f.entities[ent.ID]; !dup {
		f.order = append(f.order, ent.ID)
	}
	f.entities[ent.ID] = ent
	for _, ref := range ent.Refs() {
		f.inverse[ref] = append(f.inverse[ref], ent.ID)
	}
}

// Len returns the number of indexed entities.
func (f *File) Len() int {
	return len(f.order)
}

// Entity looks up an instance by id.
func (f *File) Entity(id int) (*Entity, bool) {
	ent, ok := f.entities[id]
	return ent, ok
}

// OfType returns ids of every entity whose type matches one of types,
// in ascending id order. Matching is case-insensitive.
func (f *File) OfType(types ...string) []int {
	want := make(map[string]struct{}, len(types))
	for _, t := range types {
		want[strings.ToUpper(t)] = struct{}{}
	}
	var ids []int
	for _, id := range f.order {
		if _, ok := want[f.entities[id].Type]; ok {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// Elements returns ids of all product entities that carry geometry in a
// viewer, in ascending id order.
func (f *File) Elements() []int {
	var ids []int
	for _, id := range f.order {
		if IsElementType(f.entities[id].Type) {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// InverseRefs lists entities referencing id, in file order.
func (f *File) InverseRefs(id int) []int {
	refs := f.inverse[id]
	if len(refs) == 0 {
		return nil
	}
	out := make([]int, len(refs))
	copy(out, refs)
	return out
}

// Storey describes one IFCBUILDINGSTOREY.
type Storey struct {
	ID        int
	Name      string
	Elevation float64
}

// Storeys returns building storeys ordered by elevation, then id.
func (f *File) Storeys() []Storey {
	ids := f.OfType(TypeBuildingStorey)
	storeys := make([]Storey, 0, len(ids))
	for _, id := range ids {
		ent := f.entities[id]
		elevation, _ := strconv.ParseFloat(strings.TrimSpace(ent.Attr(9)), 64)
		storeys = append(storeys, Storey{ID: id, Name: ent.Name(), Elevation: elevation})
	}
	sort.SliceStable(storeys, func(i, j int) bool {
		if storeys[i].Elevation != storeys[j].Elevation {
			return storeys[i].Elevation < storeys[j].Elevation
		}
		return storeys[i].ID < storeys[j].ID
	})
	return storeys
}

// nextStatement returns the next ';'-terminated statement with quotes and
// comments respected. The terminator is stripped and whitespace trimmed.
func nextStatement(r *bufio.Reader) (string, error) {
	var b strings.Builder
	inString := false
	for {
		ch, _, err := r.ReadRune()
		if err != nil {
			return strings.TrimSpace(b.String()), err
		}
		if inString {
			b.WriteRune(ch)
			if ch == '\'' {
				next, _, perr := r.ReadRune()
				if perr == nil && next == '\'' {
					b.WriteRune(next)
					continue
				}
				if perr == nil {
					_ = r.UnreadRune()
				}
				inString = false
			}
			continue
		}
		switch ch {
		case '\'':
			inString = true
			b.WriteRune(ch)
		case ';':
			return strings.TrimSpace(b.String()), nil
		case '/':
			next, _, perr := r.ReadRune()
			if perr == nil && next == '*' {
				if err := skipComment(r); err != nil {
					return strings.TrimSpace(b.String()), err
				}
				continue
			}
			if perr == nil {
				_ = r.UnreadRune()
			}
			b.WriteRune(ch)
		case '\r', '\n':
			// statements may wrap; line breaks carry no meaning
		default:
			b.WriteRune(ch)
		}
	}
}

func skipComment(r *bufio.Reader) error {
	prev := rune(0)
	for {
		ch, _, err := r.ReadRune()
		if err != nil {
			return err
		}
		if prev == '*' && ch == '/' {
			return nil
		}
		prev = ch
	}
}

func parseEntity(stmt string) (*Entity, error) {
	if !strings.HasPrefix(stmt, "#") {
		return nil, fmt.Errorf("ifc: malformed instance %q", truncateStmt(stmt))
	}
	eq := strings.IndexByte(stmt, '=')
	open := strings.IndexByte(stmt, '(')
	if eq < 0 || open < eq || !strings.HasSuffix(stmt, ")") {
		return nil, fmt.Errorf("ifc: malformed instance %q", truncateStmt(stmt))
	}
	id, err := strconv.Atoi(strings.TrimSpace(stmt[1:eq]))
	if err != nil {
		return nil, fmt.Errorf("ifc: bad instance id in %q: %w", truncateStmt(stmt), err)
	}
	typ := strings.ToUpper(strings.TrimSpace(stmt[eq+1 : open]))
	if typ == "" {
		return parseComplex(id, stmt, stmt[open+1:len(stmt)-1])
	}
	return &Entity{ID: id, Type: typ, Args: SplitArgs(stmt[open+1 : len(stmt)-1])}, nil
}

// parseComplex reads the partial records of a complex instance body such as
// "IFCA(1,2) IFCB('x')".
func parseComplex(id int, stmt, body string) (*Entity, error) {
	ent := &Entity{ID: id}
	i := 0
	for {
		for i < len(body) && (body[i] == ' ' || body[i] == '\t') {
			i++
		}
		if i == len(body) {
			break
		}
		open := strings.IndexByte(body[i:], '(')
		if open <= 0 {
			return nil, fmt.Errorf("ifc: malformed complex instance %q", truncateStmt(stmt))
		}
		name := strings.ToUpper(strings.TrimSpace(body[i : i+open]))
		start := i + open + 1
		end := closingParen(body, start)
		if end < 0 || name == "" {
			return nil, fmt.Errorf("ifc: malformed complex instance %q", truncateStmt(stmt))
		}
		ent.Parts = append(ent.Parts, name)
		ent.Args = append(ent.Args, SplitArgs(body[start:end])...)
		i = end + 1
	}
	if len(ent.Parts) == 0 {
		return nil, fmt.Errorf("ifc: empty complex instance %q", truncateStmt(stmt))
	}
	ent.Type = ent.Parts[0]
	return ent, nil
}

// closingParen returns the index of the ')' matching an already consumed
// '(' before start, skipping quoted strings. It returns -1 when unbalanced.
func closingParen(s string, start int) int {
	depth := 1
	inStr := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case inStr:
			if c == '\'' {
				if i+1 < len(s) && s[i+1] == '\'' {
					i++
					continue
				}
				inStr = false
			}
		case c == '\'':
			inStr = true
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func parseSchema(stmt string) (string, bool) {
	upper := strings.ToUpper(stmt)
	if !strings.HasPrefix(upper, "FILE_SCHEMA") {
		return "", false
	}
	start := strings.IndexByte(stmt, '\'')
	if start < 0 {
		return "", false
	}
	end := strings.IndexByte(stmt[start+1:], '\'')
	if end < 0 {
		return "", false
	}
	return stmt[start+1 : start+1+end], true
}

// SplitArgs splits a STEP attribute list on top-level commas.
func SplitArgs(s string) []string {
	var (
		args    []string
		depth   int
		inStr   bool
		start   int
		trimmed = strings.TrimSpace(s)
	)
	if trimmed == "" {
		return nil
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr {
			if c == '\'' {
				if i+1 < len(s) && s[i+1] == '\'' {
					i++
					continue
				}
				inStr = false
			}
			continue
		}
		switch c {
		case '\'':
			inStr = true
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(args, strings.TrimSpace(s[start:]))
}

// Unquote returns the content of a STEP string literal, or "" for $ and
// non-string values.
func Unquote(v string) string {
	v = strings.TrimSpace(v)
	if len(v) < 2 || v[0] != '\'' || v[len(v)-1] != '\'' {
		return ""
	}
	return strings.ReplaceAll(v[1:len(v)-1], "''", "'")
}

func appendRefs(refs []int, arg string) []int {
	inStr := false
	for i := 0; i < len(arg); i++ {
		c := arg[i]
		if c == '\'' {
			inStr = !inStr
			continue
		}
		if inStr || c != '#' {
			continue
		}
		j := i + 1
		for j < len(arg) && arg[j] >= '0' && arg[j] <= '9' {
			j++
		}
		if j > i+1 {
			if n, err := strconv.Atoi(arg[i+1 : j]); err == nil {
				refs = append(refs, n)
			}
		}
		i = j - 1
	}
	return refs
}

func truncateStmt(s string) string {
	if len(s) > 60 {
		return s[:60] + "…"
	}
	return s
}
