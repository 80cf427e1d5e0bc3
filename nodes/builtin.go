package nodes

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // location parameter

	"github.com/zoobzio/chainz"
)

// DefaultLayout is the format_time output layout when none is given.
const DefaultLayout = "2006-01-02 15:04:05"

func builtins() []Entry {
	return []Entry{
		{Ref: "require", Doc: requireDoc, Factory: newRequire},
		{Ref: "to_int", Doc: toIntDoc, Factory: newToInt},
		{Ref: "to_float", Doc: toFloatDoc, Factory: newToFloat},
		{Ref: "format_time", Doc: formatTimeDoc, Factory: newFormatTime},
		{Ref: "rename", Doc: renameDoc, Factory: newRename},
		{Ref: "default", Doc: setDefaultDoc, Factory: newSetDefault},
		{Ref: "drop_fields", Doc: dropFieldsDoc, Factory: newDropFields},
		{Ref: "lowercase", Doc: lowercaseDoc, Factory: newLowercase},
	}
}

func mapBase(id string) chainz.Base {
	return chainz.Base{Name: id, In: chainz.Map, Out: chainz.Map}
}

func asMap(r chainz.Record) (map[string]any, error) {
	m, ok := r.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected map record, got %T", r)
	}
	return m, nil
}

func field(m map[string]any, name string) (any, error) {
	v, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("field %q is missing", name)
	}
	return v, nil
}

// Require drops records in which any of Fields is missing or empty. Nil,
// false, numeric zero, the empty string and empty lists or maps count as
// empty.
type Require struct {
	chainz.Base
	Fields []string
}

var requireDoc = chainz.Doc{
	Func:   "drop records that miss a required field",
	Input:  `{"id": "", "content": "aaa"} | {"content": "aaa"}`,
	Output: "dropped | dropped",
}

func newRequire(id string, params Params) (chainz.Node, error) {
	fields, err := params.Fields()
	if err != nil {
		return nil, err
	}
	return &Require{Base: mapBase(id), Fields: fields}, nil
}

// Process implements chainz.Node.
func (n *Require) Process(_ context.Context, r chainz.Record) (chainz.Record, error) {
	m, err := asMap(r)
	if err != nil {
		return nil, err
	}
	for _, f := range n.Fields {
		if empty(m[f]) {
			return chainz.Drop()
		}
	}
	return m, nil
}

func empty(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case bool:
		return !v
	case string:
		return v == ""
	case int:
		return v == 0
	case int64:
		return v == 0
	case int32:
		return v == 0
	case uint64:
		return v == 0
	case float64:
		return v == 0
	case float32:
		return v == 0
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

// Doc implements chainz.Documented.
func (n *Require) Doc() chainz.Doc {
	d := requireDoc
	d.Desc = "requires " + strings.Join(n.Fields, ", ")
	return d
}

// ToInt converts Field to an int. Strings are parsed in base 10; floats must
// be integral.
type ToInt struct {
	chainz.Base
	Field string
}

var toIntDoc = chainz.Doc{
	Func:   "convert a field to an integer",
	Input:  `{"count": "137", ...}`,
	Output: `{"count": 137, ...}`,
}

func newToInt(id string, params Params) (chainz.Node, error) {
	f, err := params.String("field")
	if err != nil {
		return nil, err
	}
	return &ToInt{Base: mapBase(id), Field: f}, nil
}

// Process implements chainz.Node.
func (n *ToInt) Process(_ context.Context, r chainz.Record) (chainz.Record, error) {
	m, err := asMap(r)
	if err != nil {
		return nil, err
	}
	v, err := field(m, n.Field)
	if err != nil {
		return nil, err
	}
	i, err := toInt(v)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", n.Field, err)
	}
	m[n.Field] = i
	return m, nil
}

// Doc implements chainz.Documented.
func (n *ToInt) Doc() chainz.Doc {
	d := toIntDoc
	d.Desc = "converts " + n.Field + " to int"
	return d
}

func toInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case int32:
		return int(x), nil
	case uint64:
		return int(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("%v is not an integer", x)
		}
		return int(x), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(x))
	default:
		return 0, fmt.Errorf("cannot convert %T to int", v)
	}
}

// ToFloat converts Field to a float64.
type ToFloat struct {
	chainz.Base
	Field string
}

var toFloatDoc = chainz.Doc{
	Func:   "convert a field to a float",
	Input:  `{"price": "9.5", ...}`,
	Output: `{"price": 9.5, ...}`,
}

func newToFloat(id string, params Params) (chainz.Node, error) {
	f, err := params.String("field")
	if err != nil {
		return nil, err
	}
	return &ToFloat{Base: mapBase(id), Field: f}, nil
}

// Process implements chainz.Node.
func (n *ToFloat) Process(_ context.Context, r chainz.Record) (chainz.Record, error) {
	m, err := asMap(r)
	if err != nil {
		return nil, err
	}
	v, err := field(m, n.Field)
	if err != nil {
		return nil, err
	}
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", n.Field, err)
		}
	default:
		return nil, fmt.Errorf("field %q: cannot convert %T to float", n.Field, v)
	}
	m[n.Field] = f
	return m, nil
}

// Doc implements chainz.Documented.
func (n *ToFloat) Doc() chainz.Doc {
	d := toFloatDoc
	d.Desc = "converts " + n.Field + " to float"
	return d
}

// FormatTime replaces a unix timestamp in seconds with its text form.
type FormatTime struct {
	chainz.Base
	Location *time.Location
	Field    string
	Layout   string
}

var formatTimeDoc = chainz.Doc{
	Func:   "format a unix timestamp",
	Input:  `{"time": 1677661655, ...}`,
	Output: `{"time": "2023-03-01 09:07:35", ...}`,
}

func newFormatTime(id string, params Params) (chainz.Node, error) {
	f, err := params.String("field")
	if err != nil {
		return nil, err
	}
	layout, err := params.StringOr("layout", DefaultLayout)
	if err != nil {
		return nil, err
	}
	zone, err := params.StringOr("location", "UTC")
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("parameter \"location\": %w", err)
	}
	return &FormatTime{Base: mapBase(id), Field: f, Layout: layout, Location: loc}, nil
}

// Process implements chainz.Node.
func (n *FormatTime) Process(_ context.Context, r chainz.Record) (chainz.Record, error) {
	m, err := asMap(r)
	if err != nil {
		return nil, err
	}
	v, err := field(m, n.Field)
	if err != nil {
		return nil, err
	}
	secs, err := toInt(v)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", n.Field, err)
	}
	m[n.Field] = time.Unix(int64(secs), 0).In(n.Location).Format(n.Layout)
	return m, nil
}

// Doc implements chainz.Documented.
func (n *FormatTime) Doc() chainz.Doc {
	d := formatTimeDoc
	d.Desc = fmt.Sprintf("formats %s as %q in %s", n.Field, n.Layout, n.Location)
	return d
}

// Rename moves From to To. Records without From pass unchanged.
type Rename struct {
	chainz.Base
	From string
	To   string
}

var renameDoc = chainz.Doc{
	Func:   "rename a field",
	Input:  `{"ts": 1, ...}`,
	Output: `{"time": 1, ...}`,
}

func newRename(id string, params Params) (chainz.Node, error) {
	from, err := params.String("from")
	if err != nil {
		return nil, err
	}
	to, err := params.String("to")
	if err != nil {
		return nil, err
	}
	return &Rename{Base: mapBase(id), From: from, To: to}, nil
}

// Process implements chainz.Node.
func (n *Rename) Process(_ context.Context, r chainz.Record) (chainz.Record, error) {
	m, err := asMap(r)
	if err != nil {
		return nil, err
	}
	if v, ok := m[n.From]; ok {
		delete(m, n.From)
		m[n.To] = v
	}
	return m, nil
}

// Doc implements chainz.Documented.
func (n *Rename) Doc() chainz.Doc {
	d := renameDoc
	d.Desc = "renames " + n.From + " to " + n.To
	return d
}

// SetDefault sets Field to Value when it is missing or nil.
type SetDefault struct {
	Value any
	chainz.Base
	Field string
}

var setDefaultDoc = chainz.Doc{
	Func:   "fill in a missing field",
	Input:  `{"content": "aaa"}`,
	Output: `{"content": "aaa", "lang": "en"}`,
}

func newSetDefault(id string, params Params) (chainz.Node, error) {
	f, err := params.String("field")
	if err != nil {
		return nil, err
	}
	v, ok := params["value"]
	if !ok {
		return nil, fmt.Errorf("missing parameter %q", "value")
	}
	return &SetDefault{Base: mapBase(id), Field: f, Value: v}, nil
}

// Process implements chainz.Node.
func (n *SetDefault) Process(_ context.Context, r chainz.Record) (chainz.Record, error) {
	m, err := asMap(r)
	if err != nil {
		return nil, err
	}
	if m[n.Field] == nil {
		m[n.Field] = chainz.Snapshot(n.Value)
	}
	return m, nil
}

// Doc implements chainz.Documented.
func (n *SetDefault) Doc() chainz.Doc {
	d := setDefaultDoc
	d.Desc = fmt.Sprintf("defaults %s to %v", n.Field, n.Value)
	return d
}

// DropFields removes Fields from the record.
type DropFields struct {
	chainz.Base
	Fields []string
}

var dropFieldsDoc = chainz.Doc{
	Func:   "remove fields",
	Input:  `{"id": 1, "debug": true}`,
	Output: `{"id": 1}`,
}

func newDropFields(id string, params Params) (chainz.Node, error) {
	fields, err := params.Fields()
	if err != nil {
		return nil, err
	}
	return &DropFields{Base: mapBase(id), Fields: fields}, nil
}

// Process implements chainz.Node.
func (n *DropFields) Process(_ context.Context, r chainz.Record) (chainz.Record, error) {
	m, err := asMap(r)
	if err != nil {
		return nil, err
	}
	for _, f := range n.Fields {
		delete(m, f)
	}
	return m, nil
}

// Doc implements chainz.Documented.
func (n *DropFields) Doc() chainz.Doc {
	d := dropFieldsDoc
	d.Desc = "removes " + strings.Join(n.Fields, ", ")
	return d
}

// Lowercase lowercases the string value of Field. Missing fields pass.
type Lowercase struct {
	chainz.Base
	Field string
}

var lowercaseDoc = chainz.Doc{
	Func:   "lowercase a string field",
	Input:  `{"email": "A@B.IO"}`,
	Output: `{"email": "a@b.io"}`,
}

func newLowercase(id string, params Params) (chainz.Node, error) {
	f, err := params.String("field")
	if err != nil {
		return nil, err
	}
	return &Lowercase{Base: mapBase(id), Field: f}, nil
}

// Process implements chainz.Node.
func (n *Lowercase) Process(_ context.Context, r chainz.Record) (chainz.Record, error) {
	m, err := asMap(r)
	if err != nil {
		return nil, err
	}
	v, ok := m[n.Field]
	if !ok || v == nil {
		return m, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("field %q: expected string, got %T", n.Field, v)
	}
	m[n.Field] = strings.ToLower(s)
	return m, nil
}

// Doc implements chainz.Documented.
func (n *Lowercase) Doc() chainz.Doc {
	d := lowercaseDoc
	d.Desc = "lowercases " + n.Field
	return d
}
