package savegame

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
)

// A field is described by its sl struct tag: one or more file types with the
// major version range they apply to, for example
//
//	Town uint32 `sl:"u16@0-6;u32@6-"`
//
// stores Town as uint16 before version 6 and uint32 from then on. The range
// start is inclusive and the end exclusive; a missing end is open. Fields
// without a range for the file's version are not stored at all. Slices are
// prefixed by their length, arrays are stored element by element and
// "struct" recurses into nested structs.
type fieldRule struct {
	typ  string
	from uint16
	to   uint16
}

var fileTypeSize = map[string]int{
	"i8": 1, "u8": 1, "bool": 1,
	"i16": 2, "u16": 2,
	"i32": 4, "u32": 4,
	"i64": 8, "u64": 8,
}

func parseRules(tag string) ([]fieldRule, error) {
	var rules []fieldRule
	for _, alt := range strings.Split(tag, ";") {
		typ, rng, ranged := strings.Cut(alt, "@")
		r := fieldRule{typ: typ}
		if ranged {
			from, to, _ := strings.Cut(rng, "-")
			f, err := strconv.ParseUint(from, 10, 16)
			if err != nil {
				return nil, fmt.Errorf("sl tag %q: %w", tag, err)
			}
			r.from = uint16(f)
			if to != "" {
				t, err := strconv.ParseUint(to, 10, 16)
				if err != nil {
					return nil, fmt.Errorf("sl tag %q: %w", tag, err)
				}
				r.to = uint16(t)
			}
		}
		if _, ok := fileTypeSize[r.typ]; !ok && r.typ != "str" && r.typ != "struct" {
			return nil, fmt.Errorf("sl tag %q: unknown type %q", tag, r.typ)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func ruleFor(rules []fieldRule, ver uint16) (fieldRule, bool) {
	for _, r := range rules {
		if ver >= r.from && (r.to == 0 || ver < r.to) {
			return r, true
		}
	}
	return fieldRule{}, false
}

type encoder struct {
	buf []byte
	ver uint16
}

func marshal(v any, ver uint16) ([]byte, error) {
	e := &encoder{ver: ver}
	if err := e.structValue(reflect.ValueOf(v).Elem()); err != nil {
		return nil, err
	}
	return e.buf, nil
}

func (e *encoder) structValue(v reflect.Value) error {
	t := v.Type()
	for i := range v.NumField() {
		tag, ok := t.Field(i).Tag.Lookup("sl")
		if !ok || tag == "-" {
			continue
		}
		rules, err := parseRules(tag)
		if err != nil {
			return err
		}
		r, ok := ruleFor(rules, e.ver)
		if !ok {
			continue
		}
		if err := e.value(v.Field(i), r.typ); err != nil {
			return fmt.Errorf("%s.%s: %w", t.Name(), t.Field(i).Name, err)
		}
	}
	return nil
}

func (e *encoder) value(v reflect.Value, typ string) error {
	switch v.Kind() {
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 && typ == "u8" {
			e.buf = appendGamma(e.buf, uint32(v.Len()))
			e.buf = append(e.buf, v.Bytes()...)
			return nil
		}
		e.buf = appendGamma(e.buf, uint32(v.Len()))
		fallthrough
	case reflect.Array:
		for i := range v.Len() {
			if err := e.value(v.Index(i), typ); err != nil {
				return err
			}
		}
		return nil
	case reflect.Struct:
		return e.structValue(v)
	case reflect.String:
		if typ != "str" {
			return fmt.Errorf("string stored as %s", typ)
		}
		e.buf = appendGamma(e.buf, uint32(v.Len()))
		e.buf = append(e.buf, v.String()...)
		return nil
	}

	var u uint64
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			u = 1
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		u = uint64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u = v.Uint()
	default:
		return fmt.Errorf("unexpected field kind %v", v.Kind())
	}
	size, ok := fileTypeSize[typ]
	if !ok {
		return fmt.Errorf("%v stored as %s", v.Kind(), typ)
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], u)
	e.buf = append(e.buf, b[8-size:]...)
	return nil
}

type decoder struct {
	r   *bytes.Reader
	ver uint16
}

// unmarshal reads v from data, which must be consumed exactly.
func unmarshal(data []byte, v any, ver uint16) error {
	d := &decoder{r: bytes.NewReader(data), ver: ver}
	if err := d.structValue(reflect.ValueOf(v).Elem()); err != nil {
		return err
	}
	if d.r.Len() != 0 {
		return corrupt("%T: %d trailing bytes", v, d.r.Len())
	}
	return nil
}

func (d *decoder) structValue(v reflect.Value) error {
	t := v.Type()
	for i := range v.NumField() {
		tag, ok := t.Field(i).Tag.Lookup("sl")
		if !ok || tag == "-" {
			continue
		}
		rules, err := parseRules(tag)
		if err != nil {
			return err
		}
		r, ok := ruleFor(rules, d.ver)
		if !ok {
			continue
		}
		if err := d.value(v.Field(i), r.typ); err != nil {
			return fmt.Errorf("%s.%s: %w", t.Name(), t.Field(i).Name, err)
		}
	}
	return nil
}

func (d *decoder) count() (int, error) {
	n, err := readGamma(d.r)
	if err != nil {
		return 0, corrupt("length: %v", err)
	}
	if int64(n) > int64(d.r.Len()) {
		return 0, corrupt("length %d exceeds remaining %d bytes", n, d.r.Len())
	}
	return int(n), nil
}

func (d *decoder) value(v reflect.Value, typ string) error {
	switch v.Kind() {
	case reflect.Slice:
		n, err := d.count()
		if err != nil {
			return err
		}
		if n == 0 {
			v.Set(reflect.Zero(v.Type()))
			return nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 && typ == "u8" {
			b := make([]byte, n)
			if _, err := io.ReadFull(d.r, b); err != nil {
				return corrupt("bytes: %v", err)
			}
			v.SetBytes(b)
			return nil
		}
		v.Set(reflect.MakeSlice(v.Type(), n, n))
		fallthrough
	case reflect.Array:
		for i := range v.Len() {
			if err := d.value(v.Index(i), typ); err != nil {
				return err
			}
		}
		return nil
	case reflect.Struct:
		return d.structValue(v)
	case reflect.String:
		n, err := d.count()
		if err != nil {
			return err
		}
		b := make([]byte, n)
		if _, err := io.ReadFull(d.r, b); err != nil {
			return corrupt("string: %v", err)
		}
		v.SetString(string(b))
		return nil
	}

	size, ok := fileTypeSize[typ]
	if !ok {
		return fmt.Errorf("%v stored as %s", v.Kind(), typ)
	}
	var b [8]byte
	if _, err := io.ReadFull(d.r, b[8-size:]); err != nil {
		return corrupt("%s: %v", typ, err)
	}
	u := binary.BigEndian.Uint64(b[:])
	if typ[0] == 'i' {
		shift := 64 - 8*size
		u = uint64(int64(u<<shift) >> shift)
	}
	switch v.Kind() {
	case reflect.Bool:
		v.SetBool(u != 0)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v.SetInt(int64(u))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v.SetUint(u)
	default:
		return fmt.Errorf("unexpected field kind %v", v.Kind())
	}
	return nil
}
