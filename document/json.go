package document

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"
)

type jsonDecoder struct {
	dec *j.Decoder
	opt Options
}

func decodeJSON(r io.Reader, opt Options) (any, error) {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	d := &jsonDecoder{dec: dec, opt: opt}
	tok, err := d.next("")
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &Error{Code: CodeParseError, Message: "empty document", Err: io.ErrUnexpectedEOF}
		}
		return nil, err
	}
	v, err := d.value(tok, "", 0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &Error{Code: CodeParseError, Message: "unexpected data after top-level value"}
	}
	return v, nil
}

func (d *jsonDecoder) next(path string) (j.Token, error) {
	tok, err := d.dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, &Error{Code: CodeParseError, Path: path, Message: err.Error(), Err: err}
	}
	return tok, nil
}

func (d *jsonDecoder) value(tok j.Token, path string, depth int) (any, error) {
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			if err := d.enter(path, depth); err != nil {
				return nil, err
			}
			return d.object(path, depth+1)
		case '[':
			if err := d.enter(path, depth); err != nil {
				return nil, err
			}
			return d.array(path, depth+1)
		}
		return nil, &Error{Code: CodeParseError, Path: path, Message: "unexpected delimiter " + string(rune(v))}
	case string:
		return v, nil
	case bool:
		return v, nil
	case nil:
		return nil, nil
	case j.Number:
		return d.number(string(v), path)
	case float64:
		return d.number(strconv.FormatFloat(v, 'g', -1, 64), path)
	}
	return nil, &Error{Code: CodeParseError, Path: path, Message: "unexpected token"}
}

func (d *jsonDecoder) enter(path string, depth int) error {
	if d.opt.MaxDepth > 0 && depth >= d.opt.MaxDepth {
		return &Error{Code: CodeTooDeep, Path: path, Message: ErrTooDeep.Error(), Err: ErrTooDeep}
	}
	return nil
}

func (d *jsonDecoder) number(s, path string) (any, error) {
	if d.opt.NumberMode == NumberFloat64 {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, &Error{Code: CodeParseError, Path: path, Message: err.Error(), Err: err}
		}
		return f, nil
	}
	return json.Number(s), nil
}

func (d *jsonDecoder) object(path string, depth int) (any, error) {
	obj := NewObject(4)
	for {
		tok, err := d.next(path)
		if err != nil {
			return nil, unexpectedEOF(err, path)
		}
		if delim, ok := tok.(j.Delim); ok && delim == '}' {
			return obj, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, &Error{Code: CodeParseError, Path: path, Message: "expected object key"}
		}
		child := joinPointer(path, key)
		if obj.Has(key) {
			return nil, &Error{Code: CodeDuplicateKey, Path: child, Message: "key '" + key + "' duplicated", Err: ErrDuplicateKey}
		}
		vt, err := d.next(child)
		if err != nil {
			return nil, unexpectedEOF(err, child)
		}
		v, err := d.value(vt, child, depth)
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)
	}
}

func (d *jsonDecoder) array(path string, depth int) (any, error) {
	arr := []any{}
	for {
		tok, err := d.next(path)
		if err != nil {
			return nil, unexpectedEOF(err, path)
		}
		if delim, ok := tok.(j.Delim); ok && delim == ']' {
			return arr, nil
		}
		v, err := d.value(tok, joinPointer(path, strconv.Itoa(len(arr))), depth)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

func unexpectedEOF(err error, path string) error {
	if err == io.EOF {
		return &Error{Code: CodeParseError, Path: path, Message: "unexpected end of input", Err: io.ErrUnexpectedEOF}
	}
	return err
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func joinPointer(base, token string) string {
	return base + "/" + pointerEscaper.Replace(token)
}
