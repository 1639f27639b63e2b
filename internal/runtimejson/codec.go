package runtimejson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Parse decodes data into a Value tree, preserving object key order via
// json.Decoder's token stream rather than encoding/json's map-based
// Unmarshal (which the teacher's own MarshalJSON doc comment flags as
// alphabetizing keys).
func Parse(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := parseValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("runtimejson: trailing data after value")
	}
	return v, nil
}

func parseValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return parseToken(dec, tok)
}

func parseToken(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return parseObject(dec)
		case '[':
			return parseArray(dec)
		default:
			return nil, fmt.Errorf("runtimejson: unexpected delimiter %q", t)
		}
	case nil:
		return NewNull(), nil
	case bool:
		return NewBool(t), nil
	case json.Number:
		return numberValue(t)
	case string:
		return NewString(t), nil
	default:
		return nil, fmt.Errorf("runtimejson: unrecognized token %T", tok)
	}
}

func numberValue(n json.Number) (*Value, error) {
	if i, err := n.Int64(); err == nil {
		return NewInt(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("runtimejson: bad number %q: %w", n, err)
	}
	return NewFloat(f), nil
}

func parseArray(dec *json.Decoder) (*Value, error) {
	arr := NewArray()
	for dec.More() {
		elem, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		arr.ArrayAppend(elem)
	}
	if _, err := dec.Token(); err != nil { // consume ']'
		return nil, err
	}
	return arr, nil
}

func parseObject(dec *json.Decoder) (*Value, error) {
	obj := NewObject()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("runtimejson: object key must be a string, got %T", keyTok)
		}
		val, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		obj.ObjectSet(key, val)
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return nil, err
	}
	return obj, nil
}

// Marshal renders v back to JSON text, preserving object key order so that
// `json.dumps(json.loads(text))` reproduces text's key ordering, matching
// the source runtime's behavior (spec.md §8.6).
func Marshal(v *Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, v *Value) error {
	switch v.Kind() {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.BoolValue()))
	case KindInt:
		buf.WriteString(strconv.FormatInt(v.IntValue(), 10))
	case KindFloat:
		buf.WriteString(strconv.FormatFloat(v.FloatValue(), 'g', -1, 64))
	case KindString:
		encoded, err := json.Marshal(v.StringValue())
		if err != nil {
			return err
		}
		buf.Write(encoded)
	case KindArray:
		buf.WriteByte('[')
		for i, elem := range v.ArrayElements() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, key := range v.ObjectKeys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			encodedKey, err := json.Marshal(key)
			if err != nil {
				return err
			}
			buf.Write(encodedKey)
			buf.WriteByte(':')
			if err := writeValue(buf, v.ObjectGet(key)); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("runtimejson: cannot marshal kind %s", v.Kind())
	}
	return nil
}
