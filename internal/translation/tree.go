// Package translation translates structured report payloads without letting
// the translator change their shape.
//
// Payloads are held as a tagged union (Node) of text, number, bool, null,
// object and list values. Only text leaves are ever replaced; numbers, dates
// and other invariant text survive untouched, and object keys and list
// lengths must match the original exactly.
package translation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Kind tags the variant held by a Node.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindBool
	KindNull
	KindObject
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindObject:
		return "object"
	case KindList:
		return "list"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsLeaf reports whether the kind holds a scalar.
func (k Kind) IsLeaf() bool {
	return k != KindObject && k != KindList
}

// Field is one key of an object node. Key order is preserved.
type Field struct {
	Key   string
	Value *Node
}

// Node is one value of a structured payload.
type Node struct {
	Kind   Kind
	Text   string
	Number json.Number
	Bool   bool
	Fields []Field
	Items  []*Node
}

// Text builds a text leaf.
func Text(s string) *Node { return &Node{Kind: KindText, Text: s} }

// Number builds a numeric leaf.
func Number(n json.Number) *Node { return &Node{Kind: KindNumber, Number: n} }

// Object builds an object node from ordered fields.
func Object(fields ...Field) *Node { return &Node{Kind: KindObject, Fields: fields} }

// List builds a list node.
func List(items ...*Node) *Node { return &Node{Kind: KindList, Items: items} }

// ErrInvalidPayload is returned when bytes are not a single JSON value.
var ErrInvalidPayload = errors.New("invalid structured payload")

// Parse decodes a single JSON value into a Node tree, preserving key order
// and the exact textual form of numbers.
func Parse(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	n, err := parseValue(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after value", ErrInvalidPayload)
	}
	return n, nil
}

// FromValue converts any JSON-marshalable value into a Node tree.
func FromValue(v interface{}) (*Node, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return Parse(data)
}

// Decode converts a Node tree back into a typed value.
func Decode[T any](n *Node) (T, error) {
	var out T
	data, err := n.MarshalJSON()
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to decode payload: %w", err)
	}
	return out, nil
}

func parseValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			n := &Node{Kind: KindObject, Fields: []Field{}}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T", keyTok)
				}
				child, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				n.Fields = append(n.Fields, Field{Key: key, Value: child})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		case '[':
			n := &Node{Kind: KindList, Items: []*Node{}}
			for dec.More() {
				child, err := parseValue(dec)
				if err != nil {
					return nil, err
				}
				n.Items = append(n.Items, child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", v)
	case string:
		return Text(v), nil
	case json.Number:
		return Number(v), nil
	case bool:
		return &Node{Kind: KindBool, Bool: v}, nil
	case nil:
		return &Node{Kind: KindNull}, nil
	}
	return nil, fmt.Errorf("unexpected token %T", tok)
}

// Get returns the value of an object key.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.Kind != KindObject {
		return nil, false
	}
	for _, f := range n.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Clone returns a deep copy.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{Kind: n.Kind, Text: n.Text, Number: n.Number, Bool: n.Bool}
	if n.Fields != nil {
		out.Fields = make([]Field, len(n.Fields))
		for i, f := range n.Fields {
			out.Fields[i] = Field{Key: f.Key, Value: f.Value.Clone()}
		}
	}
	if n.Items != nil {
		out.Items = make([]*Node, len(n.Items))
		for i, item := range n.Items {
			out.Items[i] = item.Clone()
		}
	}
	return out
}

// MarshalJSON encodes the tree, keeping object key order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) encode(buf *bytes.Buffer) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}
	switch n.Kind {
	case KindText:
		data, err := json.Marshal(n.Text)
		if err != nil {
			return err
		}
		buf.Write(data)
	case KindNumber:
		if n.Number == "" {
			buf.WriteString("0")
		} else {
			buf.WriteString(n.Number.String())
		}
	case KindBool:
		if n.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNull:
		buf.WriteString("null")
	case KindObject:
		buf.WriteByte('{')
		for i, f := range n.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(f.Key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := f.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case KindList:
		buf.WriteByte('[')
		for i, item := range n.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("cannot encode %s", n.Kind)
	}
	return nil
}
