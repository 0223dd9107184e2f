package translation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrShapeMismatch is returned when a candidate payload changes keys,
// list lengths, or nesting relative to the original.
var ErrShapeMismatch = errors.New("translated payload shape does not match original")

// Segment is one step of a Path: an object key or a list index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path addresses a node inside a tree.
type Path []Segment

func (p Path) String() string {
	var b strings.Builder
	b.WriteString("$")
	for _, seg := range p {
		if seg.IsIndex {
			b.WriteString("[" + strconv.Itoa(seg.Index) + "]")
			continue
		}
		b.WriteString(".")
		b.WriteString(seg.Key)
	}
	return b.String()
}

func (p Path) append(seg Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

func (p Path) key(k string) Path { return p.append(Segment{Key: k}) }

func (p Path) index(i int) Path { return p.append(Segment{Index: i, IsIndex: true}) }

// MapText returns a copy of n where every translatable text leaf is replaced
// by fn(path, text). Numbers, booleans, nulls and invariant text are kept.
func MapText(n *Node, fn func(path Path, text string) string) *Node {
	return mapText(n, nil, fn)
}

func mapText(n *Node, path Path, fn func(Path, string) string) *Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindText:
		if IsInvariantText(n.Text) {
			return Text(n.Text)
		}
		return Text(fn(path, n.Text))
	case KindObject:
		out := &Node{Kind: KindObject, Fields: make([]Field, len(n.Fields))}
		for i, f := range n.Fields {
			out.Fields[i] = Field{Key: f.Key, Value: mapText(f.Value, path.key(f.Key), fn)}
		}
		return out
	case KindList:
		out := &Node{Kind: KindList, Items: make([]*Node, len(n.Items))}
		for i, item := range n.Items {
			out.Items[i] = mapText(item, path.index(i), fn)
		}
		return out
	}
	return n.Clone()
}

// CheckShape verifies candidate has exactly the containers of original:
// the same object keys, the same list lengths, and leaves where original has leaves.
func CheckShape(original, candidate *Node) error {
	return checkShape(original, candidate, nil)
}

func checkShape(original, candidate *Node, path Path) error {
	if original == nil || candidate == nil {
		if original == candidate {
			return nil
		}
		return fmt.Errorf("%w at %s: missing value", ErrShapeMismatch, path)
	}
	if original.Kind.IsLeaf() {
		if !candidate.Kind.IsLeaf() {
			return fmt.Errorf("%w at %s: expected scalar, got %s", ErrShapeMismatch, path, candidate.Kind)
		}
		return nil
	}
	if original.Kind != candidate.Kind {
		return fmt.Errorf("%w at %s: expected %s, got %s", ErrShapeMismatch, path, original.Kind, candidate.Kind)
	}

	switch original.Kind {
	case KindObject:
		if len(original.Fields) != len(candidate.Fields) {
			return fmt.Errorf("%w at %s: expected %d keys, got %d", ErrShapeMismatch, path, len(original.Fields), len(candidate.Fields))
		}
		for _, f := range original.Fields {
			other, ok := candidate.Get(f.Key)
			if !ok {
				return fmt.Errorf("%w at %s: missing key %q", ErrShapeMismatch, path, f.Key)
			}
			if err := checkShape(f.Value, other, path.key(f.Key)); err != nil {
				return err
			}
		}
	case KindList:
		if len(original.Items) != len(candidate.Items) {
			return fmt.Errorf("%w at %s: expected %d items, got %d", ErrShapeMismatch, path, len(original.Items), len(candidate.Items))
		}
		for i := range original.Items {
			if err := checkShape(original.Items[i], candidate.Items[i], path.index(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Merge overlays the translated text of candidate onto original. The result
// has original's shape and key order; only translatable text leaves whose
// candidate counterpart is also text are replaced. Call CheckShape first.
func Merge(original, candidate *Node) *Node {
	return MapText(original, func(path Path, text string) string {
		if other := lookup(candidate, path); other != nil && other.Kind == KindText {
			return other.Text
		}
		return text
	})
}

func lookup(n *Node, path Path) *Node {
	cur := n
	for _, seg := range path {
		if cur == nil {
			return nil
		}
		if seg.IsIndex {
			if cur.Kind != KindList || seg.Index < 0 || seg.Index >= len(cur.Items) {
				return nil
			}
			cur = cur.Items[seg.Index]
			continue
		}
		next, ok := cur.Get(seg.Key)
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

var (
	numericText = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)
	hexColor    = regexp.MustCompile(`^#[0-9A-Fa-f]{3,8}$`)
)

// IsInvariantText reports whether a text value must never be translated:
// empty strings, numeric strings, calendar dates or timestamps, hex colors and URIs.
func IsInvariantText(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return true
	}
	if numericText.MatchString(t) || hexColor.MatchString(t) {
		return true
	}
	if strings.HasPrefix(t, "http://") || strings.HasPrefix(t, "https://") {
		return true
	}
	return isDateLike(t)
}

func isDateLike(s string) bool {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
