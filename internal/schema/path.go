package schema

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Segment is one step of a structural path: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// KeySegment returns a segment addressing an object property.
func KeySegment(key string) Segment {
	return Segment{Key: key}
}

// IndexSegment returns a segment addressing an array element.
func IndexSegment(i int) Segment {
	return Segment{Index: i, IsIndex: true}
}

// String renders the segment the way it appears inside a rendered Path.
func (s Segment) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	return "'" + strings.ReplaceAll(s.Key, "'", `\'`) + "'"
}

// Compare orders segments: indices numerically, keys lexicographically,
// and any index before any key.
func (s Segment) Compare(o Segment) int {
	switch {
	case s.IsIndex && o.IsIndex:
		return cmp.Compare(s.Index, o.Index)
	case s.IsIndex:
		return -1
	case o.IsIndex:
		return 1
	default:
		return strings.Compare(s.Key, o.Key)
	}
}

// Path locates a node inside a JSON document. The empty path is the root.
type Path []Segment

// String renders the path as a literal list, e.g. [] or ['habitat', 0].
func (p Path) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, seg := range p {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(seg.String())
	}
	b.WriteByte(']')
	return b.String()
}

// Compare orders paths segment by segment; a prefix sorts before its extensions.
func (p Path) Compare(o Path) int {
	return slices.CompareFunc(p, o, Segment.Compare)
}

// resolvePath types the engine's string instance location by walking the
// decoded instance: a segment taken inside an array becomes an index.
func resolvePath(instance any, location []string) Path {
	if len(location) == 0 {
		return Path{}
	}
	path := make(Path, 0, len(location))
	node := instance
	for _, tok := range location {
		switch v := node.(type) {
		case []any:
			if i, err := strconv.Atoi(tok); err == nil && i >= 0 {
				path = append(path, IndexSegment(i))
				if i < len(v) {
					node = v[i]
				} else {
					node = nil
				}
				continue
			}
			path = append(path, KeySegment(tok))
			node = nil
		case map[string]any:
			path = append(path, KeySegment(tok))
			node = v[tok]
		default:
			path = append(path, KeySegment(tok))
			node = nil
		}
	}
	return path
}
