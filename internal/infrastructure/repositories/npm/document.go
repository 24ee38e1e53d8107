// Package npm models package.json and package-lock.json as order-preserving
// documents, so they can be edited and written back with their original layout.
package npm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/rios0rios0/forkfix/internal/domain/entities"
)

// Kind is the JSON type of a Node.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Member is one key of an object, in document order.
type Member struct {
	Key   string
	Value *Node
}

// Node is a JSON value that remembers key order. Scalars keep their raw
// source text so that numbers and string escapes survive a round trip.
type Node struct {
	Kind    Kind
	Raw     string
	Items   []*Node
	Members []Member
}

// Parse decodes content into a Node.
func Parse(content string) (*Node, error) {
	if !gjson.Valid(content) {
		return nil, fmt.Errorf("%w: invalid JSON", entities.ErrValidation)
	}
	return fromResult(gjson.Parse(content)), nil
}

func fromResult(result gjson.Result) *Node {
	switch {
	case result.IsObject():
		node := &Node{Kind: KindObject, Members: []Member{}}
		result.ForEach(func(key, value gjson.Result) bool {
			node.Members = append(node.Members, Member{Key: key.String(), Value: fromResult(value)})
			return true
		})
		return node
	case result.IsArray():
		node := &Node{Kind: KindArray, Items: []*Node{}}
		result.ForEach(func(_, value gjson.Result) bool {
			node.Items = append(node.Items, fromResult(value))
			return true
		})
		return node
	}

	switch result.Type {
	case gjson.String:
		return &Node{Kind: KindString, Raw: result.Raw}
	case gjson.Number:
		return &Node{Kind: KindNumber, Raw: result.Raw}
	case gjson.True, gjson.False:
		return &Node{Kind: KindBool, Raw: result.Raw}
	default:
		return &Node{Kind: KindNull, Raw: "null"}
	}
}

// NewObject returns an empty object.
func NewObject() *Node {
	return &Node{Kind: KindObject, Members: []Member{}}
}

// NewString returns a string node.
func NewString(value string) *Node {
	return &Node{Kind: KindString, Raw: encodeString(value)}
}

// IsObject reports an object node, tolerating nil.
func (n *Node) IsObject() bool {
	return n != nil && n.Kind == KindObject
}

// Get returns the value of key, or nil when n is not an object or has no such key.
func (n *Node) Get(key string) *Node {
	if !n.IsObject() {
		return nil
	}
	for _, member := range n.Members {
		if member.Key == key {
			return member.Value
		}
	}
	return nil
}

// Has reports whether the object has key.
func (n *Node) Has(key string) bool {
	return n.Get(key) != nil
}

// Set replaces the value of key, appending the key when it is new.
func (n *Node) Set(key string, value *Node) {
	for i, member := range n.Members {
		if member.Key == key {
			n.Members[i].Value = value
			return
		}
	}
	n.Members = append(n.Members, Member{Key: key, Value: value})
}

// Keys returns the object's keys in document order.
func (n *Node) Keys() []string {
	keys := make([]string, 0, len(n.Members))
	for _, member := range n.Members {
		keys = append(keys, member.Key)
	}
	return keys
}

// Str returns the decoded value of a string node.
func (n *Node) Str() (string, bool) {
	if n == nil || n.Kind != KindString {
		return "", false
	}
	return gjson.Parse(n.Raw).String(), true
}

// Int returns the value of an integral number node.
func (n *Node) Int() (int, bool) {
	if n == nil || n.Kind != KindNumber {
		return 0, false
	}
	value := gjson.Parse(n.Raw)
	if float64(value.Int()) != value.Float() {
		return 0, false
	}
	return int(value.Int()), true
}

// Clone deep-copies the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	clone := &Node{Kind: n.Kind, Raw: n.Raw}
	if n.Items != nil {
		clone.Items = make([]*Node, 0, len(n.Items))
		for _, item := range n.Items {
			clone.Items = append(clone.Items, item.Clone())
		}
	}
	if n.Members != nil {
		clone.Members = make([]Member, 0, len(n.Members))
		for _, member := range n.Members {
			clone.Members = append(clone.Members, Member{Key: member.Key, Value: member.Value.Clone()})
		}
	}
	return clone
}

func encodeString(value string) string {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(value)
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
