package galaxy

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Points are written as [x, y]. For reading, the painter's older "x,y"
// string keys are accepted as well.

// MarshalJSON encodes the point as [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

// UnmarshalJSON accepts [x, y] or "x,y".
func (p *Point) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err == nil {
		return p.setPair(pair)
	}
	var key string
	if err := json.Unmarshal(data, &key); err != nil {
		return fmt.Errorf("point must be [x, y] or \"x,y\": %s", data)
	}
	return p.setKey(key)
}

// MarshalYAML encodes the point as a flow sequence [x, y].
func (p Point) MarshalYAML() (interface{}, error) {
	return flowSeq(strconv.Itoa(p.X), strconv.Itoa(p.Y)), nil
}

// UnmarshalYAML accepts [x, y] or "x,y".
func (p *Point) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var pair []int
		if err := value.Decode(&pair); err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		return p.setPair(pair)
	case yaml.ScalarNode:
		return p.setKey(value.Value)
	default:
		return fmt.Errorf("line %d: point must be [x, y] or \"x,y\"", value.Line)
	}
}

func (p *Point) setPair(pair []int) error {
	if len(pair) != 2 {
		return fmt.Errorf("point needs 2 coordinates, got %d", len(pair))
	}
	p.X, p.Y = pair[0], pair[1]
	return nil
}

func (p *Point) setKey(key string) error {
	parts := strings.Split(key, ",")
	if len(parts) != 2 {
		return fmt.Errorf("invalid point key %q", key)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return fmt.Errorf("invalid point key %q: %w", key, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return fmt.Errorf("invalid point key %q: %w", key, err)
	}
	p.X, p.Y = x, y
	return nil
}

// MarshalJSON encodes the nebula as [x, y, radius].
func (n Nebula) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{n.X, n.Y, n.Radius})
}

// UnmarshalJSON decodes [x, y, radius].
func (n *Nebula) UnmarshalJSON(data []byte) error {
	var triple []float64
	if err := json.Unmarshal(data, &triple); err != nil {
		return fmt.Errorf("nebula must be [x, y, radius]: %w", err)
	}
	return n.setTriple(triple)
}

// MarshalYAML encodes the nebula as a flow sequence [x, y, radius].
func (n Nebula) MarshalYAML() (interface{}, error) {
	return flowSeq(formatNumber(n.X), formatNumber(n.Y), formatNumber(n.Radius)), nil
}

// UnmarshalYAML decodes [x, y, radius].
func (n *Nebula) UnmarshalYAML(value *yaml.Node) error {
	var triple []float64
	if err := value.Decode(&triple); err != nil {
		return fmt.Errorf("line %d: nebula must be [x, y, radius]: %w", value.Line, err)
	}
	return n.setTriple(triple)
}

func (n *Nebula) setTriple(triple []float64) error {
	if len(triple) != 3 {
		return fmt.Errorf("nebula needs 3 values, got %d", len(triple))
	}
	n.X, n.Y, n.Radius = triple[0], triple[1], triple[2]
	return nil
}

func flowSeq(values ...string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range values {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: v})
	}
	for _, c := range node.Content {
		if strings.ContainsAny(c.Value, ".eE") {
			c.Tag = "!!float"
		}
	}
	return node
}
