package rendertree

import (
	"encoding/json"
	"testing"
)

func sample() []Child {
	return []Child{
		El("p", map[string]any{AttrKey: "p-0"},
			Text("Hello "),
			El("strong", map[string]any{AttrKey: "strong-0"}, Text("World")),
		),
		Text("!"),
	}
}

func TestTextContent(t *testing.T) {
	if got := TextContent(sample()); got != "Hello World!" {
		t.Errorf("expected %q, got %q", "Hello World!", got)
	}
}

func TestWalk_DocumentOrder(t *testing.T) {
	var keys []string
	Walk(sample(), func(n *Node) bool {
		keys = append(keys, n.Key())
		return true
	})
	if len(keys) != 2 || keys[0] != "p-0" || keys[1] != "strong-0" {
		t.Errorf("unexpected walk order: %v", keys)
	}
}

func TestWalk_SkipSubtree(t *testing.T) {
	count := 0
	Walk(sample(), func(n *Node) bool {
		count++
		return false
	})
	if count != 1 {
		t.Errorf("expected 1 visited node, got %d", count)
	}
}

func TestFind(t *testing.T) {
	if got := Find(sample(), "strong"); len(got) != 1 {
		t.Fatalf("expected 1 strong node, got %d", len(got))
	}
	if got := Find(sample(), "em"); len(got) != 0 {
		t.Errorf("expected no em nodes, got %d", len(got))
	}
}

func TestAttr(t *testing.T) {
	n := El("input", map[string]any{"checked": true, "type": "checkbox", "hidden": false})
	if n.Attr("checked") != "checked" {
		t.Errorf("expected boolean attr to report its name, got %q", n.Attr("checked"))
	}
	if n.Attr("type") != "checkbox" {
		t.Errorf("expected %q, got %q", "checkbox", n.Attr("type"))
	}
	if n.Attr("hidden") != "" {
		t.Errorf("expected false boolean to be empty, got %q", n.Attr("hidden"))
	}
	var nilNode *Node
	if nilNode.Key() != "" || nilNode.Attr("x") != "" {
		t.Error("expected nil node accessors to return empty strings")
	}
}

func TestJSONShape(t *testing.T) {
	b, err := json.Marshal(sample())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `[{"tag":"p","attrs":{"key":"p-0"},"children":["Hello ",{"tag":"strong","attrs":{"key":"strong-0"},"children":["World"]}]},"!"]`
	if string(b) != want {
		t.Errorf("expected %s, got %s", want, b)
	}
}
