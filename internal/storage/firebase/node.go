package firebase

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/mcoot/gameofchests/internal/model"
)

// decodeNode turns a Realtime Database node into a room, or nil for an
// absent node. The database drops nulls and empty arrays and may return
// sparse arrays as objects keyed by index, so list fields are rebuilt first.
func decodeNode(raw json.RawMessage) (*model.Room, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}

	var node map[string]any
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, err
	}
	if state, ok := node["state"].(map[string]any); ok {
		baskets := denseList(state["baskets"], model.BasketCount)
		for i, b := range baskets {
			baskets[i] = denseList(b, 0)
		}
		state["baskets"] = baskets
		state["remaining"] = denseList(state["remaining"], 0)
		state["moves"] = denseList(state["moves"], 0)
	}

	data, err := json.Marshal(node)
	if err != nil {
		return nil, err
	}
	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	room.EnsureState()
	return &room, nil
}

// denseList returns v as a list of at least minLen entries, filling holes
// with empty lists
func denseList(v any, minLen int) []any {
	var out []any
	switch t := v.(type) {
	case []any:
		out = t
	case map[string]any:
		keys := make([]int, 0, len(t))
		for k := range t {
			if i, err := strconv.Atoi(k); err == nil && i >= 0 {
				keys = append(keys, i)
			}
		}
		sort.Ints(keys)
		if len(keys) > 0 {
			out = make([]any, keys[len(keys)-1]+1)
		}
		for _, i := range keys {
			out[i] = t[strconv.Itoa(i)]
		}
	}
	for len(out) < minLen {
		out = append(out, nil)
	}
	if minLen > 0 {
		for i := range out {
			if out[i] == nil {
				out[i] = []any{}
			}
		}
	}
	if out == nil {
		out = []any{}
	}
	return out
}
