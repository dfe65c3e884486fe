package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"firebase.google.com/go/db"
)

// fakeDatabase emulates the Realtime Database REST semantics the store
// relies on: ETag guarded writes, 25 transaction attempts, and the way the
// database drops nulls and empty arrays.
type fakeDatabase struct {
	mu    sync.Mutex
	nodes map[string][]byte
	etags map[string]int

	// beforeWrite runs inside Transaction before each conditional write
	beforeWrite func(path string)
	// failWith makes every call return this error
	failWith error
}

func newFakeDatabase() *fakeDatabase {
	return &fakeDatabase{
		nodes: make(map[string][]byte),
		etags: make(map[string]int),
	}
}

func (d *fakeDatabase) Ref(path string) Reference {
	return &fakeRef{db: d, path: path}
}

func (d *fakeDatabase) snapshot(path string) ([]byte, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	data, ok := d.nodes[path]
	if !ok {
		data = []byte("null")
	}
	return data, strconv.Itoa(d.etags[path])
}

// put stores v if etag still matches, or unconditionally when etag is empty
func (d *fakeDatabase) put(path, etag string, v interface{}) (bool, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return false, err
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return false, err
	}
	stored, err := json.Marshal(strip(generic))
	if err != nil {
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if etag != "" && etag != strconv.Itoa(d.etags[path]) {
		return false, nil
	}
	d.nodes[path] = stored
	d.etags[path]++
	return true, nil
}

// strip mimics how the database stores JSON: nulls and empty containers
// vanish, and arrays with holes come back as objects keyed by index
func strip(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any)
		for k, e := range t {
			if s := strip(e); s != nil {
				out[k] = s
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case []any:
		items := make([]any, len(t))
		holes, filled := false, 0
		for i, e := range t {
			items[i] = strip(e)
			if items[i] == nil {
				holes = true
			} else {
				filled++
			}
		}
		if filled == 0 {
			return nil
		}
		if !holes {
			return items
		}
		out := make(map[string]any)
		for i, e := range items {
			if e != nil {
				out[strconv.Itoa(i)] = e
			}
		}
		return out
	}
	return v
}

type fakeRef struct {
	db   *fakeDatabase
	path string
}

func (r *fakeRef) Get(ctx context.Context, v interface{}) error {
	if r.db.failWith != nil {
		return r.db.failWith
	}
	data, _ := r.db.snapshot(r.path)
	return json.Unmarshal(data, v)
}

func (r *fakeRef) GetWithETag(ctx context.Context, v interface{}) (string, error) {
	if r.db.failWith != nil {
		return "", r.db.failWith
	}
	data, etag := r.db.snapshot(r.path)
	return etag, json.Unmarshal(data, v)
}

func (r *fakeRef) GetIfChanged(ctx context.Context, etag string, v interface{}) (bool, string, error) {
	if r.db.failWith != nil {
		return false, "", r.db.failWith
	}
	data, current := r.db.snapshot(r.path)
	if current == etag {
		return false, etag, nil
	}
	return true, current, json.Unmarshal(data, v)
}

type fakeNode struct {
	data []byte
}

func (n fakeNode) Unmarshal(v interface{}) error {
	return json.Unmarshal(n.data, v)
}

func (r *fakeRef) Transaction(ctx context.Context, fn db.UpdateFn) error {
	if r.db.failWith != nil {
		return r.db.failWith
	}
	data, etag := r.db.snapshot(r.path)
	for i := 0; i < 25; i++ {
		v, err := fn(fakeNode{data: data})
		if err != nil {
			return err
		}
		if r.db.beforeWrite != nil {
			r.db.beforeWrite(r.path)
		}
		ok, err := r.db.put(r.path, etag, v)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		data, etag = r.db.snapshot(r.path)
	}
	return fmt.Errorf("transaction aborted after failed retries")
}

var errNetwork = errors.New("dial tcp: connection refused")
