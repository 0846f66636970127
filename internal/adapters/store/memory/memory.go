// Package memory implements the key-value range store as an in-process tree.
// It backs development mode and deterministic tests, and is the only bundled
// store with native live subscriptions.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/attendly/core/internal/domain/entities"
	"github.com/attendly/core/internal/ports"
)

const subscriptionBuffer = 16

// Store is a tree of JSON leaves addressed by slash-separated paths.
type Store struct {
	mu      sync.RWMutex
	root    *node
	subs    map[int]*subscriber
	nextSub int
}

type node struct {
	children map[string]*node
	value    json.RawMessage // leaves only
}

type subscriber struct {
	path string
	ch   chan ports.Snapshot
}

// New creates an empty store.
func New() *Store {
	return &Store{
		root: &node{children: make(map[string]*node)},
		subs: make(map[int]*subscriber),
	}
}

func (s *Store) Get(ctx context.Context, path string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := s.lookup(segments(path))
	if n == nil {
		return nil, entities.ErrNotFound
	}
	return n.marshal(), nil
}

func (s *Store) Set(ctx context.Context, path string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value for %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	segs := segments(path)
	if isJSONNull(raw) {
		s.remove(segs)
	} else {
		s.attach(segs, buildNode(raw))
	}
	s.notify(path)
	return nil
}

func (s *Store) Update(ctx context.Context, path string, children map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range children {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal child %s of %s: %w", key, path, err)
		}
		segs := segments(path + "/" + key)
		if isJSONNull(raw) {
			s.remove(segs)
		} else {
			s.attach(segs, buildNode(raw))
		}
	}
	s.notify(path)
	return nil
}

func (s *Store) Remove(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remove(segments(path))
	s.notify(path)
	return nil
}

func (s *Store) RangeQuery(ctx context.Context, path, startKey, endKey string) ([]ports.KeyValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := s.lookup(segments(path))
	if n == nil || n.children == nil {
		return nil, nil
	}

	keys := make([]string, 0, len(n.children))
	for key := range n.children {
		if startKey != "" && key < startKey {
			continue
		}
		if endKey != "" && key > endKey {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]ports.KeyValue, 0, len(keys))
	for _, key := range keys {
		result = append(result, ports.KeyValue{Key: key, Value: n.children[key].marshal()})
	}
	return result, nil
}

// Subscribe registers a live watch on path. The current value is delivered
// first, then one snapshot per mutation touching the subtree. The channel
// closes when ctx is cancelled. Slow consumers have intermediate snapshots
// coalesced; every delivered snapshot is still a full logical replace.
func (s *Store) Subscribe(ctx context.Context, path string) (<-chan ports.Snapshot, error) {
	sub := &subscriber{path: normalize(path), ch: make(chan ports.Snapshot, subscriptionBuffer)}

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = sub
	sub.ch <- s.snapshotLocked(sub.path)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
		close(sub.ch)
	}()

	return sub.ch, nil
}

var _ ports.KeyValueRangeStore = (*Store)(nil)
var _ ports.LiveStore = (*Store)(nil)

// tree plumbing, callers hold the appropriate lock

func (s *Store) lookup(segs []string) *node {
	n := s.root
	for _, seg := range segs {
		next, ok := n.children[seg]
		if !ok {
			return nil
		}
		n = next
	}
	return n
}

func (s *Store) attach(segs []string, child *node) {
	if len(segs) == 0 {
		s.root = child
		if s.root.children == nil {
			s.root.children = make(map[string]*node)
		}
		return
	}

	n := s.root
	for _, seg := range segs[:len(segs)-1] {
		next, ok := n.children[seg]
		if !ok || next.children == nil {
			next = &node{children: make(map[string]*node)}
			n.children[seg] = next
		}
		n = next
	}
	n.children[segs[len(segs)-1]] = child
}

func (s *Store) remove(segs []string) {
	if len(segs) == 0 {
		s.root = &node{children: make(map[string]*node)}
		return
	}

	path := make([]*node, 0, len(segs))
	n := s.root
	for _, seg := range segs[:len(segs)-1] {
		next, ok := n.children[seg]
		if !ok {
			return
		}
		path = append(path, n)
		n = next
	}
	delete(n.children, segs[len(segs)-1])

	// prune now-empty interior nodes
	for i := len(path) - 1; i >= 0; i-- {
		if len(n.children) > 0 || n.value != nil {
			break
		}
		delete(path[i].children, segs[i])
		n = path[i]
	}
}

func (s *Store) notify(changed string) {
	changed = normalize(changed)
	for _, sub := range s.subs {
		if !related(sub.path, changed) {
			continue
		}
		snap := s.snapshotLocked(sub.path)
		select {
		case sub.ch <- snap:
		default:
			// full buffer: coalesce by dropping the oldest pending snapshot
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- snap:
			default:
			}
		}
	}
}

func (s *Store) snapshotLocked(path string) ports.Snapshot {
	snap := ports.Snapshot{Path: path, Value: json.RawMessage("null")}
	if n := s.lookup(segments(path)); n != nil {
		snap.Value = n.marshal()
	}
	return snap
}

func (n *node) marshal() json.RawMessage {
	if n.children == nil {
		return n.value
	}
	parts := make(map[string]json.RawMessage, len(n.children))
	for key, child := range n.children {
		parts[key] = child.marshal()
	}
	raw, _ := json.Marshal(parts)
	return raw
}

// buildNode expands a JSON document into tree form so interior paths of a
// written object stay individually addressable.
func buildNode(raw json.RawMessage) *node {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return &node{value: raw}
	}
	n := &node{children: make(map[string]*node, len(obj))}
	for key, childRaw := range obj {
		if isJSONNull(childRaw) {
			continue
		}
		n.children[key] = buildNode(childRaw)
	}
	return n
}

// related reports whether a mutation at changed is visible from a
// subscription rooted at watched, i.e. one path is an ancestor of the other.
func related(watched, changed string) bool {
	if watched == "" || changed == "" || watched == changed {
		return true
	}
	return strings.HasPrefix(changed, watched+"/") || strings.HasPrefix(watched, changed+"/")
}

func normalize(path string) string {
	return strings.Trim(path, "/")
}

func segments(path string) []string {
	path = normalize(path)
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func isJSONNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}
