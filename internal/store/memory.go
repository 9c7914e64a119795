package store

import (
	"sync"

	"github.com/google/uuid"
)

// Memory is the in-process Store used when all participants talk to one
// server. It keeps the same contract a distributed substrate would offer:
// last-writer-wins fields, ordered lists, per-object access groups and
// asynchronous change notification.
type Memory struct {
	mu      sync.RWMutex
	objects map[Ref]*object
	groups  map[GroupID]map[string]Role
	subSeq  SubID
}

type object struct {
	group  GroupID
	fields map[string]any
	subs   map[SubID]func(Ref)
}

func NewMemory() *Memory {
	return &Memory{
		objects: make(map[Ref]*object),
		groups:  make(map[GroupID]map[string]Role),
	}
}

func (m *Memory) CreateObject(fields map[string]any, group GroupID) Ref {
	ref := Ref(uuid.NewString())

	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = copyValue(v)
	}

	m.mu.Lock()
	m.objects[ref] = &object{
		group:  group,
		fields: copied,
		subs:   make(map[SubID]func(Ref)),
	}
	m.mu.Unlock()

	return ref
}

func (m *Memory) ReadField(ref Ref, field string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[ref]
	if !ok {
		return nil, ErrNoObject
	}
	return copyValue(obj.fields[field]), nil
}

func (m *Memory) WriteField(ref Ref, field string, value any) error {
	m.mu.Lock()
	obj, ok := m.objects[ref]
	if !ok {
		m.mu.Unlock()
		return ErrNoObject
	}
	obj.fields[field] = copyValue(value)
	subs := snapshotSubs(obj)
	m.mu.Unlock()

	notify(ref, subs)
	return nil
}

func (m *Memory) CompareAndSwapField(ref Ref, field string, expected, value any) (bool, error) {
	m.mu.Lock()
	obj, ok := m.objects[ref]
	if !ok {
		m.mu.Unlock()
		return false, ErrNoObject
	}
	if obj.fields[field] != expected {
		m.mu.Unlock()
		return false, nil
	}
	obj.fields[field] = copyValue(value)
	subs := snapshotSubs(obj)
	m.mu.Unlock()

	notify(ref, subs)
	return true, nil
}

func (m *Memory) CompareAndSwapFields(ref Ref, field string, expected any, updates map[string]any) (bool, error) {
	m.mu.Lock()
	obj, ok := m.objects[ref]
	if !ok {
		m.mu.Unlock()
		return false, ErrNoObject
	}
	if obj.fields[field] != expected {
		m.mu.Unlock()
		return false, nil
	}
	for k, v := range updates {
		obj.fields[k] = copyValue(v)
	}
	subs := snapshotSubs(obj)
	m.mu.Unlock()

	notify(ref, subs)
	return true, nil
}

func (m *Memory) ReadList(ref Ref, field string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[ref]
	if !ok {
		return nil, ErrNoObject
	}
	list, _ := obj.fields[field].([]string)
	out := make([]string, len(list))
	copy(out, list)
	return out, nil
}

func (m *Memory) AppendToList(ref Ref, field string, value string) error {
	m.mu.Lock()
	obj, ok := m.objects[ref]
	if !ok {
		m.mu.Unlock()
		return ErrNoObject
	}
	list, _ := obj.fields[field].([]string)
	obj.fields[field] = append(list, value)
	subs := snapshotSubs(obj)
	m.mu.Unlock()

	notify(ref, subs)
	return nil
}

func (m *Memory) AppendToListBounded(ref Ref, field string, value string, max int) (bool, error) {
	m.mu.Lock()
	obj, ok := m.objects[ref]
	if !ok {
		m.mu.Unlock()
		return false, ErrNoObject
	}
	list, _ := obj.fields[field].([]string)
	for _, v := range list {
		if v == value {
			m.mu.Unlock()
			return true, nil
		}
	}
	if max > 0 && len(list) >= max {
		m.mu.Unlock()
		return false, nil
	}
	obj.fields[field] = append(list, value)
	subs := snapshotSubs(obj)
	m.mu.Unlock()

	notify(ref, subs)
	return true, nil
}

func (m *Memory) RemoveFromList(ref Ref, field string, match func(string) bool) error {
	m.mu.Lock()
	obj, ok := m.objects[ref]
	if !ok {
		m.mu.Unlock()
		return ErrNoObject
	}
	list, _ := obj.fields[field].([]string)
	kept := make([]string, 0, len(list))
	for _, v := range list {
		if !match(v) {
			kept = append(kept, v)
		}
	}
	obj.fields[field] = kept
	subs := snapshotSubs(obj)
	m.mu.Unlock()

	notify(ref, subs)
	return nil
}

func (m *Memory) CreateAccessGroup(owner string) GroupID {
	id := GroupID(uuid.NewString())

	m.mu.Lock()
	m.groups[id] = map[string]Role{owner: RoleAdmin}
	m.mu.Unlock()

	return id
}

func (m *Memory) GrantRole(group GroupID, principal string, role Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	members, ok := m.groups[group]
	if !ok {
		return ErrNoGroup
	}
	// admin capability is never silently downgraded by a later grant
	if members[principal] == RoleAdmin && role != RoleAdmin {
		return nil
	}
	members[principal] = role
	return nil
}

func (m *Memory) RoleOf(group GroupID, principal string) (Role, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members, ok := m.groups[group]
	if !ok {
		return "", false
	}
	if role, ok := members[principal]; ok {
		return role, true
	}
	if role, ok := members[Everyone]; ok {
		return role, true
	}
	return "", false
}

func (m *Memory) GroupOf(ref Ref) (GroupID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[ref]
	if !ok {
		return "", ErrNoObject
	}
	return obj.group, nil
}

func (m *Memory) Subscribe(ref Ref, fn func(Ref)) SubID {
	m.mu.Lock()
	defer m.mu.Unlock()

	obj, ok := m.objects[ref]
	if !ok {
		return 0
	}
	m.subSeq++
	obj.subs[m.subSeq] = fn
	return m.subSeq
}

func (m *Memory) Unsubscribe(ref Ref, id SubID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if obj, ok := m.objects[ref]; ok {
		delete(obj.subs, id)
	}
}

func snapshotSubs(obj *object) []func(Ref) {
	subs := make([]func(Ref), 0, len(obj.subs))
	for _, fn := range obj.subs {
		subs = append(subs, fn)
	}
	return subs
}

// notify delivers change callbacks off the writer's goroutine, matching the
// fire-and-forget semantics of a real replication substrate.
func notify(ref Ref, subs []func(Ref)) {
	if len(subs) == 0 {
		return
	}
	go func() {
		for _, fn := range subs {
			fn(ref)
		}
	}()
}

func copyValue(v any) any {
	if list, ok := v.([]string); ok {
		out := make([]string, len(list))
		copy(out, list)
		return out
	}
	return v
}
