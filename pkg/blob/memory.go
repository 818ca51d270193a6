package blob

import (
	"context"
	"fmt"
	"sync"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/errors"
	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/structs"
)

type object struct {
	data        []byte
	contentType string
}

// Memory is an in process Store, for local runs & tests.
type Memory struct {
	lock sync.RWMutex
	objs map[structs.Location]*object
}

func NewMemory() *Memory {
	return &Memory{objs: map[structs.Location]*object{}}
}

func (m *Memory) Exists(ctx context.Context, loc structs.Location) (bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	_, ok := m.objs[loc]
	return ok, nil
}

func (m *Memory) Get(ctx context.Context, loc structs.Location) ([]byte, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	obj, ok := m.objs[loc]
	if !ok {
		return nil, fmt.Errorf("%w %s", errors.ErrNotFound, loc)
	}
	return append([]byte{}, obj.data...), nil
}

func (m *Memory) Put(ctx context.Context, loc structs.Location, data []byte, contentType string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.objs[loc] = &object{data: append([]byte{}, data...), contentType: contentType}
	return nil
}

func (m *Memory) Delete(ctx context.Context, loc structs.Location) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	delete(m.objs, loc)
	return nil
}

// Keys lists everything stored in a container.
func (m *Memory) Keys(container string) []string {
	m.lock.RLock()
	defer m.lock.RUnlock()
	keys := []string{}
	for loc := range m.objs {
		if loc.Container == container {
			keys = append(keys, loc.Key)
		}
	}
	return keys
}

// ContentType of the object at loc, or "" if there isn't one.
func (m *Memory) ContentType(loc structs.Location) string {
	m.lock.RLock()
	defer m.lock.RUnlock()
	obj, ok := m.objs[loc]
	if !ok {
		return ""
	}
	return obj.contentType
}
