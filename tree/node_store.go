package tree

import (
	"context"
	"strconv"
	"sync"
)

/*
NodeStore manages the persistence of tree nodes:
it creates them, assigns their IDs, and retrieves,
updates and deletes them by ID.

Every method takes a context so that implementations
backed by remote stores can abort the operation when
the context expires.
*/
type NodeStore interface {
	// Create stores a node for the first time,
	// choosing an ID for it and setting it on the
	// node before returning.
	Create(ctx context.Context, n *Node) error
	// Get returns the node stored under the given
	// ID, or nil if no node has that ID.
	Get(ctx context.Context, id string) (*Node, error)
	// Store persists the current state of a node
	// that was previously created. The node ID is
	// left untouched.
	Store(ctx context.Context, n *Node) error
	// Delete removes a node from the store. Deleting
	// a node that is not in the store is not an error.
	Delete(ctx context.Context, n *Node) error
	// Close releases the store resources, flushing
	// any pending changes first unless the context
	// expires.
	Close(ctx context.Context) error
}

/*
memoryNodeStore keeps nodes in a map guarded by an
RWMutex. IDs are consecutive integers, which keeps
dumped trees easy to read.
*/
type memoryNodeStore struct {
	mu     sync.RWMutex
	nodes  map[string]*Node
	lastID uint64
}

/*
NewMemoryNodeStore returns a NodeStore backed by
process memory. It is the store used for growing
and pruning unless a persistent one is requested.
*/
func NewMemoryNodeStore() NodeStore {
	return &memoryNodeStore{nodes: make(map[string]*Node)}
}

func (s *memoryNodeStore) Create(ctx context.Context, n *Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		s.lastID++
		id := strconv.FormatUint(s.lastID, 10)
		if _, taken := s.nodes[id]; !taken {
			n.ID = id
			break
		}
	}
	s.nodes[n.ID] = n
	return nil
}

func (s *memoryNodeStore) Get(ctx context.Context, id string) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes[id], nil
}

func (s *memoryNodeStore) Store(ctx context.Context, n *Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[n.ID] = n
	return nil
}

func (s *memoryNodeStore) Delete(ctx context.Context, n *Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.nodes, n.ID)
	return nil
}

func (s *memoryNodeStore) Close(ctx context.Context) error {
	return nil
}
