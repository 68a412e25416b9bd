package scanning

import (
	"context"
	"fmt"
	"sync"

	appctx "scanflow/internal/core/context"
)

// Service serves scans for many documents and devices.
// Each request gets a worker bound to the document's current policy; scans
// from the same device on the same document are serialized.
type Service struct {
	lookup   Lookup
	sink     Sink
	policies PolicySource
	journal  Journal

	standard *Engine
	address  *Engine

	locks *keyedMutex
}

// NewService creates a scanning service. journal may be nil.
func NewService(lookup Lookup, sink Sink, policies PolicySource, journal Journal) *Service {
	return &Service{
		lookup:   lookup,
		sink:     sink,
		policies: policies,
		journal:  journal,
		standard: NewEngine(Standard),
		address:  NewEngine(AddressStorage),
		locks:    newKeyedMutex(),
	}
}

// Scan evaluates one scan. A request carrying a Location is handled by the
// address-storage worker.
func (s *Service) Scan(ctx context.Context, req ScanRequest) (Result, error) {
	policy, err := s.policies.GetPolicy(ctx, req.DocumentID)
	if err != nil {
		return Result{}, fmt.Errorf("load policy: %w", err)
	}

	unlock := s.locks.Lock(req.DocumentID + "/" + appctx.GetDeviceID(ctx))
	defer unlock()

	return s.Worker(policy, req.Location != nil).Scan(ctx, req)
}

// Worker returns a session worker for policy.
func (s *Service) Worker(policy Policy, addressed bool) *Worker {
	engine := s.standard
	if addressed {
		engine = s.address
	}
	return NewWorker(engine, policy, s.lookup, s.sink, s.journal)
}

// keyedMutex hands out one mutex per key and forgets keys nobody holds.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock blocks until key is free and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
