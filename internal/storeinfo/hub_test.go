package storeinfo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connhub/console/internal/logging"
	"github.com/connhub/console/internal/shared/id"
	"github.com/connhub/console/internal/shared/types"
)

// blockingSource lets tests control when each module's snapshot resolves.
type blockingSource struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
	infos map[string]*types.ModuleStoreInfo
	errs  map[string]error
}

func newBlockingSource() *blockingSource {
	return &blockingSource{
		gates: make(map[string]chan struct{}),
		infos: make(map[string]*types.ModuleStoreInfo),
		errs:  make(map[string]error),
	}
}

func (s *blockingSource) add(moduleID string, lastUpdated int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.infos[moduleID] = &types.ModuleStoreInfo{ModuleID: moduleID, LastUpdated: lastUpdated}
}

func (s *blockingSource) block(moduleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gates[moduleID] = make(chan struct{})
}

func (s *blockingSource) release(moduleID string) {
	s.mu.Lock()
	gate := s.gates[moduleID]
	delete(s.gates, moduleID)
	s.mu.Unlock()
	if gate != nil {
		close(gate)
	}
}

func (s *blockingSource) ModuleInfo(ctx context.Context, moduleID string) (*types.ModuleStoreInfo, error) {
	s.mu.Lock()
	gate := s.gates[moduleID]
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs[moduleID]; err != nil {
		return nil, err
	}
	info, ok := s.infos[moduleID]
	if !ok {
		return nil, errors.New("not found")
	}
	return info, nil
}

// recorder collects delivered snapshots.
type recorder struct {
	mu    sync.Mutex
	infos []*types.ModuleStoreInfo
}

func (r *recorder) deliver(info *types.ModuleStoreInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos = append(r.infos, info)
}

func (r *recorder) wait(t *testing.T, n int) []*types.ModuleStoreInfo {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		if len(r.infos) >= n {
			out := append([]*types.ModuleStoreInfo(nil), r.infos...)
			r.mu.Unlock()
			return out
		}
		r.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d deliveries", n)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.infos)
}

func TestSubscribeDeliversSnapshot(t *testing.T) {
	source := newBlockingSource()
	source.add("eos", 100)

	hub := NewHub(source, logging.NewNop())
	rec := &recorder{}
	connID := id.NewConnID()

	hub.Register(connID, rec.deliver)
	defer hub.Unregister(connID)

	hub.Subscribe(context.Background(), connID, "eos")

	infos := rec.wait(t, 1)
	assert.Equal(t, "eos", infos[0].ModuleID)
	assert.Equal(t, int64(100), infos[0].LastUpdated)
	assert.Equal(t, 1, hub.ActiveSubscriptions())
}

func TestLateResponseDiscardedAfterSwitch(t *testing.T) {
	source := newBlockingSource()
	source.add("a", 1)
	source.add("b", 2)
	source.block("a") // A's response hangs until released

	hub := NewHub(source, logging.NewNop())
	rec := &recorder{}
	connID := id.NewConnID()

	hub.Register(connID, rec.deliver)
	defer hub.Unregister(connID)

	hub.Subscribe(context.Background(), connID, "a")
	hub.Subscribe(context.Background(), connID, "b")

	// B resolves first
	infos := rec.wait(t, 1)
	assert.Equal(t, "b", infos[0].ModuleID)

	// A's late response must not overwrite B's state
	source.release("a")
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 1, rec.count())
	assert.Equal(t, "b", rec.wait(t, 1)[0].ModuleID)
}

func TestStalledDeliveryCannotOvertakeNewerSnapshot(t *testing.T) {
	source := newBlockingSource()
	source.add("a", 1)
	source.add("b", 2)

	hub := NewHub(source, logging.NewNop())
	rec := &recorder{}
	connID := id.NewConnID()

	// Stall module a's delivery after it has passed the guard, the way a
	// slow socket write would
	entered := make(chan struct{})
	gate := make(chan struct{})
	var once sync.Once
	hub.Register(connID, func(info *types.ModuleStoreInfo) {
		if info.ModuleID == "a" {
			once.Do(func() { close(entered) })
			<-gate
		}
		rec.deliver(info)
	})
	defer hub.Unregister(connID)

	hub.Subscribe(context.Background(), connID, "a")
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot delivery never started")
	}

	// Switch while a's delivery is mid-flight, then let it finish
	hub.Subscribe(context.Background(), connID, "b")
	close(gate)

	infos := rec.wait(t, 2)
	require.Len(t, infos, 2)
	assert.Equal(t, "a", infos[0].ModuleID)
	// b's snapshot is the last one delivered, never overtaken by a's
	assert.Equal(t, "b", infos[1].ModuleID)
}

func TestLateResponseDiscardedAfterUnregister(t *testing.T) {
	source := newBlockingSource()
	source.add("a", 1)
	source.block("a")

	hub := NewHub(source, logging.NewNop())
	rec := &recorder{}
	connID := id.NewConnID()

	hub.Register(connID, rec.deliver)
	hub.Subscribe(context.Background(), connID, "a")
	hub.Unregister(connID)

	source.release("a")
	time.Sleep(50 * time.Millisecond)

	assert.Zero(t, rec.count())
}

func TestUnsubscribeResetsState(t *testing.T) {
	source := newBlockingSource()
	source.add("a", 1)

	hub := NewHub(source, logging.NewNop())
	rec := &recorder{}
	connID := id.NewConnID()

	hub.Register(connID, rec.deliver)
	defer hub.Unregister(connID)

	hub.Subscribe(context.Background(), connID, "a")
	rec.wait(t, 1)

	hub.Unsubscribe(connID)
	assert.Zero(t, hub.ActiveSubscriptions())

	// Refresh pushes reach nobody
	hub.NotifyAll(context.Background())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
}

func TestFetchFailureIsSilent(t *testing.T) {
	source := newBlockingSource()
	source.errs["down"] = errors.New("store unreachable")

	hub := NewHub(source, logging.NewNop())
	rec := &recorder{}
	connID := id.NewConnID()

	hub.Register(connID, rec.deliver)
	defer hub.Unregister(connID)

	hub.Subscribe(context.Background(), connID, "down")
	time.Sleep(50 * time.Millisecond)

	// No delivery, but the subscription stays active for later pushes
	assert.Zero(t, rec.count())
	assert.Equal(t, 1, hub.ActiveSubscriptions())
}

func TestNotifyAllPushesToMatchingConnections(t *testing.T) {
	source := newBlockingSource()
	source.add("a", 1)
	source.add("b", 2)

	hub := NewHub(source, logging.NewNop())
	recA := &recorder{}
	recB := &recorder{}
	connA := id.NewConnID()
	connB := id.NewConnID()

	hub.Register(connA, recA.deliver)
	hub.Register(connB, recB.deliver)
	defer hub.Unregister(connA)
	defer hub.Unregister(connB)

	hub.Subscribe(context.Background(), connA, "a")
	hub.Subscribe(context.Background(), connB, "b")
	recA.wait(t, 1)
	recB.wait(t, 1)

	source.add("a", 10)
	source.add("b", 20)
	hub.NotifyAll(context.Background())

	infosA := recA.wait(t, 2)
	infosB := recB.wait(t, 2)

	// Each connection only ever sees its own module
	for _, info := range infosA {
		require.Equal(t, "a", info.ModuleID)
	}
	for _, info := range infosB {
		require.Equal(t, "b", info.ModuleID)
	}
	assert.Equal(t, int64(10), infosA[1].LastUpdated)
	assert.Equal(t, int64(20), infosB[1].LastUpdated)
}
