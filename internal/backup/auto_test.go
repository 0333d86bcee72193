package backup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/imobcontrol/internal/domain"
	"github.com/dvloznov/imobcontrol/internal/portfolio"
)

type recordingSink struct {
	mu    sync.Mutex
	snaps []Snapshot
	err   error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Write(ctx context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = append(s.snaps, snap)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snaps)
}

func (s *recordingSink) last() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snaps[len(s.snaps)-1]
}

func TestAutoBackup_DebouncesToLastChange(t *testing.T) {
	sink := &recordingSink{}
	a := NewAutoBackup("k", 50*time.Millisecond, []Sink{sink}, zerolog.Nop())

	props := domain.SampleProperties()
	a.Notify(props[:1])
	a.Notify(props[:2])
	a.Notify(props[:3])
	assert.True(t, a.Status().Pending)

	require.Eventually(t, func() bool { return sink.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, sink.count())

	snap := sink.last()
	assert.Len(t, snap.Properties, 3)
	assert.Equal(t, "k", snap.Key)
	parsed, err := Parse(snap.Payload)
	require.NoError(t, err)
	assert.Len(t, parsed, 3)

	st := a.Status()
	assert.False(t, st.Pending)
	require.NotNil(t, st.LastBackup)
	assert.Empty(t, st.LastError)
}

func TestAutoBackup_SkipsEmptyPortfolio(t *testing.T) {
	sink := &recordingSink{}
	a := NewAutoBackup("k", time.Hour, []Sink{sink}, zerolog.Nop())

	a.Notify(domain.SampleProperties())
	a.Notify(nil)

	require.NoError(t, a.Flush(context.Background()))
	assert.Equal(t, 0, sink.count())
	assert.Nil(t, a.Status().LastBackup)
}

func TestAutoBackup_SinkFailure(t *testing.T) {
	good := &recordingSink{}
	bad := &recordingSink{err: errors.New("bucket gone")}
	a := NewAutoBackup("k", time.Hour, []Sink{bad, good}, zerolog.Nop())

	a.Notify(domain.SampleProperties())
	err := a.Flush(context.Background())

	require.Error(t, err)
	assert.Equal(t, 1, good.count(), "other sinks still run")
	st := a.Status()
	assert.Contains(t, st.LastError, "bucket gone")
	assert.Nil(t, st.LastBackup)
}

func TestAutoBackup_StopFlushesAndIgnoresLaterChanges(t *testing.T) {
	sink := &recordingSink{}
	a := NewAutoBackup("k", time.Hour, []Sink{sink}, zerolog.Nop())

	a.Notify(domain.SampleProperties())
	require.NoError(t, a.Stop(context.Background()))
	assert.Equal(t, 1, sink.count())

	a.Notify(domain.SampleProperties())
	assert.False(t, a.Status().Pending)
}

type fakeBlobs struct {
	name, contentType string
	data              []byte
}

func (f *fakeBlobs) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	f.name, f.contentType, f.data = name, contentType, data
	return "mem://" + name, nil
}

func TestBlobSink(t *testing.T) {
	blobs := &fakeBlobs{}
	snap := Snapshot{Key: "imobcontrol_data", Taken: backupTime, Payload: []byte(`{"properties":[]}`)}

	require.NoError(t, NewBlobSink(blobs).Write(context.Background(), snap))

	assert.Equal(t, "backups/imobcontrol_data/imobcontrol_backup_2025-11-02.json", blobs.name)
	assert.Equal(t, "application/json", blobs.contentType)
	assert.Equal(t, snap.Payload, blobs.data)
}

func TestManager(t *testing.T) {
	sink := &recordingSink{}
	m := NewManager(time.Hour, []Sink{sink}, zerolog.Nop())

	a := m.Attach("b")
	assert.Same(t, a, m.Attach("b"))
	m.Attach("a")
	assert.Equal(t, []string{"a", "b"}, m.Keys())

	_, ok := m.Status("missing")
	assert.False(t, ok)

	a.Notify(domain.SampleProperties())
	st, ok := m.Status("b")
	require.True(t, ok)
	assert.True(t, st.Pending)

	require.NoError(t, m.StopAll(context.Background()))
	assert.Equal(t, 1, sink.count())
	st, _ = m.Status("b")
	assert.False(t, st.Pending)
	assert.NotNil(t, st.LastBackup)
}

func TestAutoBackup_ConcurrentMutationsBackUpLatestPortfolio(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	a := NewAutoBackup("k", time.Hour, []Sink{sink}, zerolog.Nop())
	store := portfolio.NewStore(nil, nil, zerolog.Nop())
	store.Subscribe(a.Notify)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := domain.SampleProperties()[0]
			p.ID = fmt.Sprintf("p-%d", i)
			_, err := store.Add(ctx, p)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	require.NoError(t, a.Flush(ctx))
	require.Equal(t, 1, sink.count())
	backedUp := sink.last().Properties
	current := store.List()
	require.Len(t, backedUp, len(current))
	for i := range current {
		assert.Equal(t, current[i].ID, backedUp[i].ID)
	}
}
