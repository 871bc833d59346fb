package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldscan/tankmove/internal/api"
	"github.com/fieldscan/tankmove/internal/geo"
	"github.com/fieldscan/tankmove/internal/lifecycle"
	"github.com/fieldscan/tankmove/internal/queue"
	"github.com/fieldscan/tankmove/internal/testutil"
)

// fakeAuthority is a scriptable Authority for fault injection.
type fakeAuthority struct {
	mu        sync.Mutex
	snapshot  *api.Snapshot
	fetchErr  error
	fetchN    int
	postErrs  []error // consumed per call; exhausted means success
	posts     []postRecord
	postBlock chan struct{} // when set, PostMovement waits on it
}

type postRecord struct {
	body  string
	token string
}

func (f *fakeAuthority) FetchStatuses(ctx context.Context) (*api.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchN++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.snapshot, nil
}

func (f *fakeAuthority) PostMovement(ctx context.Context, body json.RawMessage, token string) error {
	f.mu.Lock()
	block := f.postBlock
	f.mu.Unlock()
	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, postRecord{body: string(body), token: token})
	if len(f.postErrs) == 0 {
		return nil
	}
	err := f.postErrs[0]
	f.postErrs = f.postErrs[1:]
	return err
}

func (f *fakeAuthority) postCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.posts)
}

// netErr fabricates the transport-level failure shape the real client
// produces when the host is unreachable.
func netErr() error {
	return &url.Error{Op: "Post", URL: "http://example.invalid/api/movements", Err: errors.New("connect: connection refused")}
}

func serverErr(status int) error {
	return &api.ServerError{Endpoint: "/api/movements", StatusCode: status, Body: "nope"}
}

func testSnapshot() *api.Snapshot {
	return &api.Snapshot{
		Statuses: map[lifecycle.State][]string{
			lifecycle.StateAvailable:     {"B01", "B03"},
			lifecycle.StateInUse:         {"B02"},
			lifecycle.StateRetrieved:     {},
			lifecycle.StateToBeDiscarded: {"B09"},
			lifecycle.StateDiscarded:     {"B99"},
		},
		UpdatedAt: "2025-11-04T09:30:00Z",
	}
}

var (
	refPoint  = geo.Coordinate{Lat: 35.0, Lng: 139.0}
	fixedTime = time.Date(2025, 11, 4, 9, 30, 0, 0, time.UTC)
)

// point returns a coordinate roughly meters east of refPoint.
func point(meters float64) *geo.Coordinate {
	// ~91 km per degree of longitude at 35° latitude.
	c := geo.Coordinate{Lat: refPoint.Lat, Lng: refPoint.Lng + meters/91000.0}
	return &c
}

func newTestSession(t *testing.T, auth *fakeAuthority, opts ...Option) *Session {
	t.Helper()
	q, err := queue.Open(filepath.Join(t.TempDir(), "queue.db"))
	require.NoError(t, err)
	t.Cleanup(func() { q.Close() })

	base := []Option{
		WithGeofence(Geofence{Reference: refPoint, RadiusMeters: 50}),
		WithClock(testutil.NewManualClock(fixedTime).Now),
		WithBatchIDFunc(func() string { return "batch-0001" }),
		WithLocationProvider(StaticLocation(refPoint)),
	}
	s := New(auth, q, append(base, opts...)...)
	s.SetToken("tok-abc")
	return s
}

func readySession(t *testing.T, auth *fakeAuthority, opts ...Option) *Session {
	t.Helper()
	s := newTestSession(t, auth, opts...)
	require.NoError(t, s.RefreshSnapshot(context.Background()))
	return s
}

func TestRefreshSnapshot_Success(t *testing.T) {
	auth := &fakeAuthority{snapshot: testSnapshot()}
	s := newTestSession(t, auth)

	assert.Equal(t, PhaseIdle, s.Phase())
	require.NoError(t, s.RefreshSnapshot(context.Background()))
	assert.Equal(t, PhaseReady, s.Phase())
	assert.Equal(t, "2025-11-04T09:30:00Z", s.Snapshot().UpdatedAt)
	assert.Empty(t, s.StatusMessage())
}

func TestRefreshSnapshot_FailureKeepsPreviousSnapshot(t *testing.T) {
	auth := &fakeAuthority{snapshot: testSnapshot()}
	s := readySession(t, auth)

	auth.mu.Lock()
	auth.fetchErr = netErr()
	auth.mu.Unlock()

	err := s.RefreshSnapshot(context.Background())
	require.Error(t, err)
	assert.Equal(t, PhaseError, s.Phase())
	assert.Contains(t, s.StatusMessage(), "failed to fetch tank statuses")

	// Stale-but-available beats unavailable.
	require.NotNil(t, s.Snapshot())
	assert.Equal(t, "2025-11-04T09:30:00Z", s.Snapshot().UpdatedAt)
}

func TestRecordScan_RequiresSnapshot(t *testing.T) {
	s := newTestSession(t, &fakeAuthority{snapshot: testSnapshot()})

	err := s.RecordScan("B03", nil)
	assert.ErrorIs(t, err, ErrSnapshotNotLoaded)
	assert.Empty(t, s.Pending())
}

func TestRecordScan_UnknownTank(t *testing.T) {
	s := readySession(t, &fakeAuthority{snapshot: testSnapshot()})

	err := s.RecordScan("B77", nil)
	var ue *UnknownTankError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "B77", ue.TankID)
	assert.Empty(t, s.Pending())
	assert.Empty(t, s.Log())
}

func TestRecordScan_NormalTransition(t *testing.T) {
	s := readySession(t, &fakeAuthority{snapshot: testSnapshot()})
	s.SetOperation(lifecycle.OpUse)

	// Normal transitions bypass the geofence: nil location is fine.
	require.NoError(t, s.RecordScan("B03", nil))

	assert.Equal(t, []string{"B03"}, s.Pending())

	log := s.Log()
	require.Len(t, log, 1)
	assert.Equal(t, "B03", log[0].TankID)
	assert.Equal(t, lifecycle.StateAvailable, log[0].From)
	assert.Equal(t, lifecycle.StateInUse, log[0].To)
	assert.True(t, log[0].Normal)
	assert.Equal(t, fixedTime, log[0].Time)
}

func TestRecordScan_NormalizesScannedID(t *testing.T) {
	s := readySession(t, &fakeAuthority{snapshot: testSnapshot()})
	s.SetOperation(lifecycle.OpUse)

	require.NoError(t, s.RecordScan("ｂ０３", nil))
	assert.Equal(t, []string{"B03"}, s.Pending())
}

func TestRecordScan_InvalidTransition(t *testing.T) {
	s := readySession(t, &fakeAuthority{snapshot: testSnapshot()})
	s.SetOperation(lifecycle.OpUse)

	// B99 is Discarded; Discarded is absorbing.
	err := s.RecordScan("B99", nil)
	assert.True(t, lifecycle.IsInvalidTransition(err))
	assert.Empty(t, s.Pending())
	assert.Empty(t, s.Log())
}

func TestRecordScan_ExceptionalWithinRadius(t *testing.T) {
	s := readySession(t, &fakeAuthority{snapshot: testSnapshot()})
	s.SetOperation(lifecycle.OpRetrieve)

	// Available→Retrieved is exceptional; 30m from reference, radius 50m.
	require.NoError(t, s.RecordScan("B03", point(30)))

	log := s.Log()
	require.Len(t, log, 1)
	assert.False(t, log[0].Normal)
	assert.Equal(t, "Available→Retrieved", log[0].ExceptionKind)
}

func TestRecordScan_ExceptionalOutsideRadiusDenied(t *testing.T) {
	s := readySession(t, &fakeAuthority{snapshot: testSnapshot()})
	s.SetOperation(lifecycle.OpRetrieve)

	err := s.RecordScan("B03", point(80))
	require.Error(t, err)
	assert.True(t, IsGeofenceDenied(err))

	var ge *GeofenceDeniedError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "Available→Retrieved", ge.ExceptionKind)
	assert.Greater(t, ge.DistanceMeters, 50.0)

	assert.Empty(t, s.Pending())
	assert.Empty(t, s.Log(), "log must be unchanged on rejection")
}

func TestRecordScan_ExceptionalWithoutLocationDenied(t *testing.T) {
	s := readySession(t, &fakeAuthority{snapshot: testSnapshot()})
	s.SetOperation(lifecycle.OpRetrieve)

	err := s.RecordScan("B03", nil)
	assert.True(t, IsGeofenceDenied(err))
}

func TestRecordScan_DuplicateScanCoalesced(t *testing.T) {
	s := readySession(t, &fakeAuthority{snapshot: testSnapshot()})
	s.SetOperation(lifecycle.OpUse)

	require.NoError(t, s.RecordScan("B03", nil))
	require.NoError(t, s.RecordScan("B03", nil))

	assert.Equal(t, []string{"B03"}, s.Pending())
	assert.Len(t, s.Log(), 1)
}

func TestTransitionLog_CapAndOrder(t *testing.T) {
	s := readySession(t, &fakeAuthority{snapshot: testSnapshot()}, WithLogCap(2))
	s.SetOperation(lifecycle.OpUse)

	require.NoError(t, s.RecordScan("B01", nil))
	require.NoError(t, s.RecordScan("B03", nil))

	s.SetOperation(lifecycle.OpRetrieve)
	require.NoError(t, s.RecordScan("B02", nil)) // InUse→Retrieved, normal

	log := s.Log()
	require.Len(t, log, 2, "log is capped")
	assert.Equal(t, "B02", log[0].TankID, "most recent first")
	assert.Equal(t, "B03", log[1].TankID)

	last := s.LastTransition()
	require.NotNil(t, last)
	assert.Equal(t, "B02", last.TankID)
}
