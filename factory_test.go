package embedview

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/embedview/backend"
	"github.com/gogpu/embedview/internal/gpu"
)

// newNoopFactory returns a headless factory on the noop backend, closed at
// the end of the test.
func newNoopFactory(t *testing.T, opts ...Option) *Factory {
	t.Helper()
	opts = append([]Option{WithBackend(backend.Noop), WithOffscreenDrawables()}, opts...)
	f := NewFactory(opts...)
	t.Cleanup(f.Close)
	return f
}

func TestFactoryLazyInit(t *testing.T) {
	f := newNoopFactory(t)
	if f.Ready() {
		t.Error("Ready() before first Create, want false")
	}
	if f.InitErr() != nil {
		t.Errorf("InitErr() before first Create = %v, want nil", f.InitErr())
	}

	f.Create(1, nil, LayoutHint{})
	if !f.Ready() {
		t.Fatalf("Ready() after Create = false: %v", f.InitErr())
	}
}

func TestCreateDuplicateReusesView(t *testing.T) {
	f := newNoopFactory(t)

	first := f.Create(7, "first", LayoutHint{Width: 16, Height: 9})
	second := f.Create(7, "second", LayoutHint{Width: 100, Height: 100})

	if first != second {
		t.Fatal("duplicate Create returned a different view")
	}
	if f.Len() != 1 {
		t.Errorf("Len() = %d, want 1", f.Len())
	}
	if second.Args() != "first" {
		t.Errorf("Args() = %v, want %q", second.Args(), "first")
	}
	if w, h := second.Surface().Size(); w != 16 || h != 9 {
		t.Errorf("size = %dx%d, want 16x9", w, h)
	}
}

func TestCreateConcurrentSameIDs(t *testing.T) {
	f := newNoopFactory(t)

	const goroutines = 16
	const ids = 4
	got := make([][ids]*View, goroutines)

	var wg sync.WaitGroup
	for g := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range ids {
				got[g][id] = f.Create(int64(id), nil, LayoutHint{})
			}
		}()
	}
	wg.Wait()

	if f.Len() != ids {
		t.Fatalf("Len() = %d, want %d", f.Len(), ids)
	}
	for g := 1; g < goroutines; g++ {
		if got[g] != got[0] {
			t.Fatalf("goroutine %d saw different views than goroutine 0", g)
		}
	}
}

func TestInitFailureNeverSubmits(t *testing.T) {
	f := NewFactory(WithDeviceProvider(NullDeviceHandle{}), WithOffscreenDrawables())
	t.Cleanup(f.Close)

	v := f.Create(1, nil, LayoutHint{Width: 800, Height: 600})
	if f.Ready() {
		t.Fatal("factory Ready with a null device")
	}
	var ie *gpu.InitError
	if !errors.As(f.InitErr(), &ie) {
		t.Fatalf("InitErr() = %v, want *gpu.InitError", f.InitErr())
	}
	if ie.Stage != gpu.StageProvider {
		t.Errorf("Stage = %q, want %q", ie.Stage, gpu.StageProvider)
	}
	if v.Offscreen() != nil {
		t.Error("offscreen source attached without a device")
	}

	for i := 0; i < 100; i++ {
		if v.Tick() {
			t.Fatalf("tick %d submitted a frame", i)
		}
	}
	st := v.Stats()
	if st.Submitted != 0 {
		t.Errorf("Submitted = %d, want 0", st.Submitted)
	}
	if st.Skipped[SkipUncompiled] != 100 {
		t.Errorf("Skipped[Uncompiled] = %d, want 100", st.Skipped[SkipUncompiled])
	}

	// Layout still works without a GPU.
	if !f.OnLayoutChanged(1, 10, 10) {
		t.Error("OnLayoutChanged on a live view returned false")
	}
}

func TestInitNotRetried(t *testing.T) {
	var calls atomic.Int32
	f := NewFactory(WithInstanceFactory(countingInstances{calls: &calls}))
	t.Cleanup(f.Close)

	f.Create(1, nil, LayoutHint{})
	f.Create(2, nil, LayoutHint{})
	f.Create(1, nil, LayoutHint{})

	if got := calls.Load(); got != 1 {
		t.Errorf("instance factory called %d times, want 1", got)
	}
	if f.Ready() {
		t.Error("factory Ready after a failed instance")
	}
}

func TestLayoutReachesDrawable(t *testing.T) {
	f := newNoopFactory(t)
	v := f.Create(0, nil, LayoutHint{})

	if !f.OnLayoutChanged(0, 800, 600) {
		t.Fatal("OnLayoutChanged returned false for a live view")
	}
	if !v.Tick() {
		t.Fatalf("no frame after layout: %v", v.Stats())
	}
	if w, h := v.Offscreen().Size(); w != 800 || h != 600 {
		t.Errorf("drawable size = %dx%d, want 800x600", w, h)
	}
	if v.Offscreen().Presented() != 1 {
		t.Errorf("Presented = %d, want 1", v.Offscreen().Presented())
	}
}

func TestOnLayoutChangedUnknownView(t *testing.T) {
	f := newNoopFactory(t)
	if f.OnLayoutChanged(42, 100, 100) {
		t.Error("OnLayoutChanged for an unknown id returned true")
	}
}

func TestZeroSizeNoSubmissionsUntilLayout(t *testing.T) {
	f := newNoopFactory(t)
	v := f.Create(3, nil, LayoutHint{})

	for i := 0; i < 10; i++ {
		if v.Tick() {
			t.Fatal("zero-size view submitted a frame")
		}
	}
	if st := v.Stats(); st.Submitted != 0 || st.Skipped[SkipNoDrawable] != 10 {
		t.Errorf("stats = %v, want 0 submitted and 10 NoDrawable", st)
	}

	f.OnLayoutChanged(3, 64, 48)
	if !v.Tick() {
		t.Fatalf("no frame after nonzero layout: %v", v.Stats())
	}
}

func TestReleaseView(t *testing.T) {
	f := newNoopFactory(t)
	v := f.Create(5, nil, LayoutHint{Width: 32, Height: 32})
	v.Tick()

	if !f.Release(5) {
		t.Fatal("Release of a live view returned false")
	}
	if f.Release(5) {
		t.Error("second Release returned true")
	}
	if f.Len() != 0 {
		t.Errorf("Len() = %d, want 0", f.Len())
	}
	if _, ok := f.View(5); ok {
		t.Error("View() found a released view")
	}
	if v.Tick() {
		t.Error("released view submitted a frame")
	}
	if !f.Ready() {
		t.Error("releasing a view closed the shared context")
	}

	// The id can be reused for a fresh view.
	again := f.Create(5, nil, LayoutHint{Width: 32, Height: 32})
	if again == v {
		t.Error("Create after Release returned the released view")
	}
	if !again.Tick() {
		t.Errorf("new view did not draw: %v", again.Stats())
	}
}

func TestIDsSorted(t *testing.T) {
	f := newNoopFactory(t)
	for _, id := range []int64{9, -1, 4, 0} {
		f.Create(id, nil, LayoutHint{})
	}
	got := f.IDs()
	want := []int64{-1, 0, 4, 9}
	if len(got) != len(want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("IDs() = %v, want %v", got, want)
		}
	}
}

func TestFactoryClose(t *testing.T) {
	f := NewFactory(WithBackend(backend.Noop), WithOffscreenDrawables())
	v := f.Create(1, nil, LayoutHint{Width: 16, Height: 16})
	v.Tick()

	f.Close()
	f.Close()

	if f.Len() != 0 {
		t.Errorf("Len() after Close = %d, want 0", f.Len())
	}
	if f.Ready() {
		t.Error("Ready() after Close, want false")
	}
	if v.Tick() {
		t.Error("view drew after factory Close")
	}

	late := f.Create(2, nil, LayoutHint{Width: 16, Height: 16})
	if late == nil {
		t.Fatal("Create after Close returned nil")
	}
	if late.Tick() {
		t.Error("view created after Close drew a frame")
	}
	if f.Len() != 0 {
		t.Error("Create after Close registered a view")
	}
}

func TestCreateAfterCloseOpensNoDevice(t *testing.T) {
	var calls atomic.Int32
	f := NewFactory(WithInstanceFactory(countingInstances{calls: &calls}))
	f.Close()

	v := f.Create(1, nil, LayoutHint{Width: 16, Height: 16})
	if got := calls.Load(); got != 0 {
		t.Errorf("instance factory called %d times after Close, want 0", got)
	}
	if v.Tick() {
		t.Error("view created after Close drew a frame")
	}
	if got := v.Stats().Skipped[SkipUncompiled]; got != 1 {
		t.Errorf("Skipped[Uncompiled] = %d, want 1", got)
	}
}

func TestCreateAfterCloseNoopBackend(t *testing.T) {
	f := NewFactory(WithBackend(backend.Noop), WithOffscreenDrawables())
	f.Close()

	v := f.Create(1, nil, LayoutHint{Width: 16, Height: 16})
	if f.Ready() {
		t.Fatal("Create after Close opened a GPU context")
	}
	if v.Offscreen() != nil {
		t.Error("offscreen source attached after Close")
	}
	f.Close()
	if f.Ready() {
		t.Error("Ready() after second Close, want false")
	}
	v.release()
}

func TestViewsPhaseShiftedByID(t *testing.T) {
	f := newNoopFactory(t)
	now := time.Unix(1_700_000_000, 250_000_000)
	a := f.Create(0, nil, LayoutHint{Width: 8, Height: 8})
	b := f.Create(1, nil, LayoutHint{Width: 8, Height: 8})

	if !a.Draw(now) || !b.Draw(now) {
		t.Fatal("views did not draw")
	}
	ta := gpu.Angles(Seconds(now), a.ID())
	tb := gpu.Angles(Seconds(now), b.ID())
	if d := tb[0] - ta[0]; d < 1-1e-9 || d > 1+1e-9 {
		t.Errorf("phase difference = %v, want 1.0", d)
	}
}

// countingInstances fails every CreateInstance and counts the calls.
type countingInstances struct {
	calls *atomic.Int32
}

func (c countingInstances) CreateInstance(*hal.InstanceDescriptor) (hal.Instance, error) {
	c.calls.Add(1)
	return nil, errors.New("no device")
}
