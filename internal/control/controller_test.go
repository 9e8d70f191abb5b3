package control

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ayusman/faceaim/internal/config"
	"github.com/ayusman/faceaim/internal/coords"
	"github.com/ayusman/faceaim/internal/inject"
)

func testSpace(t *testing.T) coords.Space {
	t.Helper()
	s, err := coords.NewSpace(
		coords.Point{X: 0, Y: 0},
		coords.Point{X: 100, Y: 0},
		coords.Point{X: 100, Y: 100},
		coords.Point{X: 0, Y: 100},
	)
	if err != nil {
		t.Fatalf("NewSpace() error = %v", err)
	}
	return s
}

// testSettings gives a mouse gain of exactly 1 so a single step lands the
// pointer on its target.
func testSettings() config.Settings {
	s := config.DefaultSettings()
	s.ResX = 1000
	s.ResY = 500
	s.MouseRefreshRate = 1
	s.MoveSpeed = 1
	s.MoveSmoothing = 0
	s.StickRefreshRate = 1
	s.TurnSpeedH = 100
	s.TurnSpeedV = 100
	return s
}

func TestMailbox(t *testing.T) {
	box := NewMailbox()

	if _, ok := box.Poll(); ok {
		t.Fatal("Poll() on empty mailbox should report nothing")
	}

	box.Put(coords.Point{X: 1, Y: 1})
	box.Put(coords.Point{X: 2, Y: 2})
	box.Put(coords.Point{X: 3, Y: 3})

	p, ok := box.Poll()
	if !ok || p != (coords.Point{X: 3, Y: 3}) {
		t.Errorf("Poll() = %v, %v; want latest point (3,3)", p, ok)
	}
	if _, ok := box.Poll(); ok {
		t.Error("mailbox should hold at most one point")
	}

	box.Put(coords.NoFace)
	box.Drain()
	if _, ok := box.Poll(); ok {
		t.Error("Drain() should empty the mailbox")
	}
}

func TestMailbox_ConcurrentPutNeverBlocks(t *testing.T) {
	box := NewMailbox()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				box.Put(coords.Point{X: float64(i), Y: float64(j)})
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Put() blocked")
	}
}

func TestMouse_Step(t *testing.T) {
	space := testSpace(t)
	rec := inject.NewRecorder(0, 0)
	box := NewMailbox()
	m := NewMouse(space, testSettings(), box, rec)

	t.Run("no movement before the first point", func(t *testing.T) {
		m.step()
		if rec.Len() != 0 {
			t.Errorf("moves = %d, want 0", rec.Len())
		}
		if st := m.State(); st.Moving || st.Target != space.Center {
			t.Errorf("State() = %+v, want idle at center", st)
		}
	})

	t.Run("moves toward mapped target", func(t *testing.T) {
		box.Put(coords.Point{X: 50, Y: 50})
		m.step()

		moves := rec.Moves()
		if len(moves) != 1 {
			t.Fatalf("moves = %d, want 1", len(moves))
		}
		// (50,50) maps to (500,250) on a 1000x500 screen.
		if moves[0].DX != 500 || moves[0].DY != 250 {
			t.Errorf("move = (%d,%d), want (500,250)", moves[0].DX, moves[0].DY)
		}
	})

	t.Run("on target emits nothing", func(t *testing.T) {
		rec.Reset()
		m.step()
		if rec.Len() != 0 {
			t.Errorf("moves = %d, want 0", rec.Len())
		}
	})

	t.Run("empty mailbox keeps the prior target", func(t *testing.T) {
		rec.Reset()
		rec.SetPosition(0, 0)
		m.step()
		moves := rec.Moves()
		if len(moves) != 1 || moves[0].DX != 500 || moves[0].DY != 250 {
			t.Errorf("moves = %+v, want one move of (500,250)", moves)
		}
	})

	t.Run("vertical axis uses vertical resolution", func(t *testing.T) {
		rec.Reset()
		rec.SetPosition(0, 0)
		box.Put(coords.Point{X: 100, Y: 100})
		m.step()
		moves := rec.Moves()
		if len(moves) != 1 || moves[0].DX != 1000 || moves[0].DY != 500 {
			t.Errorf("moves = %+v, want one move of (1000,500)", moves)
		}
	})

	t.Run("no face stops movement", func(t *testing.T) {
		rec.Reset()
		rec.SetPosition(0, 0)
		box.Put(coords.NoFace)
		for i := 0; i < 3; i++ {
			m.step()
		}
		if rec.Len() != 0 {
			t.Errorf("moves = %d after no-face, want 0", rec.Len())
		}
		if st := m.State(); st.Moving || st.Target != space.Center {
			t.Errorf("State() = %+v, want idle at center", st)
		}
	})
}

func TestMouse_SmoothingLagsTarget(t *testing.T) {
	s := testSettings()
	s.MoveSmoothing = 4
	rec := inject.NewRecorder(0, 0)
	box := NewMailbox()
	m := NewMouse(testSpace(t), s, box, rec)

	box.Put(coords.Point{X: 100, Y: 100})
	m.step()

	// First sample averaged with four zeros.
	moves := rec.Moves()
	if len(moves) != 1 || moves[0].DX != 200 || moves[0].DY != 100 {
		t.Errorf("moves = %+v, want one move of (200,100)", moves)
	}
}

func TestStick_Step(t *testing.T) {
	space := testSpace(t)
	deadzone := space.DeadzoneRadius(0.1) // 10

	tests := []struct {
		name   string
		point  coords.Point
		wantDX int
		wantDY int
		moves  bool
	}{
		{name: "center", point: coords.Point{X: 50, Y: 50}},
		{name: "inside deadzone", point: coords.Point{X: 55, Y: 50}},
		{name: "on deadzone edge", point: coords.Point{X: 60, Y: 50}},
		{name: "right", point: coords.Point{X: 70, Y: 50}, wantDX: 20, moves: true},
		{name: "up", point: coords.Point{X: 50, Y: 10}, wantDY: -40, moves: true},
		{name: "down left", point: coords.Point{X: 30, Y: 90}, wantDX: -20, wantDY: 40, moves: true},
		{name: "no face", point: coords.NoFace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := inject.NewRecorder(0, 0)
			box := NewMailbox()
			c := NewStick(space, deadzone, testSettings(), box, rec)

			box.Put(tt.point)
			c.step()

			moves := rec.Moves()
			if !tt.moves {
				if len(moves) != 0 {
					t.Errorf("moves = %+v, want none", moves)
				}
				return
			}
			if len(moves) != 1 {
				t.Fatalf("moves = %d, want 1", len(moves))
			}
			if moves[0].DX != tt.wantDX || moves[0].DY != tt.wantDY {
				t.Errorf("move = (%d,%d), want (%d,%d)", moves[0].DX, moves[0].DY, tt.wantDX, tt.wantDY)
			}
		})
	}
}

func TestStick_HeldDeflectionKeepsTurning(t *testing.T) {
	space := testSpace(t)
	rec := inject.NewRecorder(0, 0)
	box := NewMailbox()
	c := NewStick(space, 10, testSettings(), box, rec)

	box.Put(coords.Point{X: 70, Y: 50})
	for i := 0; i < 5; i++ {
		c.step()
	}
	if rec.Len() != 5 {
		t.Errorf("moves = %d, want one per cycle (5)", rec.Len())
	}

	rec.Reset()
	box.Put(coords.NoFace)
	c.step()
	c.step()
	if rec.Len() != 0 {
		t.Errorf("moves after no-face = %d, want 0", rec.Len())
	}
	if st := c.State(); st.Moving || st.Target != space.Center {
		t.Errorf("State() = %+v, want idle at center", st)
	}
}

func TestRunEvery(t *testing.T) {
	stop := make(chan struct{})
	var steps atomic.Int32
	done := make(chan struct{})

	go func() {
		runEvery(5*time.Millisecond, stop, func() { steps.Add(1) })
		close(done)
	}()

	time.Sleep(60 * time.Millisecond)
	close(stop)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runEvery did not return after stop")
	}

	n := steps.Load()
	if n < 2 {
		t.Errorf("steps = %d, want at least 2", n)
	}
	// A 5ms cadence over 60ms cannot run much more than a dozen times.
	if n > 30 {
		t.Errorf("steps = %d, cadence not respected", n)
	}
}

func TestRunEvery_StopBeforeFirstCycle(t *testing.T) {
	stop := make(chan struct{})
	close(stop)

	called := false
	runEvery(time.Millisecond, stop, func() { called = true })
	if called {
		t.Error("step should not run once stop is closed")
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"mouse", "stick"} {
		m, err := ParseMode(s)
		if err != nil || m.String() != s {
			t.Errorf("ParseMode(%q) = %v, %v", s, m, err)
		}
	}
	if _, err := ParseMode("joystick"); err == nil {
		t.Error("ParseMode(joystick) should fail")
	}
	if ModeMouse.Other() != ModeStick || ModeStick.Other() != ModeMouse {
		t.Error("Other() should toggle between mouse and stick")
	}
}

func TestSupervisor_StopWithoutStartIsNoop(t *testing.T) {
	sup := NewSupervisor(func(Mode) Controller {
		t.Fatal("factory should not be called")
		return nil
	})
	sup.Stop()
	sup.Stop()
	if _, ok := sup.Mode(); ok {
		t.Error("Mode() should report nothing running")
	}
	if _, ok := sup.State(); ok {
		t.Error("State() should report nothing running")
	}
}

func TestSupervisor_StartTwice(t *testing.T) {
	space := testSpace(t)
	box := NewMailbox()
	rec := inject.NewRecorder(0, 0)
	sup := NewSupervisor(func(m Mode) Controller {
		return NewStick(space, 10, testSettings(), box, rec)
	})
	defer sup.Stop()

	if err := sup.Start(ModeStick); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := sup.Start(ModeStick); !errors.Is(err, ErrRunning) {
		t.Errorf("second Start() error = %v, want ErrRunning", err)
	}
}

func TestSupervisor_SwitchIsABarrier(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}

	space := testSpace(t)
	s := testSettings()
	s.MouseRefreshRate = 1000
	s.StickRefreshRate = 1000
	s.MoveSpeed = 100

	box := NewMailbox()
	rec := inject.NewRecorder(0, 0)

	var built []Mode
	sup := NewSupervisor(func(m Mode) Controller {
		built = append(built, m)
		if m == ModeMouse {
			return NewMouse(space, s, box, rec.Tagged("mouse"))
		}
		return NewStick(space, 10, s, box, rec.Tagged("stick"))
	})

	// Keep feeding a deflected point that moves both controllers.
	feedStop := make(chan struct{})
	feedDone := make(chan struct{})
	go func() {
		defer close(feedDone)
		flip := false
		for {
			select {
			case <-feedStop:
				return
			default:
			}
			if flip {
				box.Put(coords.Point{X: 90, Y: 90})
			} else {
				box.Put(coords.Point{X: 10, Y: 10})
			}
			flip = !flip
			time.Sleep(time.Millisecond)
		}
	}()

	if err := sup.Start(ModeMouse); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	if got := sup.Switch(); got != ModeStick {
		t.Fatalf("Switch() = %v, want stick", got)
	}
	if m, _ := sup.Mode(); m != ModeStick {
		t.Errorf("Mode() = %v, want stick", m)
	}
	time.Sleep(30 * time.Millisecond)

	start := time.Now()
	sup.Stop()
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Stop() took %v, want within a few cycles", elapsed)
	}

	close(feedStop)
	<-feedDone

	if len(built) != 2 || built[0] != ModeMouse || built[1] != ModeStick {
		t.Errorf("built = %v, want [mouse stick]", built)
	}

	moves := rec.Moves()
	sawStick := false
	var mouseMoves, stickMoves int
	for _, mv := range moves {
		switch mv.Source {
		case "mouse":
			mouseMoves++
			if sawStick {
				t.Fatal("mouse controller moved after stick controller started")
			}
		case "stick":
			stickMoves++
			sawStick = true
		}
	}
	if mouseMoves == 0 || stickMoves == 0 {
		t.Errorf("mouse moves = %d, stick moves = %d; want both active in turn", mouseMoves, stickMoves)
	}

	// Nothing runs after Stop.
	n := rec.Len()
	time.Sleep(20 * time.Millisecond)
	if rec.Len() != n {
		t.Error("moves recorded after Stop()")
	}
}
