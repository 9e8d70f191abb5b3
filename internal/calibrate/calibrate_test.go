package calibrate

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ayusman/faceaim/internal/coords"
	"github.com/ayusman/faceaim/internal/input"
)

// scriptedDriver replays a fixed list of steps and records the prompts it
// was shown.
type scriptedDriver struct {
	steps    []Step
	prompts  []Prompt
	rejected []Corner
}

func (d *scriptedDriver) Next(ctx context.Context, p Prompt) (Step, error) {
	d.prompts = append(d.prompts, p)
	if len(d.steps) == 0 {
		return Step{}, errors.New("script exhausted")
	}
	s := d.steps[0]
	d.steps = d.steps[1:]
	return s, nil
}

func (d *scriptedDriver) Rejected(c Corner) {
	d.rejected = append(d.rejected, c)
}

func confirm(x, y float64) Step {
	return Step{Action: input.Confirm, Pose: coords.Point{X: x, Y: y}}
}

func TestCorner_String(t *testing.T) {
	want := []string{"top left", "top right", "bottom right", "bottom left"}
	for i, w := range want {
		if got := Corner(i).String(); got != w {
			t.Errorf("Corner(%d).String() = %q, want %q", i, got, w)
		}
	}
}

func TestEngine(t *testing.T) {
	e := NewEngine()

	if c, ok := e.Corner(); !ok || c != TopLeft {
		t.Fatalf("Corner() = %v, %v; want top left", c, ok)
	}

	if err := e.Confirm(coords.NoFace); !errors.Is(err, ErrSampleRejected) {
		t.Errorf("Confirm(NoFace) error = %v, want ErrSampleRejected", err)
	}
	if c, _ := e.Corner(); c != TopLeft {
		t.Errorf("rejected sample advanced the engine to %v", c)
	}

	if _, err := e.Finish(0.3); !errors.Is(err, ErrIncomplete) {
		t.Errorf("Finish() early error = %v, want ErrIncomplete", err)
	}

	pts := []coords.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}
	for i, p := range pts {
		if c, _ := e.Corner(); c != Corner(i) {
			t.Fatalf("Corner() = %v, want %v", c, Corner(i))
		}
		if err := e.Confirm(p); err != nil {
			t.Fatalf("Confirm(%v) error = %v", p, err)
		}
	}

	if !e.Done() {
		t.Fatal("Done() = false after four samples")
	}
	if err := e.Confirm(coords.Point{X: 1, Y: 1}); !errors.Is(err, ErrComplete) {
		t.Errorf("Confirm() after done error = %v, want ErrComplete", err)
	}
	r, err := e.Finish(0.3)
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	if diff := cmp.Diff(pts, r.Samples[:]); diff != "" {
		t.Errorf("Samples mismatch (-want +got):\n%s", diff)
	}
	if r.Space.Width != 100 || r.Space.Height != 100 {
		t.Errorf("space = %+v, want 100x100", r.Space)
	}
	if r.DeadzoneRadius != 30 {
		t.Errorf("DeadzoneRadius = %v, want 30", r.DeadzoneRadius)
	}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name         string
		steps        []Step
		threshold    float64
		wantErr      error
		wantSpace    coords.Space
		wantDeadzone float64
		wantRejected []Corner
	}{
		{
			name: "four corners",
			steps: []Step{
				confirm(0, 0), confirm(100, 0), confirm(100, 50), confirm(0, 50),
			},
			threshold: 0.2,
			wantSpace: coords.Space{
				XMin: 0, XMax: 100, YMin: 0, YMax: 50,
				Width: 100, Height: 50, Center: coords.Point{X: 50, Y: 25},
			},
			wantDeadzone: 10,
		},
		{
			name: "idle frames and retries",
			steps: []Step{
				{Action: input.None},
				{Action: input.ToggleOverlay},
				{Action: input.Confirm, Pose: coords.NoFace},
				{Action: input.Confirm, Pose: coords.NoFace},
				confirm(0, 0),
				confirm(100, 0),
				{Action: input.None},
				{Action: input.Confirm, Pose: coords.NoFace},
				confirm(100, 100),
				confirm(0, 100),
			},
			threshold: 0.3,
			wantSpace: coords.Space{
				XMin: 0, XMax: 100, YMin: 0, YMax: 100,
				Width: 100, Height: 100, Center: coords.Point{X: 50, Y: 50},
			},
			wantDeadzone: 30,
			wantRejected: []Corner{TopLeft, TopLeft, BottomRight},
		},
		{
			name:    "quit aborts",
			steps:   []Step{confirm(0, 0), {Action: input.Quit}},
			wantErr: ErrAborted,
		},
		{
			name: "degenerate space is fatal",
			steps: []Step{
				confirm(5, 5), confirm(5, 5), confirm(5, 5), confirm(5, 5),
			},
			wantErr: coords.ErrDegenerateSpace,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &scriptedDriver{steps: tt.steps}
			r, err := Run(context.Background(), d, tt.threshold)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if diff := cmp.Diff(tt.wantSpace, r.Space, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("space mismatch (-want +got):\n%s", diff)
			}
			if r.DeadzoneRadius != tt.wantDeadzone {
				t.Errorf("DeadzoneRadius = %v, want %v", r.DeadzoneRadius, tt.wantDeadzone)
			}
			if diff := cmp.Diff(tt.wantRejected, d.rejected); diff != "" {
				t.Errorf("rejections mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRun_PromptFlagsRejection(t *testing.T) {
	d := &scriptedDriver{steps: []Step{
		{Action: input.Confirm, Pose: coords.NoFace},
		confirm(0, 0),
		confirm(10, 0),
		confirm(10, 10),
		confirm(0, 10),
	}}
	if _, err := Run(context.Background(), d, 0.3); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []Prompt{
		{Corner: TopLeft},
		{Corner: TopLeft, Rejected: true},
		{Corner: TopRight},
		{Corner: BottomRight},
		{Corner: BottomLeft},
	}
	if diff := cmp.Diff(want, d.prompts); diff != "" {
		t.Errorf("prompts mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, &scriptedDriver{}, 0.3)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
