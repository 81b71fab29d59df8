// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package command

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GermanBionicSystems/einkserver/monoimage"
	"github.com/GermanBionicSystems/einkserver/render"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

type call struct {
	name string
	c    image1bit.Bit
	img  []byte
}

type fakePanel struct {
	mu      sync.Mutex
	calls   []call
	err     error
	delay   time.Duration
	busy    int32
	overlap atomic.Bool
}

func (f *fakePanel) record(c call) error {
	if atomic.AddInt32(&f.busy, 1) != 1 {
		f.overlap.Store(true)
	}
	time.Sleep(f.delay)
	atomic.AddInt32(&f.busy, -1)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.err
}

func (f *fakePanel) Init() error                     { return f.record(call{name: "Init"}) }
func (f *fakePanel) InitFast() error                 { return f.record(call{name: "InitFast"}) }
func (f *fakePanel) Clear(c image1bit.Bit) error     { return f.record(call{name: "Clear", c: c}) }
func (f *fakePanel) Display(img []byte) error        { return f.record(call{name: "Display", img: img}) }
func (f *fakePanel) DisplayFast(img []byte) error    { return f.record(call{name: "DisplayFast", img: img}) }
func (f *fakePanel) DisplayBase(img []byte) error    { return f.record(call{name: "DisplayBase", img: img}) }
func (f *fakePanel) DisplayPartial(img []byte) error { return f.record(call{name: "DisplayPartial", img: img}) }
func (f *fakePanel) Sleep() error                    { return f.record(call{name: "Sleep"}) }

func (f *fakePanel) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.name)
	}
	return out
}

type fakeMirror struct {
	frames [][]byte
}

func (m *fakeMirror) Show(img *monoimage.HorizontalMSB) error {
	m.frames = append(m.frames, append([]byte(nil), img.Bytes()...))
	return nil
}

var _ Panel = (*fakePanel)(nil)

func newRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	r, err := render.New(122, 250, &render.Opts{Face: render.FaceBasic, Margin: 6, Border: true})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *fakePanel, *fakeMirror, *render.Renderer) {
	p := &fakePanel{}
	m := &fakeMirror{}
	r := newRenderer(t)
	return New(p, r, &Opts{Logger: discard(), Mirrors: []Mirror{m}}), p, m, r
}

var allowCall = cmp.AllowUnexported(call{})

func TestExecute(t *testing.T) {
	r := newRenderer(t)
	frame := func(s string) []byte { return r.Frame(s).Bytes() }

	for _, tc := range []struct {
		line string
		want []call
		out  string
	}{
		{line: "", want: nil},
		{line: "   ", want: nil},
		{line: "init", want: []call{{name: "Init"}}},
		{line: "init fast", want: []call{{name: "InitFast"}}},
		{line: "INIT", want: []call{{name: "Init"}}},
		{line: "clear", want: []call{{name: "Clear", c: image1bit.On}}},
		{line: "clear white", want: []call{{name: "Clear", c: image1bit.On}}},
		{line: "clear black", want: []call{{name: "Clear", c: image1bit.Off}}},
		{line: "text hello world", want: []call{{name: "Display", img: frame("hello world")}}},
		{line: `text "a   b"`, want: []call{{name: "Display", img: frame("a   b")}}},
		{line: "text", want: []call{{name: "Display", img: frame("")}}},
		{line: "fast hi", want: []call{{name: "DisplayFast", img: frame("hi")}}},
		{line: "base hi", want: []call{{name: "DisplayBase", img: frame("hi")}}},
		{line: "partial 12:00", want: []call{{name: "DisplayPartial", img: frame("12:00")}}},
		{line: "sleep", want: []call{{name: "Sleep"}}},
		{line: "help", out: usage},
	} {
		t.Run(tc.line, func(t *testing.T) {
			d, p, _, _ := newTestDispatcher(t)
			out, err := d.Execute(tc.line)
			if err != nil {
				t.Fatal(err)
			}
			if out != tc.out {
				t.Errorf("Execute(%q) = %q, want %q", tc.line, out, tc.out)
			}
			if diff := cmp.Diff(tc.want, p.calls, allowCall, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("calls difference (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExecuteErrors(t *testing.T) {
	for _, line := range []string{
		"init slow",
		"init fast now",
		"clear grey",
		"clear white black",
		"sleep now",
		`text "unterminated`,
	} {
		t.Run(line, func(t *testing.T) {
			d, p, _, _ := newTestDispatcher(t)
			if _, err := d.Execute(line); err == nil {
				t.Fatal("expected error")
			}
			if len(p.calls) != 0 {
				t.Errorf("panel called: %v", p.calls)
			}
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	d, _, _, _ := newTestDispatcher(t)
	_, err := d.Execute("rotate 90")
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("Execute() error = %v, want ErrUnknownCommand", err)
	}
	if got, want := err.Error(), "rotate: unknown command"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestPanelError(t *testing.T) {
	d, p, m, _ := newTestDispatcher(t)
	boom := errors.New("boom")
	p.err = boom

	_, err := d.Execute("partial hi")
	if !errors.Is(err, boom) {
		t.Fatalf("Execute() error = %v, want %v", err, boom)
	}
	if got, want := err.Error(), "partial: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if len(m.frames) != 0 {
		t.Errorf("mirrored %d frames after a failure", len(m.frames))
	}
	if got, want := d.reply("partial hi"), "error: partial: boom"; got != want {
		t.Errorf("reply() = %q, want %q", got, want)
	}
}

func TestMirror(t *testing.T) {
	d, _, m, r := newTestDispatcher(t)
	for _, line := range []string{"init", "clear black", "text hi", "sleep"} {
		if _, err := d.Execute(line); err != nil {
			t.Fatal(err)
		}
	}
	want := [][]byte{make([]byte, 4000), r.Frame("hi").Bytes()}
	if diff := cmp.Diff(want, m.frames); diff != "" {
		t.Errorf("mirrored frames difference (-want +got):\n%s", diff)
	}
}

func TestReply(t *testing.T) {
	d, _, _, _ := newTestDispatcher(t)
	for _, tc := range []struct {
		line, want string
	}{
		{"init", "ok"},
		{"", "ok"},
		{"help", "ok " + usage},
		{"nope", "error: nope: unknown command"},
	} {
		if got := d.reply(tc.line); got != tc.want {
			t.Errorf("reply(%q) = %q, want %q", tc.line, got, tc.want)
		}
	}
}

func TestSerialized(t *testing.T) {
	d, p, _, _ := newTestDispatcher(t)
	p.delay = time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				if _, err := d.Execute("text x"); err != nil {
					t.Error(err)
				}
			}
		}()
	}
	wg.Wait()

	if p.overlap.Load() {
		t.Error("panel calls overlapped")
	}
	if len(p.calls) != 40 {
		t.Errorf("got %d calls, want 40", len(p.calls))
	}
}
