package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
)

const orbitYAML = `
clips:
  - name: orbit
    curves:
      - path: planet
        kind: translation
        timestamps: [0, 1, 2]
        values: [[0, 0, 0], [1, 0, 0], [2, 0, 0]]
      - path: planet/orbit_controller
        kind: rotation
        degrees: true
        timestamps: [0, 4]
        axis_angles: [[0, 1, 0, 0], [0, 1, 0, 180]]
  - curves:
      - path: ""
        kind: scale
        interpolation: step
        timestamps: [0, 0.5]
        values: [[1, 1, 1], [2, 2, 2]]
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestFormatForPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"a/walk.yaml", FormatYAML, true},
		{"walk.YML", FormatYAML, true},
		{"scene.gltf", FormatGLTF, true},
		{"scene.glb", FormatGLB, true},
		{"notes.txt", 0, false},
	}
	for _, tt := range tests {
		got, err := FormatForPath(tt.path)
		if tt.ok != (err == nil) {
			t.Fatalf("FormatForPath(%q) err = %v", tt.path, err)
		}
		if !tt.ok && !errors.Is(err, ErrUnsupportedFormat) {
			t.Fatalf("FormatForPath(%q) err = %v, want ErrUnsupportedFormat", tt.path, err)
		}
		if tt.ok && got != tt.want {
			t.Fatalf("FormatForPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestLoadReaderYAML(t *testing.T) {
	l := NewLoader()
	clips, err := l.LoadReader("solar", strings.NewReader(orbitYAML), FormatYAML)
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	if len(clips) != 2 {
		t.Fatalf("got %d clips, want 2", len(clips))
	}

	orbit := l.Get("orbit")
	if orbit == nil || orbit != clips[0] {
		t.Fatalf("orbit clip not cached")
	}
	if orbit.Duration() != 4 {
		t.Fatalf("orbit duration = %v, want 4", orbit.Duration())
	}
	if orbit.CurveCount() != 2 {
		t.Fatalf("orbit has %d curves, want 2", orbit.CurveCount())
	}
	curves := orbit.CurvesForPath(animation.NewEntityPath("planet", "orbit_controller"))
	if len(curves) != 1 || curves[0].Kind() != animation.KindRotation {
		t.Fatalf("rotation curve missing: %v", curves)
	}
	end := curves[0].Sample(4).Rotation
	if end[1] < 0.999 {
		t.Fatalf("180 degrees about y = %v", end)
	}

	unnamed := l.Get("solar_1")
	if unnamed == nil {
		t.Fatalf("unnamed clip not cached under its fallback name; have %v", l.Clips())
	}
	root := unnamed.CurvesForPath(animation.NewEntityPath())
	if len(root) != 1 || root[0].Interpolation != animation.InterpolationStep {
		t.Fatalf("root scale curve = %v", root)
	}

	again, err := l.LoadReader("solar", strings.NewReader("garbage: ["), FormatYAML)
	if err != nil || len(again) != 2 || again[0] != clips[0] {
		t.Fatalf("second LoadReader did not hit the cache: %v %v", again, err)
	}
}

func TestYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{
			name: "wrong width",
			body: "clips:\n  - name: a\n    curves:\n      - {path: x, kind: translation, timestamps: [0], values: [[1, 2]]}\n",
			want: ErrMalformedCurve,
		},
		{
			name: "unknown kind",
			body: "clips:\n  - name: a\n    curves:\n      - {path: x, kind: colour, timestamps: [0], values: [[1, 2, 3]]}\n",
			want: ErrMalformedCurve,
		},
		{
			name: "count mismatch",
			body: "clips:\n  - name: a\n    curves:\n      - {path: x, kind: scale, timestamps: [0, 1], values: [[1, 1, 1]]}\n",
			want: animation.ErrKeyframeCountMismatch,
		},
		{
			name: "duplicate kind",
			body: "clips:\n  - name: a\n    curves:\n      - {path: x, kind: scale, timestamps: [0], values: [[1, 1, 1]]}\n      - {path: x, kind: scale, timestamps: [1], values: [[2, 2, 2]]}\n",
			want: animation.ErrDuplicateCurveKind,
		},
		{
			name: "unknown interpolation",
			body: "clips:\n  - name: a\n    curves:\n      - {path: x, kind: scale, interpolation: bouncy, timestamps: [0], values: [[1, 1, 1]]}\n",
			want: animation.ErrUnknownInterpolation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLoader()
			_, err := l.LoadReader(tt.name, strings.NewReader(tt.body), FormatYAML)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if len(l.Clips()) != 0 {
				t.Fatalf("failed load left clips behind")
			}
		})
	}

	_, err := NewLoader().LoadReader("typo", strings.NewReader("clipz: []\n"), FormatYAML)
	if err == nil {
		t.Fatalf("unknown top-level key accepted")
	}

	var authoring *animation.AuthoringError
	_, err = NewLoader().LoadReader("auth", strings.NewReader(tests[2].body), FormatYAML)
	if !errors.As(err, &authoring) || authoring.Path.String() != "x" {
		t.Fatalf("count mismatch is not an AuthoringError on x: %v", err)
	}
}

func TestEmptyYAMLHasNoClips(t *testing.T) {
	clips, err := NewLoader().LoadReader("empty", strings.NewReader(""), FormatYAML)
	if err != nil || len(clips) != 0 {
		t.Fatalf("empty document = %v, %v", clips, err)
	}
}

func TestLoadReloadForget(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "walk.yaml", "clips:\n  - curves:\n      - {path: legs, kind: translation, timestamps: [0, 1], values: [[0, 0, 0], [0, 1, 0]]}\n")

	l := NewLoader()
	first, err := l.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(first) != 1 || first[0].Name() != "walk" {
		t.Fatalf("clip not named after the file: %v", first)
	}
	cached, _ := l.Load(path)
	if cached[0] != first[0] {
		t.Fatalf("second Load re-read the file")
	}

	writeFile(t, dir, "walk.yaml", "clips:\n  - name: run\n    curves:\n      - {path: legs, kind: translation, timestamps: [0, 2], values: [[0, 0, 0], [0, 3, 0]]}\n")
	fresh, err := l.Reload(path)
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if l.Get("walk") != nil {
		t.Fatalf("clip removed from the file is still cached")
	}
	if l.Get("run") != fresh[0] || fresh[0].Duration() != 2 {
		t.Fatalf("reloaded clip not cached")
	}

	writeFile(t, dir, "walk.yaml", "clips: [")
	if _, err := l.Reload(path); err == nil {
		t.Fatalf("broken file reloaded without error")
	}
	if l.Get("run") == nil {
		t.Fatalf("failed reload dropped the previous clips")
	}

	if names := l.Forget(path); len(names) != 1 || names[0] != "run" {
		t.Fatalf("Forget = %v", names)
	}
	if len(l.Clips()) != 0 {
		t.Fatalf("Forget left clips behind")
	}
}

func TestClipNameTakeover(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yaml", "clips:\n  - name: idle\n    curves: []\n")
	b := writeFile(t, dir, "b.yaml", "clips:\n  - name: idle\n    curves: []\n")

	l := NewLoader()
	if _, err := l.Load(a); err != nil {
		t.Fatalf("Load a: %v", err)
	}
	fromB, err := l.Load(b)
	if err != nil {
		t.Fatalf("Load b: %v", err)
	}
	if l.Get("idle") != fromB[0] {
		t.Fatalf("later load did not take the name over")
	}
	if names := l.Forget(a); len(names) != 0 {
		t.Fatalf("Forget(a) dropped %v after b took the name", names)
	}
	if l.Get("idle") == nil {
		t.Fatalf("Forget(a) removed b's clip")
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "clips:\n  - name: a\n    curves: []\n")
	writeFile(t, dir, "b.yml", "clips:\n  - name: b1\n    curves: []\n  - name: b2\n    curves: []\n")
	writeFile(t, dir, "readme.txt", "not a clip")
	if err := os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(WithConcurrency(2))
	clips, err := l.LoadDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	var names []string
	for _, c := range clips {
		names = append(names, c.Name())
	}
	if strings.Join(names, ",") != "a,b1,b2" {
		t.Fatalf("LoadDir clips = %v", names)
	}

	writeFile(t, dir, "c.yaml", "clips: [")
	if _, err := NewLoader().LoadDir(context.Background(), dir); err == nil || !strings.Contains(err.Error(), "c.yaml") {
		t.Fatalf("LoadDir err = %v, want failure naming c.yaml", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewLoader().LoadDir(ctx, dir); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled LoadDir err = %v", err)
	}
}

func TestWithClip(t *testing.T) {
	clip := animation.NewAnimationClip(animation.WithClipName("manual"))
	l := NewLoader(WithClip(clip))
	if l.Get("manual") != clip {
		t.Fatalf("WithClip did not seed the cache")
	}
	if got, _ := l.LoadReader("manual", strings.NewReader("clips: ["), FormatYAML); len(got) != 1 || got[0] != clip {
		t.Fatalf("seeded clip not served by source name")
	}
}
