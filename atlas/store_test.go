package atlas_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eak1mov/go-megatex/atlas"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

var formats = []atlas.Format{atlas.FormatJSON, atlas.FormatYAML, atlas.FormatCBOR}

func TestStoreRoundTrip(t *testing.T) {
	cases := map[string]*atlas.Atlas{
		"Empty":      {Squares: []atlas.Square{}},
		"NilSquares": {SideLength: 0},
		"Single":     {PackName: "pack.zip", SideLength: 1, Squares: []atlas.Square{{Name: "a.png"}}},
		"Grid":       atlas.AssignGrid(makeNames(50)),
	}
	for name, want := range cases {
		for _, format := range formats {
			t.Run(name+format.String(), func(t *testing.T) {
				t.Parallel()

				var buffer bytes.Buffer
				if err := atlas.Save(&buffer, want, format); err != nil {
					t.Fatalf("Save failed: %v", err)
				}
				got, err := atlas.Load(&buffer, format)
				if err != nil {
					t.Fatalf("Load failed: %v", err)
				}
				if got.Squares == nil {
					t.Errorf("Load returned nil squares")
				}
				if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
					t.Errorf("Load(Save(input)) mismatch (-want+got):\n%v", diff)
				}
			})
		}
	}
}

func TestStoreJSONSchema(t *testing.T) {
	a := &atlas.Atlas{PackName: "p", SideLength: 1, Squares: []atlas.Square{{Name: "n", X: 0, Y: 0}}}

	var buffer bytes.Buffer
	if err := atlas.Save(&buffer, a, atlas.FormatJSON); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	for _, field := range []string{`"pack_name": "p"`, `"side_length": 1`, `"squares"`, `"name": "n"`, `"x": 0`, `"y": 0`} {
		if !strings.Contains(buffer.String(), field) {
			t.Errorf("saved JSON %s does not contain %s", buffer.String(), field)
		}
	}
}

func TestStoreLoadErrors(t *testing.T) {
	for _, tc := range []struct {
		Name string
		Data string
	}{
		{Name: "Malformed", Data: `{"side_length": 1, "squares": [`},
		{Name: "NotObject", Data: `[]`},
		{Name: "MissingSideLength", Data: `{"squares": []}`},
		{Name: "MissingSquares", Data: `{"side_length": 0}`},
		{Name: "NullSquares", Data: `{"side_length": 0, "squares": null}`},
		{Name: "MissingName", Data: `{"side_length": 1, "squares": [{"x": 0, "y": 0}]}`},
		{Name: "MissingX", Data: `{"side_length": 1, "squares": [{"name": "a", "y": 0}]}`},
		{Name: "MissingY", Data: `{"side_length": 1, "squares": [{"name": "a", "x": 0}]}`},
		{Name: "Negative", Data: `{"side_length": 1, "squares": [{"name": "a", "x": -1, "y": 0}]}`},
		{Name: "OutOfBounds", Data: `{"side_length": 1, "squares": [{"name": "a", "x": 1, "y": 0}]}`},
		{Name: "Overfull", Data: `{"side_length": 1, "squares": [{"name": "a", "x": 0, "y": 0}, {"name": "b", "x": 0, "y": 0}]}`},
		{Name: "OversizedEmpty", Data: `{"side_length": 4294967295, "squares": []}`},
		{Name: "OversizedSparse", Data: `{"side_length": 3, "squares": [{"name": "a", "x": 2, "y": 2}]}`},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			_, err := atlas.Load(strings.NewReader(tc.Data), atlas.FormatJSON)
			require.Truef(t, errors.Is(err, atlas.ErrPersistence), "%v", err)
		})
	}

	_, err := atlas.Load(strings.NewReader(`{"side_length": 1, "squares": [{"name": "a", "x": 1, "y": 0}]}`), atlas.FormatJSON)
	require.Truef(t, errors.Is(err, atlas.ErrInvalidAtlas), "%v", err)

	_, err = atlas.Load(strings.NewReader(`{"side_length": 4294967295, "squares": []}`), atlas.FormatJSON)
	require.Truef(t, errors.Is(err, atlas.ErrInvalidAtlas), "%v", err)

	_, err = atlas.Load(strings.NewReader("side_length: 1\n"), atlas.FormatYAML)
	require.Truef(t, errors.Is(err, atlas.ErrPersistence), "%v", err)
}

func TestStoreFile(t *testing.T) {
	want := atlas.AssignGrid(makeNames(7))
	want.PackName = "pack"

	for _, ext := range []string{".json", ".yaml", ".yml", ".cbor"} {
		filePath := filepath.Join(t.TempDir(), "atlas"+ext)
		if err := atlas.SaveFile(filePath, want); err != nil {
			t.Fatalf("SaveFile(%v) failed: %v", filePath, err)
		}
		got, err := atlas.LoadFile(filePath)
		if err != nil {
			t.Fatalf("LoadFile(%v) failed: %v", filePath, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("LoadFile(%v) mismatch (-want+got):\n%v", filePath, diff)
		}
	}

	_, err := atlas.LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Truef(t, errors.Is(err, atlas.ErrPersistence), "%v", err)
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]atlas.Format{
		"atlas.json":  atlas.FormatJSON,
		"atlas":       atlas.FormatJSON,
		"atlas.YAML":  atlas.FormatYAML,
		"a/atlas.yml": atlas.FormatYAML,
		"atlas.cbor":  atlas.FormatCBOR,
	} {
		if got := atlas.FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %v, want = %v", path, got, want)
		}
	}
}
