package pointcloud

import (
	"bytes"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func makeCloud(t *testing.T, n int) PointCloud {
	t.Helper()
	pc := NewWithPrealloc(n)
	for i := 0; i < n; i++ {
		p := NewVector(
			math.Sin(float64(i))*1.25,
			float64(i)*0.001-5,
			math.Cos(float64(i))*0.75,
		)
		test.That(t, pc.Set(p), test.ShouldBeNil)
	}
	test.That(t, pc.Size(), test.ShouldEqual, n)
	return pc
}

func TestPLYRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 10000} {
		t.Run(fmt.Sprintf("%d points", n), func(t *testing.T) {
			pc := makeCloud(t, n)

			var buf bytes.Buffer
			test.That(t, WritePLY(pc, &buf), test.ShouldBeNil)

			got, err := ReadPLY(&buf)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, got.Size(), test.ShouldEqual, n)

			want := VectorsFromCloud(pc)
			read := VectorsFromCloud(got)
			for i := range want {
				test.That(t, read[i].X, test.ShouldAlmostEqual, want[i].X, 1e-6)
				test.That(t, read[i].Y, test.ShouldAlmostEqual, want[i].Y, 1e-6)
				test.That(t, read[i].Z, test.ShouldAlmostEqual, want[i].Z, 1e-6)
			}
		})
	}
}

func TestPLYDeterministicOutput(t *testing.T) {
	pc := makeCloud(t, 100)
	var a, b bytes.Buffer
	test.That(t, WritePLY(pc, &a), test.ShouldBeNil)
	test.That(t, WritePLY(pc, &b), test.ShouldBeNil)
	test.That(t, a.String(), test.ShouldEqual, b.String())
}

func TestPLYHeaderContents(t *testing.T) {
	pc := makeCloud(t, 2)
	var buf bytes.Buffer
	test.That(t, WritePLY(pc, &buf), test.ShouldBeNil)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	test.That(t, lines[0], test.ShouldEqual, "ply")
	test.That(t, lines[1], test.ShouldEqual, "format ascii 1.0")
	test.That(t, lines[2], test.ShouldEqual, "element vertex 2")
	test.That(t, lines[6], test.ShouldEqual, "end_header")
	test.That(t, len(lines), test.ShouldEqual, 9)
}

func TestReadPLYMalformed(t *testing.T) {
	good := "ply\nformat ascii 1.0\nelement vertex 1\n" +
		"property float x\nproperty float y\nproperty float z\nend_header\n1 2 3\n"

	// the well-formed baseline parses
	_, err := ReadPLY(strings.NewReader(good))
	test.That(t, err, test.ShouldBeNil)

	for name, in := range map[string]string{
		"wrong magic":        strings.Replace(good, "ply\n", "plx\n", 1),
		"bad format line":    strings.Replace(good, "format ascii 1.0", "format binary 1.0", 1),
		"non-numeric count":  strings.Replace(good, "element vertex 1", "element vertex one", 1),
		"negative count":     strings.Replace(good, "element vertex 1", "element vertex -1", 1),
		"missing property":   strings.Replace(good, "property float y\n", "", 1),
		"truncated header":   "ply\nformat ascii 1.0\n",
		"truncated body":     strings.Replace(good, "element vertex 1", "element vertex 3", 1),
		"bad coordinate":     strings.Replace(good, "1 2 3", "1 2 x", 1),
		"wrong field count":  strings.Replace(good, "1 2 3", "1 2", 1),
		"too many fields":    strings.Replace(good, "1 2 3", "1 2 3 4", 1),
		"non-finite vertex":  strings.Replace(good, "1 2 3", "1 2 NaN", 1),
		"trailing junk line": strings.Replace(good, "element vertex 1", "element vertex 1 extra", 1),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadPLY(strings.NewReader(in))
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, IsFormatError(err), test.ShouldBeTrue)
		})
	}
}

func TestReadPLYIgnoresComments(t *testing.T) {
	in := "ply\ncomment made by visualhull\nformat ascii 1.0\nelement vertex 1\n" +
		"property float x\nproperty float y\nproperty float z\nend_header\n0.5 -0.25 1.0\n"
	pc, err := ReadPLY(strings.NewReader(in))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pc.Size(), test.ShouldEqual, 1)
	test.That(t, pc.At(0.5, -0.25, 1.0), test.ShouldBeTrue)
}

func TestPLYFileRoundTrip(t *testing.T) {
	pc := makeCloud(t, 50)
	fn := filepath.Join(t.TempDir(), "cloud.ply")
	test.That(t, WritePLYToFile(pc, fn), test.ShouldBeNil)

	got, err := ReadPLYFromFile(fn)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got.Size(), test.ShouldEqual, 50)
}

func TestWritePCD(t *testing.T) {
	pc := New()
	test.That(t, pc.Set(r3.Vector{X: 1, Y: 2, Z: 3}), test.ShouldBeNil)
	test.That(t, pc.Set(r3.Vector{X: -1, Y: 0.5, Z: 0}), test.ShouldBeNil)

	var buf bytes.Buffer
	test.That(t, WritePCD(pc, &buf), test.ShouldBeNil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	test.That(t, lines[0], test.ShouldEqual, "VERSION .7")
	test.That(t, lines[1], test.ShouldEqual, "FIELDS x y z")
	test.That(t, lines[8], test.ShouldEqual, "POINTS 2")
	test.That(t, lines[9], test.ShouldEqual, "DATA ascii")
	test.That(t, len(lines), test.ShouldEqual, 12)
	test.That(t, lines[10], test.ShouldStartWith, "1.0")
}
