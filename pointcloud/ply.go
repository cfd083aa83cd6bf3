package pointcloud

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"
)

// FormatError indicates a malformed point cloud file. It is distinct from
// plain I/O errors so callers can tell a bad file apart from a bad disk.
type FormatError struct {
	msg string
}

func (e *FormatError) Error() string {
	return e.msg
}

func formatErrorf(format string, args ...interface{}) *FormatError {
	return &FormatError{msg: fmt.Sprintf(format, args...)}
}

// IsFormatError reports whether err is a point cloud format violation.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// plyHeaderLines is the exact ASCII PLY header this package emits, with %d
// substituted for the vertex count. The reader requires the same lines in
// the same order (comment lines excepted).
var plyHeaderLines = []string{
	"ply",
	"format ascii 1.0",
	"element vertex %d",
	"property float x",
	"property float y",
	"property float z",
	"end_header",
}

// WritePLY writes the cloud as an ASCII PLY file, one vertex per line.
// Iteration order is preserved so identical clouds produce identical files.
func WritePLY(cloud PointCloud, out io.Writer) error {
	for _, line := range plyHeaderLines {
		if strings.Contains(line, "%d") {
			line = fmt.Sprintf(line, cloud.Size())
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return errors.Wrap(err, "writing ply header")
		}
	}
	var werr error
	cloud.Iterate(func(p r3.Vector) bool {
		_, werr = fmt.Fprintf(out, "%.6f %.6f %.6f\n", p.X, p.Y, p.Z)
		return werr == nil
	})
	if werr != nil {
		return errors.Wrap(werr, "writing ply vertex data")
	}
	return nil
}

// ReadPLY reads an ASCII PLY file containing x/y/z float vertices. Malformed
// headers, non-numeric coordinates, and truncated vertex data all produce a
// *FormatError rather than a silently padded or truncated cloud.
func ReadPLY(inRaw io.Reader) (PointCloud, error) {
	in := bufio.NewReader(inRaw)
	count, err := readPLYHeader(in)
	if err != nil {
		return nil, err
	}
	pc := NewWithPrealloc(count)
	for i := 0; i < count; i++ {
		line, err := readPLYLine(in)
		if err != nil {
			return nil, formatErrorf("ply vertex data truncated: expected %d vertices, got %d", count, i)
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, formatErrorf("ply vertex %d: expected 3 coordinate fields, got %d", i, len(fields))
		}
		coords := make([]float64, 3)
		for j, field := range fields {
			coords[j], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, formatErrorf("ply vertex %d: invalid coordinate %q", i, field)
			}
		}
		if err := pc.Set(r3.Vector{X: coords[0], Y: coords[1], Z: coords[2]}); err != nil {
			return nil, formatErrorf("ply vertex %d: %v", i, err)
		}
	}
	return pc, nil
}

// readPLYHeader consumes the fixed header and returns the declared vertex count.
func readPLYHeader(in *bufio.Reader) (int, error) {
	count := -1
	for _, want := range plyHeaderLines {
		line, err := readPLYLine(in)
		if err != nil {
			return 0, formatErrorf("ply header truncated before %q line", want)
		}
		if want == "element vertex %d" {
			var n int
			if _, err := fmt.Sscanf(line, "element vertex %d", &n); err != nil || n < 0 {
				return 0, formatErrorf("ply header has invalid element line %q", line)
			}
			// Sscanf tolerates trailing garbage; require the exact form.
			if line != fmt.Sprintf("element vertex %d", n) {
				return 0, formatErrorf("ply header has invalid element line %q", line)
			}
			count = n
			continue
		}
		if line != want {
			return 0, formatErrorf("ply header line %q is supposed to be %q", line, want)
		}
	}
	return count, nil
}

// readPLYLine returns the next non-comment, non-empty line with whitespace trimmed.
func readPLYLine(in *bufio.Reader) (string, error) {
	for {
		line, err := in.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" && err != nil {
			return "", err
		}
		if line == "" || strings.HasPrefix(line, "comment") {
			continue
		}
		return line, nil
	}
}

// WritePLYToFile writes the cloud to the named file.
func WritePLYToFile(cloud PointCloud, fn string) (err error) {
	//nolint:gosec
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	w := bufio.NewWriter(f)
	if err := WritePLY(cloud, w); err != nil {
		return err
	}
	return w.Flush()
}

// ReadPLYFromFile reads a cloud in from the named PLY file.
func ReadPLYFromFile(fn string) (PointCloud, error) {
	//nolint:gosec
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer utils.UncheckedErrorFunc(f.Close)
	return ReadPLY(bufio.NewReader(f))
}
