package pointcloud

import (
	"fmt"
	"io"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// WritePCD writes the cloud in ASCII PCD form for interoperability with
// standard point cloud viewers. PLY remains the primary output format;
// the reader side of this package only understands PLY.
func WritePCD(cloud PointCloud, out io.Writer) error {
	_, err := fmt.Fprintf(out, "VERSION .7\n"+
		"FIELDS x y z\n"+
		"SIZE 4 4 4\n"+
		"TYPE F F F\n"+
		"COUNT 1 1 1\n"+
		"WIDTH %d\n"+
		"HEIGHT %d\n"+
		"VIEWPOINT 0 0 0 1 0 0 0\n"+
		"POINTS %d\n"+
		"DATA ascii\n",
		cloud.Size(), 1, cloud.Size())
	if err != nil {
		return errors.Wrap(err, "writing pcd header")
	}
	var werr error
	cloud.Iterate(func(p r3.Vector) bool {
		_, werr = fmt.Fprintf(out, "%f %f %f\n", p.X, p.Y, p.Z)
		return werr == nil
	})
	if werr != nil {
		return errors.Wrap(werr, "writing pcd data")
	}
	return nil
}
