package viz

import (
	"math"
	"sort"

	"github.com/san-kum/neuroanim/internal/codec"
)

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Length() float64      { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// Camera projects scene coordinates onto the canvas.
type Camera struct {
	Distance         float64
	Near             float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 50, Near: 0.1, Zoom: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// Reset restores the default orientation and zoom.
func (c *Camera) Reset() { *c = *NewCamera() }

// RotatePoint rotates a point around the camera's axes.
func (c *Camera) RotatePoint(p Vec3) Vec3 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// Project converts scene coordinates to screen coordinates.
// Returns x, y, depth, and visibility.
func (c *Camera) Project(p Vec3, sw, sh int) (int, int, float64, bool) {
	rot := c.RotatePoint(p).Scale(c.Zoom)
	if rot.Z >= c.Distance-c.Near {
		return 0, 0, 0, false
	}
	scale := c.Distance / (c.Distance - rot.Z)
	minDim := float64(min(sw, sh))
	pScale := minDim / 2.2
	sx := int(rot.X*scale*pScale) + sw/2
	sy := int(-rot.Y*scale*pScale) + sh/2
	return sx, sy, rot.Z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

// Segment joins two consecutive points of one record.
type Segment struct {
	Start, End Vec3
	Record     int
	Point      int
}

// Scene is the morphology of a record set, normalized so its largest
// extent spans [-1,1] around the origin.
type Scene struct {
	Segments []Segment
	Records  []codec.Record
}

// NewScene builds segments from record geometry. Single-point records
// become a zero-length segment.
func NewScene(records []codec.Record) *Scene {
	s := &Scene{Records: records}

	var lo, hi Vec3
	first := true
	for _, r := range records {
		for i := range r.X {
			p := Vec3{r.X[i], r.Y[i], r.Z[i]}
			if first {
				lo, hi, first = p, p, false
				continue
			}
			lo = Vec3{math.Min(lo.X, p.X), math.Min(lo.Y, p.Y), math.Min(lo.Z, p.Z)}
			hi = Vec3{math.Max(hi.X, p.X), math.Max(hi.Y, p.Y), math.Max(hi.Z, p.Z)}
		}
	}
	if first {
		return s
	}

	center := lo.Add(hi).Scale(0.5)
	extent := math.Max(hi.X-lo.X, math.Max(hi.Y-lo.Y, hi.Z-lo.Z))
	norm := 1.0
	if extent > 0 {
		norm = 2 / extent
	}
	at := func(r codec.Record, i int) Vec3 {
		return Vec3{r.X[i], r.Y[i], r.Z[i]}.Sub(center).Scale(norm)
	}

	for ri, r := range records {
		switch len(r.X) {
		case 0:
		case 1:
			p := at(r, 0)
			s.Segments = append(s.Segments, Segment{Start: p, End: p, Record: ri})
		default:
			for i := 1; i < len(r.X); i++ {
				s.Segments = append(s.Segments, Segment{Start: at(r, i-1), End: at(r, i), Record: ri, Point: i})
			}
		}
	}
	return s
}

// Voltage is the value drawn for a segment at frame, false when the
// record has no voltage for that frame.
func (s *Scene) Voltage(seg Segment, frame int) (float64, bool) {
	v, ok := s.Records[seg.Record].Voltage[frame]
	if !ok || seg.Point >= len(v) {
		return 0, false
	}
	return v[seg.Point], true
}

type projected struct {
	x1, y1, x2, y2 int
	depth          float64
	level          float64
}

// project returns the visible segments of frame in screen space, far
// segments first. Segments without voltage get level 0.
func (s *Scene) project(cam *Camera, ramp Ramp, frame, sw, sh int) []projected {
	proj := make([]projected, 0, len(s.Segments))
	for _, seg := range s.Segments {
		x1, y1, d1, v1 := cam.Project(seg.Start, sw, sh)
		x2, y2, d2, v2 := cam.Project(seg.End, sw, sh)
		if !v1 && !v2 {
			continue
		}
		level := 0.0
		if v, ok := s.Voltage(seg, frame); ok {
			level = ramp.Level(v)
		}
		proj = append(proj, projected{x1, y1, x2, y2, (d1 + d2) / 2, level})
	}
	sort.SliceStable(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	return proj
}

// Draw renders frame onto the canvas.
func (s *Scene) Draw(c *Canvas, cam *Camera, ramp Ramp, frame int) {
	if c == nil || cam == nil {
		return
	}
	for _, p := range s.project(cam, ramp, frame, c.Width*2, c.Height*4) {
		c.DrawLine(p.x1, p.y1, p.x2, p.y2, p.level)
	}
}
