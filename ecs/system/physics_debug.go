package system

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/jakecoffman/cp"
)

const (
	debugCircleSegments = 24
	debugDotSize        = 4
)

// DrawSpaceDebug renders every shape in the space as wireframes. Ghost
// platforms get their own color so pass-through geometry reads at a glance.
func DrawSpaceDebug(space *cp.Space, screen *ebiten.Image, isGhost func(*cp.Shape) bool) {
	if space == nil || screen == nil {
		return
	}
	cp.DrawSpace(space, &physicsDebugDrawer{screen: screen, isGhost: isGhost})
}

type physicsDebugDrawer struct {
	screen  *ebiten.Image
	isGhost func(*cp.Shape) bool
}

func (d *physicsDebugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 {
		return
	}
	d.drawCircle(pos, radius, outline)
	end := cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}
	d.drawLine(pos, end, outline)
}

func (d *physicsDebugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, fill)
}

func (d *physicsDebugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, outline)
	if radius > 0 {
		d.drawCircle(a, radius, outline)
		d.drawCircle(b, radius, outline)
	}
}

func (d *physicsDebugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 {
		return
	}
	d.drawPolygon(verts[:count], outline)
}

func (d *physicsDebugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	if size <= 0 {
		size = debugDotSize
	}
	half := size / 2
	d.drawLine(cp.Vector{X: pos.X - half, Y: pos.Y}, cp.Vector{X: pos.X + half, Y: pos.Y}, fill)
	d.drawLine(cp.Vector{X: pos.X, Y: pos.Y - half}, cp.Vector{X: pos.X, Y: pos.Y + half}, fill)
}

func (d *physicsDebugDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *physicsDebugDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1, B: 0.2, A: 0.9}
}

func (d *physicsDebugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	if shape == nil {
		return cp.FColor{R: 1, G: 1, B: 1, A: 1}
	}
	if d.isGhost != nil && d.isGhost(shape) {
		return cp.FColor{R: 1, G: 0.65, B: 0.15, A: 0.9}
	}
	if shape.Sensor() {
		return cp.FColor{R: 1, G: 0.9, B: 0.2, A: 0.7}
	}
	if shape.Body() != nil && shape.Body().GetType() == cp.BODY_STATIC {
		return cp.FColor{R: 0.35, G: 0.65, B: 1, A: 0.9}
	}
	return cp.FColor{R: 0.85, G: 0.4, B: 0.9, A: 0.9}
}

func (d *physicsDebugDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.5, B: 0.1, A: 0.9}
}

func (d *physicsDebugDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.2, B: 0.2, A: 0.9}
}

func (d *physicsDebugDrawer) Data() interface{} {
	return nil
}

func (d *physicsDebugDrawer) drawLine(a, b cp.Vector, c cp.FColor) {
	ebitenutil.DrawLine(d.screen, a.X, a.Y, b.X, b.Y, toNRGBA(c))
}

func (d *physicsDebugDrawer) drawPolygon(verts []cp.Vector, c cp.FColor) {
	if len(verts) == 0 {
		return
	}
	for i := 0; i < len(verts); i++ {
		d.drawLine(verts[i], verts[(i+1)%len(verts)], c)
	}
}

func (d *physicsDebugDrawer) drawCircle(center cp.Vector, radius float64, c cp.FColor) {
	if radius <= 0 {
		return
	}
	points := make([]cp.Vector, 0, debugCircleSegments)
	for i := 0; i < debugCircleSegments; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(debugCircleSegments))
		points = append(points, cp.Vector{X: center.X + math.Cos(t)*radius, Y: center.Y + math.Sin(t)*radius})
	}
	d.drawPolygon(points, c)
}

func toNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
