package detection

import (
	"math"

	"github.com/rajasatyajit/CivicTriage/internal/models"
)

// Area thresholds in square pixels
const (
	SmallAreaBelow = 5000.0
	LargeAreaAbove = 15000.0
)

// Shape names which layout of the raw output produced a box
type Shape string

const (
	ShapeCorner   Shape = "corner"   // [x1, y1, x2, y2]
	ShapeCentre   Shape = "centre"   // [xc, yc, w, h, conf, class, ...]
	ShapeWindowed Shape = "windowed" // first valid group of four
	ShapeNone     Shape = "none"
)

// Box is an axis-aligned bounding box in corner form
type Box struct {
	X1, Y1, X2, Y2 float64
}

// Area returns the box area
func (b Box) Area() float64 {
	return (b.X2 - b.X1) * (b.Y2 - b.Y1)
}

// Valid reports whether the box is finite, non-empty and anchored at
// non-negative coordinates.
func (b Box) Valid() bool {
	for _, v := range []float64{b.X1, b.Y1, b.X2, b.Y2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.X2 > b.X1 && b.Y2 > b.Y1 && b.X1 >= 0 && b.Y1 >= 0
}

// Interpretation is the result of reading a raw detection output. Box is
// meaningful only when Found is true.
type Interpretation struct {
	Shape Shape
	Box   Box
	Found bool
}

// Interpret reads raw model output as a bounding box
func Interpret(raw models.DetectionOutput) Interpretation {
	switch {
	case len(raw) == 4:
		return accept(ShapeCorner, Box{X1: raw[0], Y1: raw[1], X2: raw[2], Y2: raw[3]})
	case len(raw) >= 7:
		xc, yc, w, h := raw[0], raw[1], raw[2], raw[3]
		return accept(ShapeCentre, Box{X1: xc - w/2, Y1: yc - h/2, X2: xc + w/2, Y2: yc + h/2})
	}

	for i := 0; i+4 <= len(raw); i += 4 {
		b := Box{X1: raw[i], Y1: raw[i+1], X2: raw[i+2], Y2: raw[i+3]}
		if b.Valid() {
			return Interpretation{Shape: ShapeWindowed, Box: b, Found: true}
		}
	}
	return Interpretation{Shape: ShapeNone}
}

func accept(shape Shape, b Box) Interpretation {
	if !b.Valid() {
		return Interpretation{Shape: ShapeNone}
	}
	return Interpretation{Shape: shape, Box: b, Found: true}
}

// Bucket maps a box area to a size bucket
func Bucket(area float64) models.SizeBucket {
	switch {
	case area < SmallAreaBelow:
		return models.SizeSmall
	case area > LargeAreaAbove:
		return models.SizeLarge
	default:
		return models.SizeMedium
	}
}

// SizeFromDetection buckets the detected issue by box area. Output with no
// usable box is treated as medium.
func SizeFromDetection(raw models.DetectionOutput) models.SizeBucket {
	in := Interpret(raw)
	if !in.Found {
		return models.SizeMedium
	}
	return Bucket(in.Box.Area())
}
