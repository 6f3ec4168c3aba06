package geometry

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// HittableList is an ordered collection of shapes that is itself a Shape.
// Order only affects iteration cost; the nearest hit always wins.
type HittableList struct {
	shapes []Shape
}

// NewHittableList creates a list from the given shapes
func NewHittableList(shapes ...Shape) *HittableList {
	list := &HittableList{}
	list.Add(shapes...)
	return list
}

// Add appends shapes to the list
func (l *HittableList) Add(shapes ...Shape) {
	l.shapes = append(l.shapes, shapes...)
}

// Shapes returns the shapes in insertion order
func (l *HittableList) Shapes() []Shape {
	return l.shapes
}

// Len returns the number of shapes
func (l *HittableList) Len() int {
	return len(l.shapes)
}

// Hit returns the closest hit among all shapes. Each improvement narrows tMax,
// so every shape is tested once.
func (l *HittableList) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	var closest material.HitRecord
	hitAnything := false
	closestSoFar := tMax

	for _, shape := range l.shapes {
		if hit, isHit := shape.Hit(ray, tMin, closestSoFar); isHit {
			hitAnything = true
			closestSoFar = hit.T
			closest = *hit
		}
	}

	if !hitAnything {
		return nil, false
	}
	return &closest, true
}
