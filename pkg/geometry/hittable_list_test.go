package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// reusingShape hands out the same record on every call, overwriting it each time
type reusingShape struct {
	record material.HitRecord
	nextT  float64
}

func (r *reusingShape) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	if r.nextT <= tMin || r.nextT > tMax {
		return nil, false
	}
	r.record.T = r.nextT
	r.record.Point = ray.At(r.nextT)
	return &r.record, true
}

func TestHittableList_Empty(t *testing.T) {
	list := NewHittableList()
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))

	if _, isHit := list.Hit(ray, 0.001, math.Inf(1)); isHit {
		t.Error("Expected empty list to report no hit")
	}
}

func TestHittableList_ClosestHitWins(t *testing.T) {
	mat := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	near := mustSphere(t, core.NewVec3(0, 0, 0), 1, mat)
	far := mustSphere(t, core.NewVec3(0, 0, 1), 1, mat)
	ray := core.NewRay(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 1))

	nearHit, _ := near.Hit(ray, 0.001, math.Inf(1))
	farHit, _ := far.Hit(ray, 0.001, math.Inf(1))
	expectedT := math.Min(nearHit.T, farHit.T)

	tests := []struct {
		name   string
		shapes []Shape
	}{
		{"near first", []Shape{near, far}},
		{"far first", []Shape{far, near}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := NewHittableList(tt.shapes...)
			hit, isHit := list.Hit(ray, 0.001, math.Inf(1))
			if !isHit {
				t.Fatal("Expected hit")
			}
			if hit.T != expectedT {
				t.Errorf("Expected t=%f, got t=%f", expectedT, hit.T)
			}
		})
	}
}

func TestHittableList_RespectsInterval(t *testing.T) {
	mat := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	list := NewHittableList(mustSphere(t, core.NewVec3(0, 0, 0), 1, mat))
	ray := core.NewRay(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 1))

	if _, isHit := list.Hit(ray, 0.001, 3.5); isHit {
		t.Error("Expected no hit when every root exceeds tMax")
	}
	hit, isHit := list.Hit(ray, 4.5, 100)
	if !isHit || math.Abs(hit.T-6) > 1e-9 {
		t.Errorf("Expected far root at t=6, got %v (hit=%t)", hit, isHit)
	}
}

func TestHittableList_ReturnsIndependentRecord(t *testing.T) {
	shape := &reusingShape{nextT: 2}
	list := NewHittableList(shape)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))

	hit, isHit := list.Hit(ray, 0.001, 100)
	if !isHit {
		t.Fatal("Expected hit")
	}

	// A later query overwrites the shape's internal record
	shape.nextT = 7
	shape.Hit(ray, 0.001, 100)

	if hit.T != 2 {
		t.Errorf("Returned record changed after a later query: t=%f", hit.T)
	}
}

func TestHittableList_Add(t *testing.T) {
	mat := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	first := mustSphere(t, core.NewVec3(0, 0, 0), 1, mat)
	second := mustSphere(t, core.NewVec3(3, 0, 0), 1, mat)
	list := NewHittableList()
	list.Add(first, second)

	if list.Len() != 2 {
		t.Errorf("Expected 2 shapes, got %d", list.Len())
	}
	if shapes := list.Shapes(); shapes[0] != first || shapes[1] != second {
		t.Error("Expected shapes in insertion order")
	}
}

func TestHittableList_Nested(t *testing.T) {
	mat := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	inner := NewHittableList(mustSphere(t, core.NewVec3(0, 0, 0), 1, mat))
	outer := NewHittableList(inner, mustSphere(t, core.NewVec3(0, 0, 10), 1, mat))
	ray := core.NewRay(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 1))

	hit, isHit := outer.Hit(ray, 0.001, math.Inf(1))
	if !isHit || math.Abs(hit.T-4) > 1e-9 {
		t.Errorf("Expected nested list to report t=4, got %v (hit=%t)", hit, isHit)
	}
}
