package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	id := Identity()
	result := m.Mul(id)

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)

	// Translation should be in column 4 (indices 12, 13, 14)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
}

func TestTransformPoint(t *testing.T) {
	// Translate by (10, 20, 30)
	m := Translate(10, 20, 30)
	p := [3]float32{1, 2, 3}
	result := m.TransformPoint(p)

	expected := [3]float32{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestRotateY90(t *testing.T) {
	m := RotateY(float32(math.Pi / 2)) // 90 degrees
	p := [3]float32{1, 0, 0}           // Point on X axis
	result := m.TransformPoint(p)

	// After 90 degree Y rotation, (1,0,0) should become approximately (0,0,-1)
	if abs(result[0]) > 0.001 || abs(result[1]) > 0.001 || abs(result[2]+1) > 0.001 {
		t.Errorf("RotateY 90: got %v, want (0, 0, -1)", result)
	}
}

func TestRotateX90(t *testing.T) {
	m := RotateX(float32(math.Pi / 2))
	p := [3]float32{0, 1, 0}
	result := m.TransformPoint(p)

	// After 90 degree X rotation, (0,1,0) should become approximately (0,0,1)
	if abs(result[0]) > 0.001 || abs(result[1]) > 0.001 || abs(result[2]-1) > 0.001 {
		t.Errorf("RotateX 90: got %v, want (0, 0, 1)", result)
	}
}

func TestRotateZ90(t *testing.T) {
	m := RotateZ(float32(math.Pi / 2))
	p := [3]float32{1, 0, 0}
	result := m.TransformPoint(p)

	// After 90 degree Z rotation, (1,0,0) should become approximately (0,1,0)
	if abs(result[0]) > 0.001 || abs(result[1]-1) > 0.001 || abs(result[2]) > 0.001 {
		t.Errorf("RotateZ 90: got %v, want (0, 1, 0)", result)
	}
}

func TestTranslateThenRotate(t *testing.T) {
	// Compose translate * rotateZ, applied to (1,0,0): rotate first in local
	// space, then translate.
	m := Translate(10, 0, 0).Mul(RotateZ(float32(math.Pi / 2)))
	result := m.TransformPoint([3]float32{1, 0, 0})

	if abs(result[0]-10) > 0.001 || abs(result[1]-1) > 0.001 || abs(result[2]) > 0.001 {
		t.Errorf("Translate*RotateZ: got %v, want (10, 1, 0)", result)
	}
}

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	m := Translate(100, 200, 300)
	d := m.TransformDirection(Vec3{1, 2, 3})

	if d != (Vec3{1, 2, 3}) {
		t.Errorf("TransformDirection should ignore translation: got %v", d)
	}
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
