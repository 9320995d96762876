package tensor

import (
	"testing"
)

// Test helpers

func assertEqualShape(t *testing.T, expected, actual Shape, msg string) {
	t.Helper()
	if !expected.Equal(actual) {
		t.Errorf("%s: expected shape %v, got %v", msg, expected, actual)
	}
}

// DType Tests

func TestDataTypeSize(t *testing.T) {
	tests := []struct {
		dtype DataType
		size  int
	}{
		{Float32, 4},
		{Float64, 8},
		{Int32, 4},
		{Int64, 8},
		{Uint8, 1},
		{Bool, 1},
	}

	for _, tt := range tests {
		if got := tt.dtype.Size(); got != tt.size {
			t.Errorf("%s.Size() = %d, want %d", tt.dtype, got, tt.size)
		}
	}
}

func TestDataTypeStringRoundTrip(t *testing.T) {
	for _, dt := range []DataType{Float32, Float64, Int32, Int64, Uint8, Bool} {
		parsed, err := ParseDataType(dt.String())
		if err != nil {
			t.Fatalf("ParseDataType(%q) failed: %v", dt.String(), err)
		}
		if parsed != dt {
			t.Errorf("ParseDataType(%q) = %v, want %v", dt.String(), parsed, dt)
		}
	}

	if _, err := ParseDataType("complex64"); err == nil {
		t.Error("ParseDataType(complex64) should fail")
	}
}

func TestDataTypeText(t *testing.T) {
	text, err := Float32.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}
	var dt DataType
	if err := dt.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if dt != Float32 {
		t.Errorf("UnmarshalText = %v, want float32", dt)
	}

	if _, err := DataType(42).MarshalText(); err == nil {
		t.Error("MarshalText of unknown dtype should fail")
	}
}

func TestInferDataType(t *testing.T) {
	if dt := inferDataType(float32(0)); dt != Float32 {
		t.Errorf("inferDataType(float32) = %v, want Float32", dt)
	}
	if dt := inferDataType(float64(0)); dt != Float64 {
		t.Errorf("inferDataType(float64) = %v, want Float64", dt)
	}
	if dt := inferDataType(int32(0)); dt != Int32 {
		t.Errorf("inferDataType(int32) = %v, want Int32", dt)
	}
	if dt := inferDataType(int64(0)); dt != Int64 {
		t.Errorf("inferDataType(int64) = %v, want Int64", dt)
	}
}

// Shape Tests

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		shape    Shape
		expected int
	}{
		{Shape{}, 1},         // Scalar
		{Shape{5}, 5},        // 1D
		{Shape{3, 4}, 12},    // 2D
		{Shape{2, 3, 4}, 24}, // 3D
		{Shape{1, 1, 1}, 1},  // Ones
	}

	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.expected {
			t.Errorf("Shape%v.NumElements() = %d, want %d", tt.shape, got, tt.expected)
		}
	}
}

func TestShapeValidation(t *testing.T) {
	for _, s := range []Shape{{1}, {3, 4}, {2, 3, 4}} {
		if err := s.Validate(); err != nil {
			t.Errorf("Shape%v.Validate() failed: %v", s, err)
		}
	}

	for _, s := range []Shape{{0}, {3, 0}, {-1}, {3, -4}} {
		if err := s.Validate(); err == nil {
			t.Errorf("Shape%v.Validate() should fail but didn't", s)
		}
	}
}

func TestShapeEqual(t *testing.T) {
	tests := []struct {
		a, b  Shape
		equal bool
	}{
		{Shape{3, 4}, Shape{3, 4}, true},
		{Shape{3, 4}, Shape{4, 3}, false},
		{Shape{3}, Shape{3, 1}, false},
		{Shape{}, Shape{}, true},
	}

	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.equal {
			t.Errorf("Shape%v.Equal(%v) = %v, want %v", tt.a, tt.b, got, tt.equal)
		}
	}
}

func TestShapeStridesAndUnravel(t *testing.T) {
	s := Shape{2, 3, 4}
	strides := s.ComputeStrides()
	want := []int{12, 4, 1}
	for i := range want {
		if strides[i] != want[i] {
			t.Fatalf("ComputeStrides() = %v, want %v", strides, want)
		}
	}

	idx := s.Unravel(23)
	assertEqualShape(t, Shape{1, 2, 3}, Shape(idx), "Unravel(23)")
	idx = s.Unravel(5)
	assertEqualShape(t, Shape{0, 1, 1}, Shape(idx), "Unravel(5)")
}
