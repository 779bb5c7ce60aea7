package main

import "testing"

func TestWalkerDue_EveryFrame(t *testing.T) {
	// Cadence 1 means a fix on every frame, including the clamped <= 0 case.
	for _, n := range []int{1, 0, -3} {
		for frame := 1; frame <= 5; frame++ {
			if !walkerDue(frame, n) {
				t.Fatalf("walkerDue(%d, %d) = false, want a step every frame", frame, n)
			}
		}
	}
}

func TestWalkerDue_FirstFrameAlwaysSteps(t *testing.T) {
	for _, n := range []int{1, 2, 30, 1000} {
		if !walkerDue(1, n) {
			t.Fatalf("walkerDue(1, %d) = false, want the first fix on frame 1", n)
		}
	}
}

func TestWalkerDue_Cadence(t *testing.T) {
	var stepped []int
	for frame := 1; frame <= 10; frame++ {
		if walkerDue(frame, 3) {
			stepped = append(stepped, frame)
		}
	}
	want := []int{1, 4, 7, 10}
	if len(stepped) != len(want) {
		t.Fatalf("cadence 3 stepped on %v, want %v", stepped, want)
	}
	for i := range want {
		if stepped[i] != want[i] {
			t.Fatalf("cadence 3 stepped on %v, want %v", stepped, want)
		}
	}
}
