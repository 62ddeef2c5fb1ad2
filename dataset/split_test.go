package dataset

import (
	"errors"
	"math"
	"testing"
)

func TestStratifiedSplitProportions(t *testing.T) {
	labels := make([]int, 100)
	for i := 60; i < 100; i++ {
		labels[i] = 1
	}

	trainIdx, valIdx, err := StratifiedSplit(labels, 0.2, 42)
	if err != nil {
		t.Fatalf("StratifiedSplit: %v", err)
	}

	if len(trainIdx)+len(valIdx) != 100 {
		t.Fatalf("partition sizes %d+%d, want 100", len(trainIdx), len(valIdx))
	}

	valByClass := map[int]int{}
	for _, i := range valIdx {
		valByClass[labels[i]]++
	}
	if got := valByClass[0]; int(math.Abs(float64(got-12))) > 1 {
		t.Errorf("class 0 val count = %d, want 12 +/- 1", got)
	}
	if got := valByClass[1]; int(math.Abs(float64(got-8))) > 1 {
		t.Errorf("class 1 val count = %d, want 8 +/- 1", got)
	}

	// No index appears in both partitions
	seen := map[int]bool{}
	for _, i := range trainIdx {
		seen[i] = true
	}
	for _, i := range valIdx {
		if seen[i] {
			t.Fatalf("index %d in both partitions", i)
		}
	}
}

func TestStratifiedSplitDeterministic(t *testing.T) {
	labels := []int{0, 0, 0, 1, 1, 1, 1, 0, 1, 0}

	train1, val1, err := StratifiedSplit(labels, 0.3, 7)
	if err != nil {
		t.Fatal(err)
	}
	train2, val2, err := StratifiedSplit(labels, 0.3, 7)
	if err != nil {
		t.Fatal(err)
	}

	if len(train1) != len(train2) || len(val1) != len(val2) {
		t.Fatal("partition sizes differ across runs")
	}
	for i := range train1 {
		if train1[i] != train2[i] {
			t.Fatal("train indices differ across runs")
		}
	}
	for i := range val1 {
		if val1[i] != val2[i] {
			t.Fatal("val indices differ across runs")
		}
	}
}

func TestStratifiedSplitEachClassRepresented(t *testing.T) {
	// Two members per class: each side gets exactly one
	labels := []int{0, 0, 1, 1, 2, 2}

	trainIdx, valIdx, err := StratifiedSplit(labels, 0.2, 42)
	if err != nil {
		t.Fatalf("StratifiedSplit: %v", err)
	}

	trainClasses := map[int]int{}
	for _, i := range trainIdx {
		trainClasses[labels[i]]++
	}
	valClasses := map[int]int{}
	for _, i := range valIdx {
		valClasses[labels[i]]++
	}
	for class := 0; class < 3; class++ {
		if trainClasses[class] != 1 || valClasses[class] != 1 {
			t.Errorf("class %d split %d/%d, want 1/1", class, trainClasses[class], valClasses[class])
		}
	}
}

func TestStratifiedSplitSingletonClass(t *testing.T) {
	labels := []int{0, 0, 0, 1}

	_, _, err := StratifiedSplit(labels, 0.2, 42)
	if err == nil {
		t.Fatal("expected error for singleton class")
	}

	var stratifyErr *StratifyError
	if !errors.As(err, &stratifyErr) {
		t.Fatalf("error type = %T, want *StratifyError", err)
	}
	if stratifyErr.Class != 1 || stratifyErr.Count != 1 {
		t.Errorf("StratifyError = %+v", stratifyErr)
	}
}
