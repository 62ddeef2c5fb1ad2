package dataset

import (
	"fmt"
	"math/rand"
	"sort"
)

// StratifyError reports that a stratified split is impossible because a
// class has too few members.
type StratifyError struct {
	Class int
	Count int
}

func (e *StratifyError) Error() string {
	return fmt.Sprintf("cannot stratify split: class %d has only %d member(s), need at least 2", e.Class, e.Count)
}

// StratifiedSplit partitions indices 0..len(labels)-1 into train and
// validation sets so each class keeps its relative frequency in both, within
// one sample. The shuffle is seeded, so the split is reproducible.
func StratifiedSplit(labels []int, valFraction float64, seed int64) (trainIdx, valIdx []int, err error) {
	if len(labels) == 0 {
		return nil, nil, fmt.Errorf("cannot split empty label set")
	}
	if valFraction <= 0 || valFraction >= 1 {
		return nil, nil, fmt.Errorf("validation fraction %.3f out of range (0, 1)", valFraction)
	}

	byClass := make(map[int][]int)
	for i, label := range labels {
		byClass[label] = append(byClass[label], i)
	}

	classes := make([]int, 0, len(byClass))
	for class := range byClass {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	for _, class := range classes {
		if len(byClass[class]) < 2 {
			return nil, nil, &StratifyError{Class: class, Count: len(byClass[class])}
		}
	}

	rng := rand.New(rand.NewSource(seed))

	for _, class := range classes {
		members := byClass[class]
		rng.Shuffle(len(members), func(i, j int) {
			members[i], members[j] = members[j], members[i]
		})

		valCount := int(float64(len(members))*valFraction + 0.5)
		// Keep at least one member on each side
		if valCount < 1 {
			valCount = 1
		}
		if valCount >= len(members) {
			valCount = len(members) - 1
		}

		valIdx = append(valIdx, members[:valCount]...)
		trainIdx = append(trainIdx, members[valCount:]...)
	}

	sort.Ints(trainIdx)
	sort.Ints(valIdx)
	return trainIdx, valIdx, nil
}
