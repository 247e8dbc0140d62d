package profile

import "sort"

// ClassRow is one student's line in the class overview.
type ClassRow struct {
	StudentID  string
	Accuracy   float64
	MeanTime   float64
	Attempts   int
	Level      Level
	Label      Label
	Strengths  int
	Weaknesses int
}

// ClassOverview summarises a cohort of profiles.
type ClassOverview struct {
	// Rows is ordered by student ID.
	Rows        []ClassRow
	LevelCounts map[Level]int
	// MeanAccuracy is the unweighted mean of the students' accuracies.
	MeanAccuracy float64
}

// ClassSummary builds the class overview table.
func ClassSummary(profiles []StudentProfile) ClassOverview {
	ov := ClassOverview{
		Rows:        make([]ClassRow, 0, len(profiles)),
		LevelCounts: make(map[Level]int, len(AllLevels())),
	}
	for _, l := range AllLevels() {
		ov.LevelCounts[l] = 0
	}

	total := 0.0
	for _, sp := range profiles {
		ov.Rows = append(ov.Rows, ClassRow{
			StudentID:  sp.Summary.StudentID,
			Accuracy:   sp.Summary.Accuracy,
			MeanTime:   sp.Summary.MeanTime,
			Attempts:   sp.Summary.Attempts,
			Level:      sp.Level,
			Label:      sp.Label,
			Strengths:  len(sp.Strengths()),
			Weaknesses: len(sp.Weaknesses()),
		})
		ov.LevelCounts[sp.Level]++
		total += sp.Summary.Accuracy
	}
	sort.Slice(ov.Rows, func(i, j int) bool { return ov.Rows[i].StudentID < ov.Rows[j].StudentID })
	if len(profiles) > 0 {
		ov.MeanAccuracy = total / float64(len(profiles))
	}
	return ov
}
