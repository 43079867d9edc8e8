package stats

import (
	"errors"
	"fmt"
)

// Grade ranks a statistic for highlighting.
type Grade int

// Grades from least to most impressive. GradeIrrelevant marks cells that do
// not apply to an area.
const (
	GradeNormal Grade = iota
	GradeIrrelevant
	GradeSubpar
	GradeGood
	GradeBest
)

const maxTotalBerries = 200

// ErrTooManyBerries reports a berry total the game cannot produce.
var ErrTooManyBerries = errors.New("more than 200 berries")

func (g Grade) String() string {
	switch g {
	case GradeIrrelevant:
		return "irrelevant"
	case GradeSubpar:
		return "subpar"
	case GradeGood:
		return "good"
	case GradeBest:
		return "best"
	default:
		return "normal"
	}
}

// BerryGrade grades the save's total berry count.
func BerryGrade(total uint32) (Grade, error) {
	switch {
	case total == 0:
		return GradeSubpar, nil
	case total < 175:
		return GradeNormal, nil
	case total < maxTotalBerries:
		return GradeGood, nil
	case total == maxTotalBerries:
		return GradeBest, nil
	}
	return GradeNormal, fmt.Errorf("%w: %d", ErrTooManyBerries, total)
}

// CountGrade grades a dash or death count; zero is the best possible.
func CountGrade(n uint32) Grade {
	if n == 0 {
		return GradeBest
	}
	return GradeNormal
}

// RedBerryGrade grades A-side red berry progress.
func RedBerryGrade(have, max uint32) Grade {
	switch {
	case have == 0:
		return GradeSubpar
	case have >= max:
		return GradeGood
	}
	return GradeNormal
}
