package dataset

import "fmt"

// DataLoadError reports a dataset file that is missing, unreadable or does not
// match the expected schema. Row is 1-based over data rows (0 = header or file).
type DataLoadError struct {
	Path   string
	Row    int
	Column string
	Err    error
}

func (e *DataLoadError) Error() string {
	if e == nil {
		return "data load failed"
	}
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("load %s: row %d, column %q: %v", e.Path, e.Row, e.Column, e.Err)
	case e.Row > 0:
		return fmt.Sprintf("load %s: row %d: %v", e.Path, e.Row, e.Err)
	case e.Column != "":
		return fmt.Sprintf("load %s: column %q: %v", e.Path, e.Column, e.Err)
	default:
		return fmt.Sprintf("load %s: %v", e.Path, e.Err)
	}
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// InvalidMonthError reports a month value outside 1..12.
type InvalidMonthError struct {
	Row   int
	Value int
}

func (e *InvalidMonthError) Error() string {
	return fmt.Sprintf("invalid month %d at row %d (want 1..12)", e.Value, e.Row)
}
