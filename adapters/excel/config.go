package excel

// Columns names the header aliases used to locate the time and value columns.
// Matching is case-insensitive. Without a header row the first column is time
// and the second is the value.
type Columns struct {
	Time     []string
	Exposure []string
	Survival []string
}

// DefaultColumns returns the aliases accepted out of the box
func DefaultColumns() Columns {
	return Columns{
		Time:     []string{"time", "t", "day", "hour"},
		Exposure: []string{"concentration", "conc", "c", "exposure"},
		Survival: []string{"survivors", "survival", "alive", "count", "y", "n"},
	}
}
