package database

// ReadMode selects how a table read renders its column list.
type ReadMode int

const (
	// ReadRaw selects every column uncast (SELECT *).
	ReadRaw ReadMode = iota

	// ReadCast casts every catalog column to text.
	ReadCast
)

func (m ReadMode) String() string {
	if m == ReadCast {
		return "cast"
	}
	return "raw"
}

// ReadPlan is the outcome of the catalog probe run before a table read.
// Both paths are valid end states; Degraded marks a raw plan chosen because
// the probe failed on an engine that wanted the cast path.
type ReadPlan struct {
	Mode     ReadMode
	Columns  []string
	Degraded bool
}

// PlanRead decides the read path for dialect d given the probe result.
// Engines without NeedsTextCast always read raw and never need probing;
// a failed or empty probe degrades to raw instead of failing the read.
func PlanRead(d Dialect, columns []string, probeErr error) ReadPlan {
	if !d.NeedsTextCast() {
		return ReadPlan{Mode: ReadRaw}
	}
	if probeErr != nil || len(columns) == 0 {
		return ReadPlan{Mode: ReadRaw, Degraded: true}
	}
	return ReadPlan{Mode: ReadCast, Columns: columns}
}
