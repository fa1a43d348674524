package domain

// IterationRecord is one row of a trace. State holds the values named by
// Trace.Columns, in order.
type IterationRecord struct {
	Iteration int       `json:"iteration"`
	State     []float64 `json:"state"`
	Error     float64   `json:"error"`
}

// Trace is the ordered, append-only history of a solve.
type Trace struct {
	Columns []string          `json:"columns"`
	Records []IterationRecord `json:"records"`
}

// Len returns the number of recorded iterations.
func (t Trace) Len() int { return len(t.Records) }

// Errors returns the error column.
func (t Trace) Errors() []float64 {
	out := make([]float64, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.Error
	}
	return out
}

// Last returns the newest record, if any.
func (t Trace) Last() (IterationRecord, bool) {
	if len(t.Records) == 0 {
		return IterationRecord{}, false
	}
	return t.Records[len(t.Records)-1], true
}
