package record

// NewTestRecord returns a well-formed record for day with the given
// encounters: no symptoms, no test results, a zero infectiousness trajectory
// and no demographics. Callers adjust fields as needed.
func NewTestRecord(day int, encounters ...Encounter) *Record {
	symptoms := make([][]float32, HistoryDays)
	for i := range symptoms {
		symptoms[i] = make([]float32, NumSymptoms)
	}
	return &Record{
		CurrentDay: day,
		Observed: Observed{
			CandidateEncounters: encounters,
			ReportedSymptoms:    symptoms,
			TestResults:         make([]float32, HistoryDays),
		},
		Unobserved: Unobserved{
			Infectiousness: make([]float32, HistoryDays),
		},
	}
}

// Float returns a pointer to v, for populating optional fields.
func Float(v float64) *float64 {
	return &v
}
