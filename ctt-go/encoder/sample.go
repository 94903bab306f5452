package encoder

import "github.com/kiteco/ctt/ctt-golib/tensor"

// Names of the tensors in an encoded Sample.
const (
	HumanIdx              = "human_idx"
	DayIdx                = "day_idx"
	HealthHistory         = "health_history"
	HealthProfile         = "health_profile"
	InfectiousnessHistory = "infectiousness_history"
	HistoryDays           = "history_days"
	ValidHistoryMask      = "valid_history_mask"
	CurrentCompartment    = "current_compartment"

	EncounterHealth      = "encounter_health"
	EncounterMessage     = "encounter_message"
	EncounterPartnerID   = "encounter_partner_id"
	EncounterDay         = "encounter_day"
	EncounterDuration    = "encounter_duration"
	EncounterIsContagion = "encounter_is_contagion"
)

// SetValuedFields are the tensors whose first dimension is the number of
// encounters. The first entry is the one the collator measures.
var SetValuedFields = []string{
	EncounterHealth,
	EncounterMessage,
	EncounterPartnerID,
	EncounterDay,
	EncounterDuration,
	EncounterIsContagion,
}

// IsSetValued returns true if name is one of SetValuedFields.
func IsSetValued(name string) bool {
	for _, f := range SetValuedFields {
		if f == name {
			return true
		}
	}
	return false
}

// Sample is one encoded human-day.
type Sample map[string]tensor.Tensor

// NumEncounters is the number of encounter rows in the sample.
func (s Sample) NumEncounters() int {
	t, ok := s[SetValuedFields[0]]
	if !ok || t.Rank() == 0 {
		return 0
	}
	return t.Dim(0)
}
