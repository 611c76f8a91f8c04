package mastery

// Status represents an item's position in the mastery lifecycle.
// It is always derived from strength and never stored.
type Status string

const (
	StatusNew       Status = "new"
	StatusLearning  Status = "learning"
	StatusReviewing Status = "reviewing"
	StatusMastered  Status = "mastered"
)

// Strength thresholds for status derivation.
const (
	ReviewingStrength = 2
	MasteredStrength  = 4
)

// StatusOf derives the status of an item from its progress record.
// A nil record means the item has never been reviewed.
func StatusOf(rec *ProgressRecord) Status {
	if rec == nil {
		return StatusNew
	}
	return statusForStrength(rec.Strength)
}

func statusForStrength(strength int) Status {
	switch {
	case strength >= MasteredStrength:
		return StatusMastered
	case strength >= ReviewingStrength:
		return StatusReviewing
	default:
		return StatusLearning
	}
}

// StateTransition records a status change caused by a single review.
type StateTransition struct {
	ItemID string
	From   Status
	To     Status
}

// Transition returns the status change between two records of the same item,
// or nil if the status did not change.
func Transition(before, after *ProgressRecord) *StateTransition {
	from, to := StatusOf(before), StatusOf(after)
	if from == to {
		return nil
	}
	id := ""
	if after != nil {
		id = after.ItemID
	} else if before != nil {
		id = before.ItemID
	}
	return &StateTransition{ItemID: id, From: from, To: to}
}
