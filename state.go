package seedindex

// state is the lifecycle position of an index.
//
// Single-pass:  preAdd -> adding -> frozen
// Two-pass:     preAdd -> counting -> storing -> frozen
//
// The first Add leaves preAdd. Freeze advances counting to storing and
// adding or storing to frozen.
type state uint8

const (
	statePreAdd state = iota
	stateAdding
	stateCounting
	stateStoring
	stateFrozen
)

func (s state) String() string {
	switch s {
	case statePreAdd:
		return "pre-add"
	case stateAdding:
		return "adding"
	case stateCounting:
		return "counting"
	case stateStoring:
		return "storing"
	case stateFrozen:
		return "frozen"
	default:
		return "unknown"
	}
}
