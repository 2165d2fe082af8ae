package core

// NextSequenceStep returns the step a lead moves to after a successful
// send. Advancement is one step at a time; ghost_2_sent is the last
// automatic stage and replied is out-of-band, so both are fixed points.
func NextSequenceStep(current SequenceStep) SequenceStep {
	switch current {
	case StepInitial:
		return StepGhost1
	case StepGhost1:
		return StepGhost2
	case StepGhost2:
		return StepGhost2
	case StepReplied:
		return StepReplied
	default:
		return StepInitial
	}
}
