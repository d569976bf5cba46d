package wizard

// Step identifies one stage of the import wizard. Steps run in a fixed
// forward order; every step except the first is reachable backward.
type Step string

const (
	StepUpload    Step = "upload"
	StepValidate  Step = "validate"
	StepAggregate Step = "aggregate"
	StepResolve   Step = "resolve"
	StepPreview   Step = "preview"
)

// Order lists the steps in forward order.
func Order() []Step {
	return []Step{StepUpload, StepValidate, StepAggregate, StepResolve, StepPreview}
}

// IsValid checks if the step is a recognized value.
func (s Step) IsValid() bool {
	switch s {
	case StepUpload, StepValidate, StepAggregate, StepResolve, StepPreview:
		return true
	}
	return false
}

// Index returns the step's position in the forward order, or -1.
func (s Step) Index() int {
	for i, step := range Order() {
		if step == s {
			return i
		}
	}
	return -1
}
