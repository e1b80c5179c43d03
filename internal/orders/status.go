package orders

type Status string

// Orders are created completed; the other statuses exist in the data model
// but nothing transitions to them.
const (
	StatusCompleted  Status = "completed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
)

// Step is a checkout session state.
type Step string

const (
	StepDetails  Step = "details"
	StepShipping Step = "shipping"
	StepPayment  Step = "payment"
	StepSuccess  Step = "success"
)

var validNext = map[Step]map[Step]bool{
	StepDetails:  {StepShipping: true},
	StepShipping: {StepPayment: true},
	StepPayment:  {StepSuccess: true},
	StepSuccess:  {},
}

var stepRank = map[Step]int{
	StepDetails:  0,
	StepShipping: 1,
	StepPayment:  2,
	StepSuccess:  3,
}

func (s Step) Valid() bool {
	_, ok := stepRank[s]
	return ok
}

func CanAdvance(from, to Step) bool {
	return validNext[from][to]
}

// CanGoBack allows any earlier step, except out of success.
func CanGoBack(from, to Step) bool {
	if from == StepSuccess || !from.Valid() || !to.Valid() {
		return false
	}
	return stepRank[to] < stepRank[from]
}
