// Package verify classifies participants by their incoming trust count
package verify

// DefaultThreshold is the number of incoming trusts a participant needs to be verified
const DefaultThreshold = 3

// Status is the derived membership status of a participant
type Status string

const (
	// StatusVerified marks a participant at or above the threshold
	StatusVerified Status = "verified"
	// StatusRegistered marks a participant below the threshold
	StatusRegistered Status = "registered"
)

// Classification is the result of classifying one trust count
type Classification struct {
	Verified     bool   `json:"verified"`
	Status       Status `json:"status"`
	NeededTrusts int    `json:"needed_trusts"`
}

// Classifier maps trust counts to a Classification
// a zero Threshold means DefaultThreshold
type Classifier struct {
	Threshold int
}

func (c Classifier) threshold() int {
	if c.Threshold <= 0 {
		return DefaultThreshold
	}
	return c.Threshold
}

// Classify maps an incoming trust count to its status
func (c Classifier) Classify(incoming int) Classification {
	th := c.threshold()
	if incoming >= th {
		return Classification{Verified: true, Status: StatusVerified}
	}
	return Classification{Status: StatusRegistered, NeededTrusts: max(0, th-incoming)}
}

// NeededTrusts returns how many more incoming trusts are missing for verification
func (c Classifier) NeededTrusts(incoming int) int {
	return c.Classify(incoming).NeededTrusts
}

// Classify uses the default threshold
func Classify(incoming int) Classification { return Classifier{}.Classify(incoming) }
