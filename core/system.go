package core

// System holds the runtime identity of this deployment.
type System struct {
	// ClientID is the custody wallet identity transfers are sent from
	ClientID string
	// PriceThreshold is the minimum number of feed signers per tick
	PriceThreshold uint8
	Version        string
}
