package models

// ActivationType reports which transition, if any, a deposit triggered.
type ActivationType string

const (
	ActivationNone  ActivationType = ""
	ActivationBasic ActivationType = "basic"
	ActivationPro   ActivationType = "pro"
)

// DepositResult is returned to the caller after a deposit is applied.
type DepositResult struct {
	Activation     ActivationType
	FrozenUnlocked int64 // frozen cents released by Basic activation
	TotalDeposited int64
	TotalVolume    int64
	Status         AccountStatus
	Balance        Snapshot
}

// RegisterResult is returned after a successful registration.
type RegisterResult struct {
	Account *Account
	Balance Snapshot
}
