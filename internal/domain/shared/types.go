package shared

// FailureReason names a failure kind in the closed ledger taxonomy
type FailureReason string

const (
	FailureReasonAccountNotFound       FailureReason = "ACCOUNT_NOT_FOUND"
	FailureReasonInvalidAmount         FailureReason = "INVALID_AMOUNT"
	FailureReasonAccountInactive       FailureReason = "ACCOUNT_INACTIVE"
	FailureReasonAccountFrozen         FailureReason = "ACCOUNT_FROZEN"
	FailureReasonInsufficientFunds     FailureReason = "INSUFFICIENT_FUNDS"
	FailureReasonDailyLimitExceeded    FailureReason = "DAILY_LIMIT_EXCEEDED"
	FailureReasonSelfTransfer          FailureReason = "SELF_TRANSFER"
	FailureReasonInvalidInitialDeposit FailureReason = "INVALID_INITIAL_DEPOSIT"
	FailureReasonNonZeroBalance        FailureReason = "NON_ZERO_BALANCE"
	FailureReasonInvalidInput          FailureReason = "INVALID_INPUT"
	FailureReasonDuplicateRequest      FailureReason = "DUPLICATE_REQUEST"
	FailureReasonStorageTimeout        FailureReason = "STORAGE_TIMEOUT"
	FailureReasonStorageConflict       FailureReason = "STORAGE_CONFLICT"
	FailureReasonInvariantViolation    FailureReason = "INVARIANT_VIOLATION"
	FailureReasonUnknownError          FailureReason = "UNKNOWN_ERROR"
)

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
