package postgres

// Error Messages - Transaction Operations
const (
	ErrMsgFailedToBeginTransaction  = "failed to begin transaction"
	ErrMsgFailedToCommitTransaction = "failed to commit transaction"
	ErrMsgFailedToLockUser          = "failed to lock user progress"
)

// Error Messages - Progress Operations
const (
	ErrMsgFailedToGetProgress     = "failed to get user progress"
	ErrMsgFailedToUpdateProgress  = "failed to update user progress"
	ErrMsgFailedToGetAction       = "failed to get action record"
	ErrMsgFailedToInsertAction    = "failed to insert action record"
	ErrMsgFailedToCountActions    = "failed to count actions for day"
	ErrMsgFailedToSettleAction    = "failed to mark action settled"
	ErrMsgFailedToAwardBadges     = "failed to award badges"
	ErrMsgFailedToGetBadges       = "failed to get badges"
	ErrMsgFailedToClaimBonus      = "failed to claim bonus"
	ErrMsgFailedToListMissionRefs = "failed to list mission refs"
	ErrMsgFailedToListActiveUsers = "failed to list active users"
)

// Error Messages - Milestone Operations
const (
	ErrMsgFailedToFindMilestones    = "failed to find active milestones"
	ErrMsgFailedToUpsertMilestone   = "failed to upsert milestone"
	ErrMsgFailedToGetMilestone      = "failed to get milestone"
	ErrMsgFailedToApplyMilestone    = "failed to apply milestone progress"
	ErrMsgFailedToCompleteMilestone = "failed to complete milestone"
	ErrMsgFailedToCountMilestones   = "failed to count completed milestones"
	ErrMsgFailedToExpireMilestones  = "failed to expire milestones"
)

// Error Messages - Challenge Operations
const (
	ErrMsgFailedToFindChallenge     = "failed to find active challenge"
	ErrMsgFailedToUpsertChallenge   = "failed to upsert challenge"
	ErrMsgFailedToApplyChallenge    = "failed to apply challenge contribution"
	ErrMsgFailedToCompleteChallenge = "failed to complete challenge"
	ErrMsgFailedToExpireChallenges  = "failed to expire challenges"
)

// Error Messages - Directory Operations
const (
	ErrMsgFailedToGetCommunity   = "failed to get community membership"
	ErrMsgFailedToSetCommunity   = "failed to set community membership"
	ErrMsgFailedToGetVehicle     = "failed to get vehicle"
	ErrMsgFailedToSetVehicle     = "failed to register vehicle"
	ErrMsgFailedToGetSignal      = "failed to get daily signal"
	ErrMsgFailedToSetSignal      = "failed to store daily signal"
	ErrMsgFailedToGetTokens      = "failed to get device tokens"
	ErrMsgFailedToAddDeviceToken = "failed to add device token"
)
