package notification

// Log messages
const (
	LogMsgNotificationLogged = "Notification (log sender)"
	LogMsgNoDeviceTokens     = "No device tokens for user, skipping push"
	LogMsgPushFailed         = "Push delivery failed"
	LogMsgPushSent           = "Push delivered"
	LogMsgTokenLookupFailed  = "Failed to load device tokens"
)

// Android delivery settings
const (
	androidPriorityHigh = "high"
	androidSoundDefault = "default"
)
