package services

// Pusher is the realtime fan-out surface the services mutate through.
// Delivery is best-effort and fire-and-forget: a push never fails the
// business operation that triggered it, so none of these return errors.
type Pusher interface {
	EmitToUser(userID string, payload interface{})
	EmitToUsers(userIDs []string, payload interface{})
	EmitNetworkSync(networkID, scope string, meta interface{})
	EmitXpUpdate(userID string, payload interface{})
	EmitSocialUpdate(userIDs []string, payload interface{})
	EmitNotificationsUpdate(userID string)
}
