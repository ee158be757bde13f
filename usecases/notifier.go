package usecases

// Events published to the real-time channel.
const (
	EventAgentUpdated      = "agentUpdated"
	EventCommandQueued     = "commandQueued"
	EventCommandsDelivered = "commandsDelivered"
	EventCommandResult     = "commandResult"
	EventMetricsUpdated    = "metricsUpdated"
)

// Notifier receives state changes for real-time subscribers. Publish must
// not block; dispatch never waits on it.
type Notifier interface {
	Publish(event string, payload any)
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, any) {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
