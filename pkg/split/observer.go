package split

// Observer is notified of sync outcomes, e.g. to count them in metrics.
type Observer interface {
	// SyncSent reports a send attempt; err is nil on success.
	SyncSent(err error)

	// SyncReceived reports a received message. applied is true when the local
	// settings changed; err is non-nil for a dropped message.
	SyncReceived(applied bool, err error)
}

type noopObserver struct{}

func (noopObserver) SyncSent(error) {}
func (noopObserver) SyncReceived(bool, error) {}
