package subject

// Metrics observes the traffic of a subject.
type Metrics interface {
	// Published counts a publish call accepted by the subject.
	Published(subject, name string)
	// Delivered counts one successful listener invocation.
	Delivered(subject, name string)
	// Failed counts a listener error that did not evict it.
	Failed(subject, name string)
	// Evicted counts a subscription removed after a transport failure.
	Evicted(subject string)
}

type nopMetrics struct{}

func (nopMetrics) Published(string, string) {}
func (nopMetrics) Delivered(string, string) {}
func (nopMetrics) Failed(string, string)    {}
func (nopMetrics) Evicted(string)           {}
