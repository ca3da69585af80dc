package event

// Receipt confirms that the broker durably accepted an envelope.
type Receipt struct {
	EventID   string `json:"eventId"`
	Type      Type   `json:"type"`
	Topic     string `json:"topic"`
	Partition int32  `json:"partition"`
	Offset    int64  `json:"offset"`
	Key       string `json:"key"`
}
