package player

// State is the lifecycle stage of a stream handle.
type State int

const (
	StateUnknown State = iota
	StateLoading
	StateStopped
	StatePaused
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateStopped:
		return "stopped"
	case StatePaused:
		return "paused"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// Kind is the media category of a stream handle.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnsupported
	KindAudio
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindUnsupported:
		return "unsupported"
	case KindAudio:
		return "audio"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}
