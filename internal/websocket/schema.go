package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionStart  Action = "start"
	ActionSample Action = "sample"
	ActionAnswer Action = "answer"
	ActionSubmit Action = "submit"
	ActionPing   Action = "ping"
)

// RequestPayload is the single client message shape; the action field
// selects which of the remaining fields are meaningful.
type RequestPayload struct {
	Action Action `json:"action"`

	// start
	StudentName   string  `json:"student_name,omitempty"`
	StudentEmail  *string `json:"student_email,omitempty"`
	CameraGranted bool    `json:"camera_granted,omitempty"`

	// sample
	FaceCount int `json:"face_count,omitempty"`

	// answer
	Question int `json:"question,omitempty"`
	Option   int `json:"option,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventStarted    Event = "started"
	EventWarning    Event = "warning"
	EventTerminated Event = "terminated"
	EventSubmitted  Event = "submitted"
	EventError      Event = "error"
	EventPong       Event = "pong"
)

// StartedResponse confirms the session is live and the countdown armed.
// SampleIntervalMS tells the client how often to report face counts.
type StartedResponse struct {
	Event            Event  `json:"event"`
	SessionID        string `json:"session_id"`
	DurationSeconds  int    `json:"duration_seconds"`
	SampleIntervalMS int    `json:"sample_interval_ms"`
	MaxWarnings      int    `json:"max_warnings"`
}

// WarningResponse notifies the student of a raised violation.
type WarningResponse struct {
	Event       Event  `json:"event"`
	Kind        string `json:"kind"`
	Warning     int    `json:"warning"`
	MaxWarnings int    `json:"max_warnings"`
}

// TerminatedResponse announces forced termination after the final warning.
type TerminatedResponse struct {
	Event        Event `json:"event"`
	WarningCount int   `json:"warning_count"`
}

// SubmittedResponse confirms the attempt was persisted.
type SubmittedResponse struct {
	Event         Event  `json:"event"`
	Reason        string `json:"reason"`
	WasTerminated bool   `json:"was_terminated"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
