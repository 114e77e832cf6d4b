package domain

// SessionStatus is the lifecycle of one analysis session.
type SessionStatus string

const (
	SessionIdle      SessionStatus = "idle"
	SessionAnalyzing SessionStatus = "analyzing"
	SessionDone      SessionStatus = "done"
)

// Session is the state of an analysis as seen by a caller. It is passed by
// value; transitions return a new Session.
type Session struct {
	Status SessionStatus   `json:"status"`
	Input  string          `json:"input,omitempty"`
	Seq    uint64          `json:"seq"`
	Result *AnalysisResult `json:"result,omitempty"`
	Err    error           `json:"-"`
}

// Begin starts a new analysis for input, superseding any in-flight one.
func (s Session) Begin(input string) Session {
	return Session{
		Status: SessionAnalyzing,
		Input:  input,
		Seq:    s.Seq + 1,
	}
}

// Complete applies the outcome of the analysis identified by seq and input.
// Results for anything but the live analysis are dropped and ok is false.
func (s Session) Complete(seq uint64, input string, result *AnalysisResult, err error) (next Session, ok bool) {
	if s.Status != SessionAnalyzing || s.Seq != seq || s.Input != input {
		return s, false
	}
	s.Status = SessionDone
	if err != nil {
		s.Err = err
		s.Result = nil
		return s, true
	}
	s.Result = result
	return s, true
}

// ErrMessage returns the failure message of a finished session, if any.
func (s Session) ErrMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}
