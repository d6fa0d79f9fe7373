package domain

// DeleteOutcome is the result of one delete in a batch; Err is nil on success.
type DeleteOutcome struct {
	ID  string
	Err error
}

type BatchResult struct {
	Outcomes []DeleteOutcome
}

func (r BatchResult) Deleted() []string {
	out := make([]string, 0, len(r.Outcomes))
	for _, outcome := range r.Outcomes {
		if outcome.Err == nil {
			out = append(out, outcome.ID)
		}
	}
	return out
}

func (r BatchResult) Failed() []DeleteOutcome {
	var out []DeleteOutcome
	for _, outcome := range r.Outcomes {
		if outcome.Err != nil {
			out = append(out, outcome)
		}
	}
	return out
}

func (r BatchResult) FailedIDs() []string {
	failed := r.Failed()
	out := make([]string, 0, len(failed))
	for _, outcome := range failed {
		out = append(out, outcome.ID)
	}
	return out
}

// Partial is true when some deletes landed and some did not, which leaves the
// local copy out of step with the server.
func (r BatchResult) Partial() bool {
	failed := len(r.Failed())
	return failed > 0 && failed < len(r.Outcomes)
}
