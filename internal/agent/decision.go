package agent

// Action is the discriminator selecting a Decision variant.
type Action string

const (
	ActionRun    Action = "run"
	ActionDone   Action = "done"
	ActionAsk    Action = "ask"
	ActionSearch Action = "search"
	ActionFetch  Action = "fetch"
)

// knownActions is the closed set of decision variants. Anything else
// fails parser validation and never reaches the dispatcher.
var knownActions = map[Action]bool{
	ActionRun:    true,
	ActionDone:   true,
	ActionAsk:    true,
	ActionSearch: true,
	ActionFetch:  true,
}

// Decision is the single structured instruction produced by the model
// each turn. Only the fields belonging to the selected Action are
// meaningful.
type Decision struct {
	Action   Action `json:"action"`
	Command  string `json:"command,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Summary  string `json:"summary,omitempty"`
	Question string `json:"question,omitempty"`
	Query    string `json:"query,omitempty"`
	URL      string `json:"url,omitempty"`

	// Raw is the original generator text the decision was recovered
	// from. It is appended to the transcript verbatim as the
	// assistant turn.
	Raw string `json:"-"`
}
