package pipeline

import "fmt"

// Action is a named pipeline action.
type Action int

const (
	ActionUnknown Action = iota
	ActionCSRFProtection
	ActionLoadCSRFToken
	ActionRenderTemplate
	ActionTerminate
)

// Phase is the part of a pipeline an action belongs to.
type Phase int

const (
	PhasePre Phase = iota + 1
	PhaseReq
)

func (p Phase) String() string {
	switch p {
	case PhasePre:
		return "pre"
	case PhaseReq:
		return "req"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

type actionSpec struct {
	id    string
	phase Phase
}

var actionTable = map[Action]actionSpec{
	ActionCSRFProtection: {id: "csrfProtection", phase: PhasePre},
	ActionLoadCSRFToken:  {id: "ejsLoadCsrfToken", phase: PhasePre},
	ActionRenderTemplate: {id: "ejsRenderAndSendTemplate", phase: PhaseReq},
	ActionTerminate:      {id: "terminate", phase: PhaseReq},
}

var actionsByID = func() map[string]Action {
	m := make(map[string]Action, len(actionTable))
	for a, spec := range actionTable {
		m[spec.id] = a
	}
	return m
}()

// Actions returns every known action in declaration order.
func Actions() []Action {
	return []Action{ActionCSRFProtection, ActionLoadCSRFToken, ActionRenderTemplate, ActionTerminate}
}

// ParseAction looks up an action by its configuration id.
func ParseAction(id string) (Action, bool) {
	a, ok := actionsByID[id]
	return a, ok
}

// String returns the configuration id of the action.
func (a Action) String() string {
	if spec, ok := actionTable[a]; ok {
		return spec.id
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Phase returns the phase the action belongs to, or 0 for unknown actions.
func (a Action) Phase() Phase {
	return actionTable[a].phase
}

// ActionIDs converts actions back to their configuration ids.
func ActionIDs(actions []Action) []string {
	if len(actions) == 0 {
		return nil
	}
	ids := make([]string, len(actions))
	for i, a := range actions {
		ids[i] = a.String()
	}
	return ids
}
