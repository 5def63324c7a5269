package agent

import "checkers/searcher"

type evaluationAgent struct {
	searcher.Engine
	name string
}

// NewEvaluationAgent names an engine for play in games and tournaments.
func NewEvaluationAgent(name string, engine searcher.Engine) Agent {
	return evaluationAgent{Engine: engine, name: name}
}

func (a evaluationAgent) Name() string {
	return a.name
}
