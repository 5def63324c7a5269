// Package agent builds named search engines from configuration strings.
package agent

import "checkers/searcher"

type Agent interface {
	searcher.Engine
	// Name is the configuration string the agent was built from.
	Name() string
}
