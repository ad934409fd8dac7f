package reflexion

// State is the essay writer's working state. It is saved after every node.
type State struct {
	Topic    string   `yaml:"topic"`
	Outline  string   `yaml:"outline"`
	Output   string   `yaml:"output"`
	Feedback string   `yaml:"feedback"`
	Sources  []string `yaml:"sources"`

	// Iteration counts written drafts, starting at 1 before the first. The writer stops once
	// Iteration exceeds TotalIterations.
	Iteration       int `yaml:"iteration"`
	TotalIterations int `yaml:"total_iterations"`
}

// Node names. The graph is
//
//	plan -> research_plan -> write -> END
//	                           ^   \
//	                           |    review -> research_critique
//	                           +-------------------------/
const (
	NodePlan             = "plan"
	NodeResearchPlan     = "research_plan"
	NodeWrite            = "write"
	NodeReview           = "review"
	NodeResearchCritique = "research_critique"
	NodeEnd              = "END"
)

// Snapshot is the saved state of a thread after a node ran.
type Snapshot struct {
	ThreadID string
	State    State

	// Node is the node that produced State and Next the node a resume would run.
	Node string
	Next string
	Step int
}

// Done reports whether the thread reached END.
func (s *Snapshot) Done() bool {
	return s.Next == NodeEnd
}

func (s *State) applyDefaults() {
	if s.Iteration < 1 {
		s.Iteration = 1
	}
	if s.TotalIterations < 1 {
		s.TotalIterations = DefaultTotalIterations
	}
}

// afterWrite picks the edge out of the write node.
func (s *State) afterWrite() string {
	if s.Iteration > s.TotalIterations {
		return NodeEnd
	}
	return NodeReview
}
