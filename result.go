package chainz

import "time"

// Outcome classifies how a record left the pipeline.
type Outcome string

// Outcomes.
const (
	Success  Outcome = "Success"
	Filtered Outcome = "Filtered"
	Failed   Outcome = "Error"
)

// Step is one entry of a trace: the record as it left a node.
type Step struct {
	Data Record `json:"data" yaml:"data" msgpack:"data"`
	Node string `json:"node" yaml:"node" msgpack:"node"`
}

// Result is the outcome of running one record through the pipeline.
//
// Source is a deep copy of the record taken before the first node ran. Data
// is the final value for Success, the value that entered the dropping node
// for Filtered, and the last successfully produced value for Error. Node is
// set for Filtered and Error results, Error only for Error results, and Flow
// only when the record was traced with Pipeline.Test.
type Result struct {
	Source   Record        `json:"source" yaml:"source" msgpack:"source"`
	Data     Record        `json:"data" yaml:"data" msgpack:"data"`
	Err      error         `json:"-" yaml:"-" msgpack:"-"`
	State    Outcome       `json:"state" yaml:"state" msgpack:"state"`
	Node     string        `json:"node,omitempty" yaml:"node,omitempty" msgpack:"node,omitempty"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty" msgpack:"error,omitempty"`
	Flow     []Step        `json:"flow,omitempty" yaml:"flow,omitempty" msgpack:"flow,omitempty"`
	Duration time.Duration `json:"-" yaml:"-" msgpack:"-"`
}

// BatchResult groups results by outcome. Within each bucket results keep the
// order in which their records were submitted. Buckets with no results are
// absent.
type BatchResult map[Outcome][]Result

// Success returns the records that passed every node.
func (b BatchResult) Success() []Result { return b[Success] }

// Filtered returns the records dropped by a node.
func (b BatchResult) Filtered() []Result { return b[Filtered] }

// Errors returns the records that failed in a node.
func (b BatchResult) Errors() []Result { return b[Failed] }

// Len returns the total number of results.
func (b BatchResult) Len() int {
	n := 0
	for _, rs := range b {
		n += len(rs)
	}
	return n
}

// Counts returns the number of results per outcome, including zeros.
func (b BatchResult) Counts() map[Outcome]int {
	return map[Outcome]int{
		Success:  len(b[Success]),
		Filtered: len(b[Filtered]),
		Failed:   len(b[Failed]),
	}
}

func (b BatchResult) add(r Result) {
	b[r.State] = append(b[r.State], r)
}
