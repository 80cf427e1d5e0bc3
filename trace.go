package chainz

import "context"

// Test runs a single record through the chain with tracing enabled. The
// returned Result carries a Flow entry for every node that completed, each
// holding a deep copy of the record as that node produced it.
//
// When exportPath is not empty the full Result is written there, replacing
// any existing file; see FormatFor for the supported formats. Test initializes
// the pipeline lazily, like Process, and fails after Exit.
func (p *Pipeline) Test(ctx context.Context, record Record, exportPath string) (Result, error) {
	p.mu.Lock()
	if err := p.ready(ctx, "test"); err != nil {
		p.mu.Unlock()
		return Result{}, err
	}
	result, _ := p.run(ctx, record, true)
	p.mu.Unlock()

	if exportPath == "" {
		return result, nil
	}
	return result, Export(exportPath, result)
}
