package process

// Option customises a new process
type Option func(p *Process)

// WithPriority sets the initial priority
func WithPriority(priority int) Option {
	return func(p *Process) {
		p.priority = priority
	}
}

// WithWork sets the callback invoked on every dispatch
func WithWork(work Work) Option {
	return func(p *Process) {
		p.work = work
	}
}

// WithState sets the initial state, e.g. to register an already blocked process
func WithState(state State) Option {
	return func(p *Process) {
		p.state = state
	}
}
