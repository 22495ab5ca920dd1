package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                   sync.Mutex
	proposalsCreated     int
	proposalResponses    int
	duplicateResponses   int
	scoresFinalized      int
	forfeitsResolved     int
	weeklyRuns           int
	matchmakingDurations []float64
	notifSent            int
	notifFailed          int
	startupTime          float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		matchmakingDurations: make([]float64, 0),
	}
}

func (m *Mock) IncProposalsCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proposalsCreated++
}

func (m *Mock) IncProposalResponses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proposalResponses++
}

func (m *Mock) IncDuplicateResponses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duplicateResponses++
}

func (m *Mock) IncScoresFinalized() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scoresFinalized++
}

func (m *Mock) IncForfeitsResolved() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forfeitsResolved++
}

func (m *Mock) IncWeeklyRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.weeklyRuns++
}

func (m *Mock) ObserveMatchmakingDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchmakingDurations = append(m.matchmakingDurations, duration)
}

func (m *Mock) IncNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifSent++
}

func (m *Mock) IncNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// ProposalsCreated returns the number of times IncProposalsCreated was called.
func (m *Mock) ProposalsCreated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.proposalsCreated
}

// ProposalResponses returns the number of times IncProposalResponses was called.
func (m *Mock) ProposalResponses() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.proposalResponses
}

// DuplicateResponses returns the number of times IncDuplicateResponses was called.
func (m *Mock) DuplicateResponses() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duplicateResponses
}

// ScoresFinalized returns the number of times IncScoresFinalized was called.
func (m *Mock) ScoresFinalized() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scoresFinalized
}

// ForfeitsResolved returns the number of times IncForfeitsResolved was called.
func (m *Mock) ForfeitsResolved() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.forfeitsResolved
}

// WeeklyRuns returns the number of times IncWeeklyRuns was called.
func (m *Mock) WeeklyRuns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.weeklyRuns
}

// NotifSent returns the number of times IncNotifSent was called.
func (m *Mock) NotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifSent
}

// NotifFailed returns the number of times IncNotifFailed was called.
func (m *Mock) NotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifFailed
}
