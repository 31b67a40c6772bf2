package domain

// Capabilities describes what a role level may do. Callers ask the
// capability set instead of branching on the level.
type Capabilities interface {
	Level() Level
	// ManageStudents covers approving links, viewing a roster and creating plans.
	ManageStudents() bool
	SendSuggestions() bool
	// RequestEvaluations allows opening tasks/evaluations as a student.
	RequestEvaluations() bool
	// ManageTasks allows scheduling, rejecting and completing tasks/evaluations.
	ManageTasks() bool
	ViewDashboard() bool
	CreateStudentAccounts() bool
}

type studentCapabilities struct{}

func (studentCapabilities) Level() Level                { return LevelStudent }
func (studentCapabilities) ManageStudents() bool        { return false }
func (studentCapabilities) SendSuggestions() bool       { return false }
func (studentCapabilities) RequestEvaluations() bool    { return true }
func (studentCapabilities) ManageTasks() bool           { return false }
func (studentCapabilities) ViewDashboard() bool         { return false }
func (studentCapabilities) CreateStudentAccounts() bool { return false }

type trainerCapabilities struct{}

func (trainerCapabilities) Level() Level                { return LevelTrainer }
func (trainerCapabilities) ManageStudents() bool        { return true }
func (trainerCapabilities) SendSuggestions() bool       { return true }
func (trainerCapabilities) RequestEvaluations() bool    { return false }
func (trainerCapabilities) ManageTasks() bool           { return true }
func (trainerCapabilities) ViewDashboard() bool         { return false }
func (trainerCapabilities) CreateStudentAccounts() bool { return true }

type adminCapabilities struct{}

func (adminCapabilities) Level() Level                { return LevelAdmin }
func (adminCapabilities) ManageStudents() bool        { return false }
func (adminCapabilities) SendSuggestions() bool       { return false }
func (adminCapabilities) RequestEvaluations() bool    { return false }
func (adminCapabilities) ManageTasks() bool           { return false }
func (adminCapabilities) ViewDashboard() bool         { return true }
func (adminCapabilities) CreateStudentAccounts() bool { return true }

// noCapabilities is returned for unknown levels.
type noCapabilities struct{ level Level }

func (n noCapabilities) Level() Level              { return n.level }
func (noCapabilities) ManageStudents() bool        { return false }
func (noCapabilities) SendSuggestions() bool       { return false }
func (noCapabilities) RequestEvaluations() bool    { return false }
func (noCapabilities) ManageTasks() bool           { return false }
func (noCapabilities) ViewDashboard() bool         { return false }
func (noCapabilities) CreateStudentAccounts() bool { return false }

// CapabilitiesFor returns the capability set for a role level.
func CapabilitiesFor(level Level) Capabilities {
	switch level {
	case LevelStudent:
		return studentCapabilities{}
	case LevelTrainer:
		return trainerCapabilities{}
	case LevelAdmin:
		return adminCapabilities{}
	}
	return noCapabilities{level: level}
}
