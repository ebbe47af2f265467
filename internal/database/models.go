package database

// Session represents one progression run.
type Session struct {
	ID         string
	StartTime  string
	EndTime    *string
	Status     string // "running", "completed" or "stopped"
	TotalSteps int
	DataSource string // "csv" or "demo"
	FileName   *string
	CreatedAt  *string
}

// Result holds the stored assessment for one processed reading.
type Result struct {
	ID         int64
	SessionID  string
	StepNumber int
	Timestamp  string

	// Input data
	WorkHours     float64
	NearMissCount int
	MachineUsage  string
	ShiftType     string

	// Assessment
	RiskScore       int
	RiskLevel       string
	Factors         []string
	Confidence      float64
	Insights        []string
	Recommendations []string

	CreatedAt *string
}

// AlertRecord is a stored high-risk alert.
type AlertRecord struct {
	ID             int64
	SessionID      string
	Title          string
	Message        string
	RiskScore      int
	RiskLevel      string
	TriggeredAt    string
	AcknowledgedAt *string
	CreatedAt      *string
}

// Stats contains aggregate database statistics.
type Stats struct {
	TotalSessions     int
	CompletedSessions int
	TotalResults      int
	HighRiskResults   int
	TotalAlerts       int
	OpenAlerts        int
}
