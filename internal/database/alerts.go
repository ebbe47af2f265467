package database

import "database/sql"

// InsertAlert stores a triggered alert.
func (db *DB) InsertAlert(a AlertRecord) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO alerts (session_id, title, message, risk_score, risk_level, triggered_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.SessionID, a.Title, a.Message, a.RiskScore, a.RiskLevel, a.TriggeredAt,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// AcknowledgeAlert stamps an alert as acknowledged.
func (db *DB) AcknowledgeAlert(id int64, acknowledgedAt string) error {
	_, err := db.conn.Exec(
		"UPDATE alerts SET acknowledged_at = ? WHERE id = ?",
		acknowledgedAt, id,
	)
	return err
}

// AcknowledgeSessionAlerts stamps every open alert of a session as
// acknowledged. A run raises at most one alert, but the update is
// written to cover all of them regardless.
func (db *DB) AcknowledgeSessionAlerts(sessionID, acknowledgedAt string) error {
	_, err := db.conn.Exec(
		"UPDATE alerts SET acknowledged_at = ? WHERE session_id = ? AND acknowledged_at IS NULL",
		acknowledgedAt, sessionID,
	)
	return err
}

// GetAlert returns one alert, or nil if it does not exist.
func (db *DB) GetAlert(id int64) (*AlertRecord, error) {
	row := db.conn.QueryRow(
		`SELECT id, session_id, title, message, risk_score, risk_level,
		 triggered_at, acknowledged_at, created_at
		FROM alerts WHERE id = ?`, id,
	)

	var a AlertRecord
	if err := row.Scan(&a.ID, &a.SessionID, &a.Title, &a.Message, &a.RiskScore,
		&a.RiskLevel, &a.TriggeredAt, &a.AcknowledgedAt, &a.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// GetRecentAlerts returns the most recent alerts, newest first.
func (db *DB) GetRecentAlerts(limit int) ([]AlertRecord, error) {
	rows, err := db.conn.Query(
		`SELECT id, session_id, title, message, risk_score, risk_level,
		 triggered_at, acknowledged_at, created_at
		FROM alerts ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []AlertRecord
	for rows.Next() {
		var a AlertRecord
		if err := rows.Scan(&a.ID, &a.SessionID, &a.Title, &a.Message, &a.RiskScore,
			&a.RiskLevel, &a.TriggeredAt, &a.AcknowledgedAt, &a.CreatedAt); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// GetSessionAlerts returns the alerts raised during one session.
func (db *DB) GetSessionAlerts(sessionID string) ([]AlertRecord, error) {
	rows, err := db.conn.Query(
		`SELECT id, session_id, title, message, risk_score, risk_level,
		 triggered_at, acknowledged_at, created_at
		FROM alerts WHERE session_id = ? ORDER BY id ASC`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []AlertRecord
	for rows.Next() {
		var a AlertRecord
		if err := rows.Scan(&a.ID, &a.SessionID, &a.Title, &a.Message, &a.RiskScore,
			&a.RiskLevel, &a.TriggeredAt, &a.AcknowledgedAt, &a.CreatedAt); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// GetStats returns aggregate database statistics.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}

	queries := []struct {
		sql  string
		dest *int
	}{
		{"SELECT COUNT(*) FROM sessions", &s.TotalSessions},
		{"SELECT COUNT(*) FROM sessions WHERE status = 'completed'", &s.CompletedSessions},
		{"SELECT COUNT(*) FROM results", &s.TotalResults},
		{"SELECT COUNT(*) FROM results WHERE risk_level = 'High'", &s.HighRiskResults},
		{"SELECT COUNT(*) FROM alerts", &s.TotalAlerts},
		{"SELECT COUNT(*) FROM alerts WHERE acknowledged_at IS NULL", &s.OpenAlerts},
	}

	for _, q := range queries {
		if err := db.conn.QueryRow(q.sql).Scan(q.dest); err != nil {
			return nil, err
		}
	}

	return s, nil
}
