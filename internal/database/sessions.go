package database

import "database/sql"

// InsertSession creates a new session record.
func (db *DB) InsertSession(s Session) error {
	_, err := db.conn.Exec(
		`INSERT INTO sessions (id, start_time, end_time, status, total_steps, data_source, file_name)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.StartTime, s.EndTime, s.Status, s.TotalSteps, s.DataSource, s.FileName,
	)
	return err
}

// UpdateSessionStatus sets the status and end time of a session.
func (db *DB) UpdateSessionStatus(id, status string, endTime *string) error {
	_, err := db.conn.Exec(
		"UPDATE sessions SET status = ?, end_time = ? WHERE id = ?",
		status, endTime, id,
	)
	return err
}

// GetSession returns one session, or nil if it does not exist.
func (db *DB) GetSession(id string) (*Session, error) {
	row := db.conn.QueryRow(
		`SELECT id, start_time, end_time, status, total_steps, data_source, file_name, created_at
		FROM sessions WHERE id = ?`, id,
	)

	var s Session
	if err := row.Scan(&s.ID, &s.StartTime, &s.EndTime, &s.Status,
		&s.TotalSteps, &s.DataSource, &s.FileName, &s.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// GetRecentSessions returns the most recent sessions, newest first.
func (db *DB) GetRecentSessions(limit int) ([]Session, error) {
	rows, err := db.conn.Query(
		`SELECT id, start_time, end_time, status, total_steps, data_source, file_name, created_at
		FROM sessions ORDER BY created_at DESC, start_time DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.StartTime, &s.EndTime, &s.Status,
			&s.TotalSteps, &s.DataSource, &s.FileName, &s.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
