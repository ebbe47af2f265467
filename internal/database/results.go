package database

import "encoding/json"

// InsertResult stores the assessment for one processed reading.
func (db *DB) InsertResult(r Result) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO results
		(session_id, step_number, timestamp, work_hours, near_miss_count, machine_usage,
		 shift_type, risk_score, risk_level, factors, confidence, insights, recommendations)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.StepNumber, r.Timestamp, r.WorkHours, r.NearMissCount, r.MachineUsage,
		r.ShiftType, r.RiskScore, r.RiskLevel,
		marshalStrings(r.Factors), r.Confidence,
		marshalStrings(r.Insights), marshalStrings(r.Recommendations),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetSessionResults returns a session's results in step order.
func (db *DB) GetSessionResults(sessionID string) ([]Result, error) {
	rows, err := db.conn.Query(
		`SELECT id, session_id, step_number, timestamp, work_hours, near_miss_count,
		 machine_usage, shift_type, risk_score, risk_level, factors, confidence,
		 insights, recommendations, created_at
		FROM results WHERE session_id = ? ORDER BY step_number ASC`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var factors, insights, recommendations *string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.StepNumber, &r.Timestamp,
			&r.WorkHours, &r.NearMissCount, &r.MachineUsage, &r.ShiftType,
			&r.RiskScore, &r.RiskLevel, &factors, &r.Confidence,
			&insights, &recommendations, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Factors = unmarshalStrings(factors)
		r.Insights = unmarshalStrings(insights)
		r.Recommendations = unmarshalStrings(recommendations)
		results = append(results, r)
	}
	return results, rows.Err()
}

func marshalStrings(values []string) *string {
	if len(values) == 0 {
		return nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	s := string(data)
	return &s
}

func unmarshalStrings(data *string) []string {
	if data == nil || *data == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(*data), &values); err != nil {
		return nil
	}
	return values
}
