package postgres

const queryAdvisoryLock = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`

const progressColumns = `user_id, total_points, total_co2_saved_kg, current_streak, longest_streak,
	last_active_date_key, missions_completed, compliance_on_time, pollution_reports, created_at, updated_at`

const queryGetProgress = `SELECT ` + progressColumns + ` FROM user_progress WHERE user_id = $1`

const queryGetBadges = `SELECT badge_id, earned_at FROM user_badges WHERE user_id = $1 ORDER BY earned_at, badge_id`

const queryEnsureProgress = `INSERT INTO user_progress (user_id, created_at, updated_at)
	VALUES ($1, $2, $2)
	ON CONFLICT (user_id) DO NOTHING`

const queryCreditPoints = `INSERT INTO user_progress (user_id, total_points, created_at, updated_at)
	VALUES ($1, $2, $3, $3)
	ON CONFLICT (user_id) DO UPDATE SET
		total_points = user_progress.total_points + EXCLUDED.total_points,
		updated_at = EXCLUDED.updated_at`

// queryApplyDelta adds the delta to the aggregate. A zero streak leaves the
// streak and its date untouched.
const queryApplyDelta = `INSERT INTO user_progress (user_id, total_points, total_co2_saved_kg, current_streak, longest_streak,
		last_active_date_key, missions_completed, compliance_on_time, pollution_reports, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $4, $5, $6, $7, $8, $9, $9)
	ON CONFLICT (user_id) DO UPDATE SET
		total_points = user_progress.total_points + EXCLUDED.total_points,
		total_co2_saved_kg = user_progress.total_co2_saved_kg + EXCLUDED.total_co2_saved_kg,
		current_streak = CASE WHEN EXCLUDED.current_streak > 0 THEN EXCLUDED.current_streak ELSE user_progress.current_streak END,
		longest_streak = GREATEST(user_progress.longest_streak, EXCLUDED.longest_streak),
		last_active_date_key = CASE WHEN EXCLUDED.current_streak > 0 THEN EXCLUDED.last_active_date_key ELSE user_progress.last_active_date_key END,
		missions_completed = user_progress.missions_completed + EXCLUDED.missions_completed,
		compliance_on_time = user_progress.compliance_on_time + EXCLUDED.compliance_on_time,
		pollution_reports = user_progress.pollution_reports + EXCLUDED.pollution_reports,
		updated_at = EXCLUDED.updated_at
	RETURNING ` + progressColumns

const actionColumns = `user_id, kind, action_ref, subject, date_key, points_awarded, co2_saved_awarded,
	streak_after, completed_at, settled`

const queryGetAction = `SELECT ` + actionColumns + ` FROM action_records
	WHERE user_id = $1 AND kind = $2 AND action_ref = $3`

const queryInsertAction = `INSERT INTO action_records (` + actionColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE)`

const queryCountKindOnDay = `SELECT COUNT(*) FROM action_records
	WHERE user_id = $1 AND kind = $2 AND date_key = $3`

const queryMarkSettled = `UPDATE action_records SET settled = TRUE
	WHERE user_id = $1 AND kind = $2 AND action_ref = $3`

const queryInsertBadge = `INSERT INTO user_badges (user_id, badge_id, earned_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (user_id, badge_id) DO NOTHING`

const queryTouchProgress = `UPDATE user_progress SET updated_at = $2 WHERE user_id = $1`

const queryInsertBonusClaim = `INSERT INTO bonus_claims (user_id, claim_key, points, claimed_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (user_id, claim_key) DO NOTHING`

const queryMissionSubjectsOnDay = `SELECT subject FROM action_records
	WHERE user_id = $1 AND kind = 'mission' AND date_key = $2
	ORDER BY seq`

const queryRecentMissionSubjects = `SELECT subject FROM action_records
	WHERE user_id = $1 AND kind = 'mission' AND date_key < $2
	ORDER BY seq DESC
	LIMIT $3`

const queryActiveUsersSince = `SELECT DISTINCT user_id FROM action_records
	WHERE completed_at >= $1
	ORDER BY user_id`
