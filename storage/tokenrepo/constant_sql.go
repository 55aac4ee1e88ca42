package tokenrepo

const (
	sqlUpsertToken = `
		INSERT INTO device_tokens (id, token, user_id, topics, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (token)
		DO UPDATE SET
		    user_id = EXCLUDED.user_id,
		    updated_at = EXCLUDED.updated_at
		RETURNING *;
`

	sqlGetByToken = `SELECT * FROM device_tokens WHERE token = $1 LIMIT 1;`

	sqlListTokens = `
		SELECT * FROM device_tokens
		WHERE ($1 = '' OR user_id = $1) AND ($2 = '' OR $2 = ANY(topics)) AND id > $3
		ORDER BY id ASC LIMIT $4;
`

	sqlDeleteToken = `DELETE FROM device_tokens WHERE token = $1 RETURNING *;`

	// array_remove first so a topic is never stored twice
	sqlAddTopic = `
		UPDATE device_tokens SET topics = array_append(array_remove(topics, $2::VARCHAR), $2::VARCHAR), updated_at = $3
		WHERE token = $1 RETURNING *;
`

	sqlRemoveTopic = `UPDATE device_tokens SET topics = array_remove(topics, $2::VARCHAR), updated_at = $3 WHERE token = $1 RETURNING *;`
)
