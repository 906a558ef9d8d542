package db

const sessionCreateQ = `
INSERT INTO sessions (user_id, name, device_type, os, browser, user_agent, ip, token)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at
`

const sessionListQ = `
SELECT id, user_id, name, device_type, os, browser, user_agent, ip, is_valid, created_at
FROM sessions
WHERE user_id = $1 AND is_valid = TRUE
ORDER BY created_at, id
`

const sessionRevokeQ = `
UPDATE sessions
SET is_valid = FALSE, revoked_at = COALESCE(revoked_at, NOW())
WHERE id = $1 AND user_id = $2
`

const sessionRevokeAllQ = `
UPDATE sessions
SET is_valid = FALSE, revoked_at = NOW()
WHERE user_id = $1 AND is_valid = TRUE
`

const sessionIsLiveQ = `
SELECT is_valid FROM sessions WHERE token = $1
`
