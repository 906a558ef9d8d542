package db

const accountCreateQ = `
INSERT INTO accounts (user_id, account_type, email, secret)
VALUES ($1, $2, $3, $4)
RETURNING id
`

const accountListQ = `
SELECT id, user_id, account_type, email, secret, last_modified
FROM accounts
WHERE user_id = $1
ORDER BY last_modified DESC
`

const accountGetQ = `
SELECT id, user_id, account_type, email, secret, last_modified
FROM accounts
WHERE id = $1 AND user_id = $2
`

const accountDeleteQ = `
DELETE FROM accounts
WHERE id = $1 AND user_id = $2
`
