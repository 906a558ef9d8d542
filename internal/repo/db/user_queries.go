package db

const userGetByIDQ = `
SELECT 
	u.id, 
	u.email, 
	u.password,
	u.full_name,
	u.date_of_birth,
	u.address,
	u.created_at, 
	u.updated_at
FROM users u
WHERE u.id = $1
`

const userGetByEmailQ = `
SELECT 
	u.id, 
	u.email, 
	u.password,
	u.full_name,
	u.date_of_birth,
	u.address,
	u.created_at, 
	u.updated_at
FROM users u
WHERE u.email = $1
`

const userCreateQ = `
INSERT INTO users (email, password, full_name, date_of_birth, address) 
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`

const userUpdateQ = `
UPDATE users 
SET full_name = $1, 
	date_of_birth = $2,
	address = $3,
	updated_at = NOW()
WHERE id = $4
`

const userUpdatePasswordQ = `
UPDATE users 
SET password = $1,
	updated_at = NOW()
WHERE id = $2
`
