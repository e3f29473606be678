package store

// User represents an account that owns memory records.
type User struct {
	ID           int32
	Username     string
	PasswordHash string
	Role         string // host/user
	CreatedTs    int64
	RowStatus    string // NORMAL/ARCHIVED
}

// FindUser specifies the conditions for finding users.
type FindUser struct {
	ID       *int32
	Username *string
	Role     *string
}

// UpdateUser specifies the fields to update.
type UpdateUser struct {
	ID           int32
	PasswordHash *string
	RowStatus    *string
}

// DeleteUser specifies the conditions for deleting users.
type DeleteUser struct {
	ID int32
}
