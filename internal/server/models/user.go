package models

// User is the minimal identity record the core reads. Authentication lives
// outside the core; this model only backs email→identity resolution when a
// grant targets a known user.
type User struct {
	ID       string
	Username string
	Email    string
}
