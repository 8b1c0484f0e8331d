package models

// User представляет покупателя
type User struct {
	ID       int64
	Email    string
	PassHash []byte
}
