package models

// All returns every model for migrations.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Project{},
		&Request{},
		&Task{},
		&Submission{},
		&Conversation{},
		&Message{},
		&ActivityEvent{},
	}
}
