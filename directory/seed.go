package directory

// Seed returns a directory populated with the demo accounts the rest of
// the development stack expects.
func Seed() *Directory {
	d := New()
	for _, u := range []User{
		{
			ID:        "alex",
			Name:      "Alex Doe",
			Email:     "alex@test.com",
			Phone:     "111-222-3333",
			Password:  "password",
			AvatarURL: "https://i.pravatar.cc/150?u=alex",
			Bio:       "Lover of sunsets and technology.",
			Friends:   []string{"brian", "casey"},
		},
		{
			ID:        "brian",
			Name:      "Brian Smith",
			Email:     "brian@test.com",
			Phone:     "444-555-6666",
			Password:  "password",
			AvatarURL: "https://i.pravatar.cc/150?u=brian",
			Friends:   []string{"alex"},
		},
		{
			ID:        "casey",
			Name:      "Casey Jones",
			Email:     "casey@test.com",
			Phone:     "777-888-9999",
			Password:  "password",
			AvatarURL: "https://i.pravatar.cc/150?u=casey",
			Friends:   []string{"alex"},
		},
		{
			ID:        "diana",
			Name:      "Diana Prince",
			Email:     "diana@test.com",
			Phone:     "123-123-1234",
			Password:  "password",
			AvatarURL: "https://i.pravatar.cc/150?u=diana",
		},
		{
			ID:        "testuser",
			Name:      "Test User",
			Email:     "test@user.com",
			Phone:     "000-000-0000",
			Password:  "password",
			AvatarURL: "https://i.pravatar.cc/150?u=testuser",
		},
	} {
		d.Add(u)
	}
	return d
}
