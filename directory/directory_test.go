package directory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirectory_SnapshotHidesPrivateFields(t *testing.T) {
	req := require.New(t)
	d := New()
	d.Add(User{
		ID:       "alex",
		Name:     "Alex Doe",
		Email:    "alex@test.com",
		Phone:    "111-222-3333",
		Password: "password",
		Bio:      "hello",
	})

	snap, ok := d.Snapshot("alex")
	req.True(ok)
	req.Equal("alex", snap.ID)
	req.Equal("Alex Doe", snap.Name)
	req.Equal("hello", snap.Bio)

	_, ok = d.Snapshot("ghost")
	req.False(ok)
}

func TestDirectory_SeedAndAll(t *testing.T) {
	req := require.New(t)
	d := Seed()

	req.True(d.Exists("alex"))
	req.True(d.Exists("testuser"))
	req.False(d.Exists("ghost"))

	all := d.All()
	req.Len(all, 5)
	// Sorted by id for stable listings.
	req.Equal("alex", all[0].ID)
	req.Equal("testuser", all[4].ID)
}
