package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Fire-Hose Nozzle", "fire hose nozzle"},
		{"  Fire   Hose  ", "fire hose"},
		{"Gerät", "gerat"},
		{"låge", "lage"},
		{"under_score", "under score"},
		{"O'Brien's (spare)", "obriens spare"},
		{"Nr. 3", "nr 3"},
		{"", ""},
		{"---", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Normalize(c.in), "input %q", c.in)
	}
}

func searchFixture(t *testing.T) *Store {
	t.Helper()
	s := setupStore(t)

	truck := mustVehicle(t, s, "Ladder Truck")
	rear := mustPlace(t, s, truck.ID, "Rear Locker")
	mustItem(t, s, rear.ID, "Fire-Hose Nozzle")
	mustItem(t, s, rear.ID, "Axe")

	engine := mustVehicle(t, s, "Engine 7")
	cab := mustPlace(t, s, engine.ID, "Cab")
	mustItem(t, s, cab.ID, "Hose strap")
	return s
}

func TestSearchTokensMatchAcrossAncestry(t *testing.T) {
	s := searchFixture(t)
	ctx := context.Background()

	// hyphen in the stored name folds to a space
	res, err := s.Search(ctx, "fire hose", 0)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Fire-Hose Nozzle", res[0].Item.Name)
	assert.Equal(t, "Rear Locker", res[0].Place.Name)
	assert.Equal(t, "Ladder Truck", res[0].Vehicle.Name)

	// tokens may hit different levels of the hierarchy
	res, err = s.Search(ctx, "hose truck", 0)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Fire-Hose Nozzle", res[0].Item.Name)

	// every token must match somewhere
	res, err = s.Search(ctx, "hose bucket", 0)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestSearchEmptyQuery(t *testing.T) {
	s := searchFixture(t)
	for _, q := range []string{"", "   ", "-_-"} {
		res, err := s.Search(context.Background(), q, 0)
		require.NoError(t, err)
		assert.Empty(t, res, "query %q", q)
	}
}

func TestSearchVehicleFilter(t *testing.T) {
	s := searchFixture(t)
	ctx := context.Background()

	all, err := s.Search(ctx, "hose", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)

	engine, err := s.FindVehicleByName(ctx, "Engine 7")
	require.NoError(t, err)
	res, err := s.Search(ctx, "hose", engine.ID)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Hose strap", res[0].Item.Name)
}

func TestSearchOrderAndCase(t *testing.T) {
	s := searchFixture(t)
	res, err := s.Search(context.Background(), "HOSE", 0)
	require.NoError(t, err)
	require.Len(t, res, 2)
	// ordered by vehicle name, then place, then item
	assert.Equal(t, "Engine 7", res[0].Vehicle.Name)
	assert.Equal(t, "Ladder Truck", res[1].Vehicle.Name)
}
