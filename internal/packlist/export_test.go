package packlist

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportWritesRowsInDisplayOrder(t *testing.T) {
	im, store := setupImporter(t)
	ctx := context.Background()

	csvText := "Vehicle,Place,Item,Quantity,Note\n" +
		"Engine 7,Cab,Flashlight,2,spare\n" +
		"Engine 7,Roof,Rope,1,\n" +
		"Engine 7,Cab,Gloves,4,\n"
	report, err := im.Import(ctx, strings.NewReader(csvText), Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Export(ctx, store, &buf, report.VehicleID, 0))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Vehicle,Place,Item,Quantity,Note", lines[0])
	assert.Equal(t, "Engine 7,Cab,Flashlight,2,spare", lines[1])
	assert.Equal(t, "Engine 7,Cab,Gloves,4,", lines[2])
	assert.Equal(t, "Engine 7,Roof,Rope,1,", lines[3])
}

func TestExportRoundTrip(t *testing.T) {
	im, store := setupImporter(t)
	ctx := context.Background()

	original := "Vehicle,Place,Item,Quantity,Note\n" +
		"Engine 7,Cab,Flashlight,2,spare\n"
	report, err := im.Import(ctx, strings.NewReader(original), Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Export(ctx, store, &buf, report.VehicleID, 0))
	assert.Equal(t, original, strings.ReplaceAll(buf.String(), "\r\n", "\n"))
}

func TestExportCustomDelimiter(t *testing.T) {
	im, store := setupImporter(t)
	ctx := context.Background()

	report, err := im.Import(ctx, strings.NewReader("Vehicle,Place,Item,Quantity,Note\nEngine 7,Cab,Rope,1,\n"), Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Export(ctx, store, &buf, report.VehicleID, ';'))
	assert.True(t, strings.HasPrefix(buf.String(), "Vehicle;Place;Item;Quantity;Note"))
}

func TestExportFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Engine 7", "Engine-7_packlist.csv"},
		{"  Ladder 3  ", "Ladder-3_packlist.csv"},
		{"Sprøjte/1", "Sprjte1_packlist.csv"},
		{"///", "vehicle_packlist.csv"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ExportFilename(c.in), "input %q", c.in)
	}
}
