package packlist

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/kasperbn/packlist/internal/catalog"
	"github.com/kasperbn/packlist/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupImporter(t *testing.T) (*Importer, *catalog.Store) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	store := catalog.NewStore(db)
	return NewImporter(store), store
}

func TestImportFourColumnsIntoContextVehicle(t *testing.T) {
	im, store := setupImporter(t)
	ctx := context.Background()

	v, err := store.CreateVehicle(ctx, "Engine 7", "")
	require.NoError(t, err)

	csvText := "Place,Item,Quantity,Note\n" +
		"Cab,Flashlight,2,\n" +
		"Cab,Gloves,,\n"
	report, err := im.Import(ctx, strings.NewReader(csvText), Options{VehicleID: v.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Imported)
	assert.Empty(t, report.Skipped)
	assert.Equal(t, v.ID, report.VehicleID)

	p, err := store.FindPlaceByName(ctx, v.ID, "Cab")
	require.NoError(t, err)
	items, err := store.ListItems(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Flashlight", items[0].Name)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "Gloves", items[1].Name)
	assert.Equal(t, 1, items[1].Quantity, "blank quantity defaults to 1")
}

func TestImportFiveColumnsCreatesVehicles(t *testing.T) {
	im, store := setupImporter(t)
	ctx := context.Background()

	csvText := "Vehicle,Place,Item,Quantity,Note\n" +
		"Engine 7,Cab,Flashlight,2,spare batteries\n" +
		"Ladder 3,Roof,Rope,1,\n" +
		"engine 7,Cab,Gloves,4,\n"
	report, err := im.Import(ctx, strings.NewReader(csvText), Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Imported)
	assert.Equal(t, []string{"Engine 7", "Ladder 3"}, report.Vehicles,
		"vehicle cells resolve case-insensitively")

	vs, err := store.ListVehicles(ctx)
	require.NoError(t, err)
	require.Len(t, vs, 2)

	v, err := store.FindVehicleByName(ctx, "Engine 7")
	require.NoError(t, err)
	p, err := store.FindPlaceByName(ctx, v.ID, "Cab")
	require.NoError(t, err)
	items, err := store.ListItems(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "spare batteries", items[0].Note)
}

func TestImportBlankVehicleCellUsesDefault(t *testing.T) {
	im, store := setupImporter(t)
	ctx := context.Background()

	csvText := "Vehicle,Place,Item,Quantity,Note\n" +
		",Cab,Flashlight,1,\n"
	report, err := im.Import(ctx, strings.NewReader(csvText), Options{DefaultName: "Import rescue-truck"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)

	v, err := store.FindVehicleByName(ctx, "Import rescue-truck")
	require.NoError(t, err)
	assert.Equal(t, v.ID, report.VehicleID)
}

func TestImportUntitledFallback(t *testing.T) {
	im, store := setupImporter(t)
	ctx := context.Background()

	csvText := "Place,Item,Quantity,Note\nCab,Rope,1,\n"
	_, err := im.Import(ctx, strings.NewReader(csvText), Options{})
	require.NoError(t, err)
	_, err = store.FindVehicleByName(ctx, "Untitled")
	require.NoError(t, err)
}

func TestReimportAppendsDuplicates(t *testing.T) {
	im, store := setupImporter(t)
	ctx := context.Background()

	csvText := "Vehicle,Place,Item,Quantity,Note\n" +
		"Engine 7,Cab,Flashlight,1,\n"
	_, err := im.Import(ctx, strings.NewReader(csvText), Options{})
	require.NoError(t, err)
	_, err = im.Import(ctx, strings.NewReader(csvText), Options{})
	require.NoError(t, err)

	v, err := store.FindVehicleByName(ctx, "Engine 7")
	require.NoError(t, err)
	p, err := store.FindPlaceByName(ctx, v.ID, "Cab")
	require.NoError(t, err)
	items, err := store.ListItems(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2, "re-import appends, it never merges")

	ps, err := store.ListPlaces(ctx, v.ID)
	require.NoError(t, err)
	assert.Len(t, ps, 1, "existing places are reused")
}

func TestImportRejectsUnknownHeader(t *testing.T) {
	im, store := setupImporter(t)
	ctx := context.Background()

	_, err := im.Import(ctx, strings.NewReader("Foo,Bar\nx,y\n"), Options{})
	require.Error(t, err)
	assert.True(t, catalog.IsValidation(err))

	vs, err := store.ListVehicles(ctx)
	require.NoError(t, err)
	assert.Empty(t, vs, "nothing may be written on a rejected header")
}

func TestImportDanishHeader(t *testing.T) {
	im, store := setupImporter(t)
	ctx := context.Background()

	csvText := "Brandbil;Rum/Låge;Udstyr;Antal;Note\n" +
		"Sprøjte 1;Kabine;Lygte;2;reserve\n"
	report, err := im.Import(ctx, strings.NewReader(csvText), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)

	v, err := store.FindVehicleByName(ctx, "Sprøjte 1")
	require.NoError(t, err)
	p, err := store.FindPlaceByName(ctx, v.ID, "Kabine")
	require.NoError(t, err)
	items, err := store.ListItems(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Lygte", items[0].Name)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestImportWindows1252Fallback(t *testing.T) {
	im, store := setupImporter(t)
	ctx := context.Background()

	// "Låge" with 0xE5 for å is not valid UTF-8
	raw := []byte("Place,Item,Quantity,Note\nL\xe5ge,Reb,1,\n")
	report, err := im.Import(ctx, strings.NewReader(string(raw)), Options{DefaultName: "Vogn"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)

	v, err := store.FindVehicleByName(ctx, "Vogn")
	require.NoError(t, err)
	_, err = store.FindPlaceByName(ctx, v.ID, "Låge")
	require.NoError(t, err)
}

func TestImportBOMStripped(t *testing.T) {
	im, _ := setupImporter(t)
	csvText := "\xEF\xBB\xBFPlace,Item,Quantity,Note\nCab,Rope,1,\n"
	report, err := im.Import(context.Background(), strings.NewReader(csvText), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
}

func TestImportSkipsAndReportsBadRows(t *testing.T) {
	im, _ := setupImporter(t)
	csvText := "Place,Item,Quantity,Note\n" +
		"Cab,Flashlight,1,\n" +
		",Rope,1,\n" +
		"Cab,,1,\n" +
		"\n" +
		"Roof,Axe,garbage,\n"
	report, err := im.Import(context.Background(), strings.NewReader(csvText), Options{DefaultName: "Vogn"})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Imported)
	require.Len(t, report.Skipped, 2)
	assert.Equal(t, SkippedRow{Row: 3, Reason: "blank place"}, report.Skipped[0])
	assert.Equal(t, SkippedRow{Row: 4, Reason: "blank item"}, report.Skipped[1])
}

func TestImportSkipRowNumbersSurviveBlankLines(t *testing.T) {
	im, _ := setupImporter(t)
	csvText := "Place,Item,Quantity,Note\n" + // line 1
		"Cab,Flashlight,1,\n" + // line 2
		"\n" + // line 3
		",Rope,1,\n" // line 4
	report, err := im.Import(context.Background(), strings.NewReader(csvText), Options{DefaultName: "Vogn"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, SkippedRow{Row: 4, Reason: "blank place"}, report.Skipped[0],
		"skip must cite the physical line, not the record index")
}

func TestImportForcedDelimiter(t *testing.T) {
	im, _ := setupImporter(t)
	csvText := "Place;Item;Quantity;Note\nCab;Rope;1;long, red\n"
	report, err := im.Import(context.Background(), strings.NewReader(csvText), Options{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
}

func TestImportMissingContextVehicle(t *testing.T) {
	im, _ := setupImporter(t)
	_, err := im.Import(context.Background(), strings.NewReader("Place,Item,Quantity,Note\nCab,Rope,1,\n"), Options{VehicleID: 99})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}
