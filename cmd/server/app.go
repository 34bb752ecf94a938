package main

import (
	"net/http"

	"github.com/kasperbn/packlist/internal/auth"
	"github.com/kasperbn/packlist/internal/blob"
	"github.com/kasperbn/packlist/internal/catalog"
	"github.com/kasperbn/packlist/internal/config"
	"github.com/kasperbn/packlist/internal/handlers"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux   *http.ServeMux
	store *catalog.Store
}

// NewApp creates the application with all routes configured.
func NewApp(db *gorm.DB, blobs blob.Store, cfg config.Config) *App {
	app := &App{
		mux:   http.NewServeMux(),
		store: catalog.NewStore(db),
	}

	var delimiter rune
	if cfg.CSVDelimiter != "" {
		delimiter = rune(cfg.CSVDelimiter[0])
	}

	ah := handlers.NewAuthHandler(auth.Credentials{User: cfg.AdminUser, Pass: cfg.AdminPass, PassHash: cfg.AdminPassHash})
	vh := handlers.NewVehicleHandler(app.store)
	ph := handlers.NewPlaceHandler(app.store)
	ih := handlers.NewItemHandler(app.store, blobs)
	dh := handlers.NewDocumentHandler(app.store, blobs)
	ie := handlers.NewImportExportHandler(app.store, delimiter)
	sh := handlers.NewSearchHandler(app.store)

	// ─────────────────────────────────────────────────────────────────────────
	// Public routes (no auth required)
	// ─────────────────────────────────────────────────────────────────────────
	app.mux.HandleFunc("GET /{$}", vh.Index)
	app.mux.HandleFunc("GET /login", ah.LoginForm)
	app.mux.HandleFunc("POST /login", ah.Login)
	app.mux.HandleFunc("GET /logout", ah.Logout)

	app.mux.HandleFunc("GET /vehicles", vh.List)
	app.mux.HandleFunc("GET /vehicle/{id}", vh.Detail)
	app.mux.HandleFunc("GET /search", sh.Search)
	app.mux.HandleFunc("GET /vehicle/{id}/export", ie.Export)
	app.mux.HandleFunc("GET /photo/{ref}", ih.ServePhoto)
	app.mux.HandleFunc("GET /document/{id}", dh.Download)
	app.mux.HandleFunc("GET /import", ie.Form)

	// ─────────────────────────────────────────────────────────────────────────
	// Mutating routes (require a session)
	// ─────────────────────────────────────────────────────────────────────────
	app.protect("POST /vehicles", vh.Create)
	app.protect("POST /vehicle/{id}/delete", vh.Delete)
	app.protect("POST /vehicle/{id}/rename", vh.Rename)
	app.protect("POST /vehicle/{id}/description", vh.SetDescription)
	app.protect("POST /vehicle/{id}/move", vh.Move)
	app.protect("POST /vehicle/{id}/documents", dh.Upload)
	app.protect("POST /document/{id}/delete", dh.Delete)

	app.protect("POST /vehicle/{id}/place/add", ph.Add)
	app.protect("POST /place/{id}/rename", ph.Rename)
	app.protect("POST /place/{id}/move", ph.Move)
	app.protect("POST /place/{id}/delete", ph.Delete)

	app.protect("POST /item/add", ih.Add)
	app.protect("POST /item/{id}/edit", ih.Edit)
	app.protect("POST /item/{id}/move", ih.Move)
	app.protect("POST /item/{id}/delete", ih.Delete)
	app.protect("POST /item/{id}/photo", ih.UploadPhoto)

	app.protect("POST /import", ie.Import)

	// ─────────────────────────────────────────────────────────────────────────
	// Static files
	// ─────────────────────────────────────────────────────────────────────────
	app.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	return app
}

func (a *App) protect(pattern string, h http.HandlerFunc) {
	a.mux.Handle(pattern, auth.RequireAuth(h))
}

// ServeHTTP implements http.Handler. The auth middleware runs for every
// request so templates can show the login state.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	auth.Middleware(a.mux).ServeHTTP(w, r)
}
