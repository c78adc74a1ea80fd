package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Authenticator guards the API routes.
type Authenticator interface {
	// RequireToken admits requests with a valid bearer token.
	RequireToken(next http.Handler) http.Handler

	// Authenticate admits requests from active, registered users.
	Authenticate(next http.Handler) http.Handler
}

// Handlers groups the handlers mounted under /api.
type Handlers struct {
	Users    *UserHandler
	Subjects *SubjectHandler
	Decks    *DeckHandler
	Cards    *CardHandler
	Transfer *TransferHandler
}

// RegisterRoutes mounts the API under /api. Registration only needs a valid
// token; every other route needs an active user.
func RegisterRoutes(r chi.Router, h Handlers, authn Authenticator) {
	r.Route("/api", func(r chi.Router) {
		r.With(authn.RequireToken).Post("/users", h.Users.Register)

		r.Group(func(r chi.Router) {
			r.Use(authn.Authenticate)

			r.Get("/users", h.Users.ListUsers)
			r.Get("/users/me", h.Users.GetMe)
			r.Patch("/users/me", h.Users.UpdateMe)
			r.Get("/user-stats", h.Users.GetStats)

			r.Route("/subjects", func(r chi.Router) {
				r.Get("/", h.Subjects.ListSubjects)
				r.Post("/", h.Subjects.CreateSubject)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Subjects.GetSubject)
					r.Put("/", h.Subjects.UpdateSubject)
					r.Delete("/", h.Subjects.DeleteSubject)

					r.Get("/decks", h.Decks.ListDecks)
					r.Post("/decks", h.Decks.CreateDeck)
					r.Post("/decks/resolve", h.Decks.ResolveDecks)

					r.Get("/cards", h.Cards.ListCards)
					r.Post("/cards", h.Cards.CreateCard)
					r.Post("/cards/batch", h.Cards.CreateCards)
				})
			})

			r.Route("/cards", func(r chi.Router) {
				r.Delete("/", h.Cards.DeleteCards)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Cards.GetCard)
					r.Put("/", h.Cards.UpdateCard)
					r.Delete("/", h.Cards.DeleteCard)
					r.Patch("/hints", h.Cards.SetHints)
					r.Patch("/rate", h.Cards.RateCard)
					r.Put("/rate", h.Cards.RateCard)
				})
			})

			r.Route("/decks/{id}", func(r chi.Router) {
				r.Get("/", h.Decks.GetDeck)
				r.Patch("/", h.Decks.RenameDeck)
				r.Delete("/", h.Decks.DeleteDeck)
				r.Post("/cards", h.Decks.AddCards)
				r.Delete("/cards", h.Decks.RemoveCards)
			})

			r.Get("/export/subject/{id}", h.Transfer.ExportSubject)
			r.Get("/export/deck/{id}", h.Transfer.ExportDeck)
			r.Post("/upload/{subjectId}", h.Transfer.Upload)
		})
	})
}
