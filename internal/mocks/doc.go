// Package mocks provides centralized mock implementations for testing.
//
// Each mock has a function field per interface method and default return
// values used when the field is nil. Service tests that need real behavior
// use the in-memory stores in internal/testutils instead.
//
// Usage:
//
// Import the mocks package in your test file and create the required mock:
//
//	import "github.com/flashdeck/flashcards-api/internal/mocks"
//
//	func TestSomething(t *testing.T) {
//	    validator := &mocks.MockTokenValidator{
//	        ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
//	            return &auth.Claims{Subject: "auth0|123"}, nil
//	        },
//	    }
//
//	    // Use the mock in your test...
//	}
//
// New mocks go in a file named after the interface they implement.
package mocks
