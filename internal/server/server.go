package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

// AuthResult contains the result of an OAuth authorization flow.
type AuthResult struct {
	Token *oauth2.Token
	err   error
}

func (a *AuthResult) Error() error {
	return a.err
}

// CallbackServer hosts the OAuth2 redirect endpoint on a local address.
//
// The state token should be cryptographically random for CSRF protection.
type CallbackServer struct {
	config     *oauth2.Config
	state      string
	httpServer *http.Server

	resultChan chan AuthResult
	errChan    chan error
	once       sync.Once

	mu          sync.Mutex
	callbackHit bool
}

// NewCallbackServer creates a callback server listening on addr.
func NewCallbackServer(addr string, config *oauth2.Config, state string) *CallbackServer {
	s := &CallbackServer{
		config:     config,
		state:      state,
		resultChan: make(chan AuthResult, 1),
		errChan:    make(chan error, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", s.handleCallback)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	return s
}

// Start begins serving in a background goroutine. Listener failures surface
// on the Errors channel.
func (s *CallbackServer) Start() {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.errChan <- err
		}
	}()
}

// Result returns the channel that receives exactly one authorization result.
func (s *CallbackServer) Result() <-chan AuthResult {
	return s.resultChan
}

// Errors returns the channel that receives server startup failures.
func (s *CallbackServer) Errors() <-chan error {
	return s.errChan
}

// Shutdown gracefully stops the server.
func (s *CallbackServer) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleCallback validates the state parameter, exchanges the authorization
// code for tokens, and sends the result through the result channel.
func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	// Only handle callback once
	s.mu.Lock()
	if s.callbackHit {
		s.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	s.callbackHit = true
	s.mu.Unlock()

	state := r.URL.Query().Get("state")
	if state != s.state {
		s.send(AuthResult{err: fmt.Errorf("invalid state parameter")})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		errParam := r.URL.Query().Get("error")
		errDesc := r.URL.Query().Get("error_description")
		s.send(AuthResult{err: fmt.Errorf("authorization failed: %s - %s", errParam, errDesc)})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := s.config.Exchange(context.Background(), code)
	if err != nil {
		s.send(AuthResult{err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	s.send(AuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

// send delivers the OAuth result through the channel (only once).
func (s *CallbackServer) send(result AuthResult) {
	s.once.Do(func() {
		s.resultChan <- result
		close(s.resultChan)
	})
}

const successPage = `
<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Authorization Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`
