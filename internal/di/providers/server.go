package providers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/fairyhunter13/price-stock-merger/internal/config"
	"github.com/fairyhunter13/price-stock-merger/internal/export"
	httpapi "github.com/fairyhunter13/price-stock-merger/internal/http"
	"github.com/fairyhunter13/price-stock-merger/internal/obs"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	app     *httpapi.App
	timeout time.Duration
	// BoundAddr is the listener address, useful when HTTP_ADDR uses port 0.
	BoundAddr net.Addr
}

// Shutdown implements do.Shutdownable. In-flight runs get the configured
// shutdown timeout to finish.
func (h *HTTPServerHandle) Shutdown() error {
	h.app.StartShutdown()
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	if err := h.Server.Shutdown(ctx); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
		return err
	}
	obs.Logger.Info("http_stopped")
	return nil
}

// ProvideApp provides the HTTP application.
func ProvideApp(i do.Injector) (*httpapi.App, error) {
	cfg := do.MustInvoke[*config.Config](i)
	svc := do.MustInvoke[*export.Service](i)
	return httpapi.NewApp(*cfg, svc), nil
}

// ProvideHTTPServer binds the listener and serves in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	app := do.MustInvoke[*httpapi.App](i)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Runs fetch two reports; leave room beyond the fetch timeout.
		WriteTimeout: 2*cfg.FetchTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return nil, err
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			obs.Logger.Error("http_server_error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, app: app, timeout: cfg.ShutdownTimeout, BoundAddr: ln.Addr()}, nil
}
