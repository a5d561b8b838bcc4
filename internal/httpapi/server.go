package httpapi

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"

	"github.com/coreos/go-systemd/activation"
	"github.com/sirupsen/logrus"
	"github.com/vanvugt/journal-gatewayd/internal/config"
)

// Serve starts the HTTP(S) server: it listens on cfg.Port by default, but
// adopts a single socket-activation file descriptor when the host
// activation protocol supplies exactly one.
func Serve(cfg config.Config, handler http.Handler) error {
	var tlsConfig *tls.Config
	if cfg.Key != "" && cfg.Cert != "" {
		cert, err := tls.LoadX509KeyPair(cfg.Cert, cfg.Key)
		if err != nil {
			return fmt.Errorf("loading TLS material: %w", err)
		}
		// Loaded once at startup and never mutated afterward.
		tlsConfig = &tls.Config{Certificates: []tls.Certificate{cert}}
	}

	listeners, err := activation.Listeners(true)
	if err != nil {
		return fmt.Errorf("socket activation: %w", err)
	}

	var ln net.Listener
	if len(listeners) == 1 {
		logrus.Infof("listening on activated socket %s", listeners[0].Addr())
		ln = listeners[0]
	} else {
		ln, err = net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
		if err != nil {
			return err
		}
		logrus.Infof("listening on :%d", cfg.Port)
	}

	srv := &http.Server{Handler: handler}
	if tlsConfig != nil {
		srv.TLSConfig = tlsConfig
		return srv.ServeTLS(ln, "", "")
	}
	return srv.Serve(ln)
}
