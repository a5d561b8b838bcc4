package httpapi

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vanvugt/journal-gatewayd/internal/apierr"
)

// writeError shapes a pre-body error response: always text/plain with a
// trailing newline, status chosen from the error's Kind.
func writeError(w http.ResponseWriter, err error) {
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		apiErr = apierr.Wrap(apierr.Server, err)
	}

	if apiErr.Kind == apierr.OOM {
		writeOOM(w)
		return
	}

	logrus.WithField("kind", apiErr.Kind).Error(apiErr.Error())

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(apiErr.Kind.HTTPStatus())
	w.Write([]byte(apiErr.Message + "\n"))
}

// writeOOM shapes the fixed-body 503 response used for allocation
// failures, including ones raised by the HTTP layer's own response
// construction.
func writeOOM(w http.ResponseWriter) {
	logrus.Error("out of memory")
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(apierr.OOM.HTTPStatus())
	w.Write([]byte(apierr.OutOfMemory))
}
