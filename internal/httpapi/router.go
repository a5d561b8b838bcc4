package httpapi

import (
	"embed"
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/vanvugt/journal-gatewayd/internal/apierr"
	"github.com/vanvugt/journal-gatewayd/internal/journal"
)

//go:embed assets/browse.html
var browseAsset embed.FS

const entryChunkSize = 4096

// OpenFunc opens a fresh journal Adapter. The journal store is opened
// per-request; there is no global journal handle.
type OpenFunc func() (journal.Adapter, error)

// Deps bundles everything the router needs to construct the other
// handlers.
type Deps struct {
	Open     OpenFunc
	BootID   CurrentBootID
	Identity MachineIdentity
}

// NewRouter builds the endpoint router: GET-only dispatch across the five
// served paths, wrapped in an access-log handler.
func NewRouter(deps Deps) http.Handler {
	r := mux.NewRouter().StrictSlash(true)

	r.HandleFunc("/", redirectToBrowse).Methods(http.MethodGet)
	r.HandleFunc("/browse", serveBrowse).Methods(http.MethodGet)
	r.HandleFunc("/entries", entriesHandler(deps)).Methods(http.MethodGet)
	r.HandleFunc("/fields/{name}", fieldsHandler(deps)).Methods(http.MethodGet)
	r.HandleFunc("/machine", MachineHandler(deps.Identity, deps.Open)).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, apierr.New(apierr.NotFound, "no such endpoint: "+req.URL.Path))
	})

	return handlers.CombinedLoggingHandler(logrusAccessLogWriter{}, r)
}

func redirectToBrowse(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Header().Set("Location", "/browse")
	w.WriteHeader(http.StatusMovedPermanently)
	io.WriteString(w, `<html><body><a href="/browse">/browse</a></body></html>`)
}

func serveBrowse(w http.ResponseWriter, req *http.Request) {
	b, err := browseAsset.ReadFile("assets/browse.html")
	if err != nil {
		writeError(w, apierr.Wrap(apierr.NotFound, err))
		return
	}
	w.Header().Set("Content-Type", "text/html")
	w.Write(b)
}

func entriesHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		rc := &RequestContext{Mode: ParseAccept(req)}

		if err := ParseRange(req, rc); err != nil {
			writeError(w, err)
			return
		}
		ParseQuery(req, rc, deps.BootID)
		if rc.ParseErr != nil {
			writeError(w, rc.ParseErr)
			return
		}
		if err := rc.Validate(); err != nil {
			writeError(w, err)
			return
		}

		adapter, err := deps.Open()
		if err != nil {
			writeError(w, apierr.Wrap(apierr.Server, err))
			return
		}

		for _, m := range rc.Matches {
			if err := adapter.AddMatch(m); err != nil {
				adapter.Close()
				writeError(w, apierr.Wrap(apierr.Parse, err))
				return
			}
		}

		stream, err := NewEntryStream(adapter, rc, WithContext(req.Context()))
		if err != nil {
			adapter.Close()
			writeError(w, apierr.Wrap(apierr.Parse, err))
			return
		}
		defer stream.Close()

		w.Header().Set("Content-Type", rc.Mode.ContentType())
		copyChunked(w, stream)
	}
}

func fieldsHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		name := mux.Vars(req)["name"]
		mode := ParseAccept(req)

		adapter, err := deps.Open()
		if err != nil {
			writeError(w, apierr.Wrap(apierr.Server, err))
			return
		}

		stream, err := NewFieldStream(adapter, name, mode)
		if err != nil {
			adapter.Close()
			writeError(w, apierr.Wrap(apierr.Server, err))
			return
		}
		defer stream.Close()

		w.Header().Set("Content-Type", fieldMIME(mode))
		copyChunked(w, stream)
	}
}

// copyChunked drives an io.Reader body in entryChunkSize pieces, flushing
// after each one so followed streams become visible to the client as soon
// as they are produced. A scratch buffer that outgrows bytes.ErrTooLarge
// while serializing an entry surfaces as a recovered panic. If that happens
// before any byte reached w, the client has not been given a status line
// yet, so this still writes the fixed 503 OOM response; once bytes are
// already flowing, headers are committed and all that's left to do is log.
func copyChunked(w http.ResponseWriter, r io.Reader) {
	wrote := false
	defer func() {
		if rec := recover(); rec != nil {
			if !wrote {
				writeOOM(w)
				return
			}
			logrus.Errorf("stream aborted: out of memory: %v", rec)
		}
	}()

	flusher, canFlush := w.(http.Flusher)
	buf := make([]byte, entryChunkSize)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
			wrote = true
			if canFlush {
				flusher.Flush()
			}
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			logrus.Errorf("stream aborted: %s", err)
			return
		}
	}
}

type logrusAccessLogWriter struct{}

func (logrusAccessLogWriter) Write(p []byte) (int, error) {
	logrus.Info(string(p))
	return len(p), nil
}
