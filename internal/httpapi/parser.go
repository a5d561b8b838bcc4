package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/vanvugt/journal-gatewayd/internal/apierr"
	"github.com/vanvugt/journal-gatewayd/internal/journal"
)

var (
	errDiscreteNeedsCursor = apierr.New(apierr.Parse, "discrete requires a non-empty cursor")
	errZeroCount           = apierr.New(apierr.Parse, "Range count must be greater than zero")
	errBadRangeSyntax      = apierr.New(apierr.Parse, "malformed Range header, expected entries=<cursor>[:<skip>[:<count>]]")
	errBadSkip             = apierr.New(apierr.Parse, "Range skip is not a valid integer")
	errBadCount            = apierr.New(apierr.Parse, "Range count is not a valid unsigned integer")
)

const rangeEntriesPrefix = "entries="

// ParseAccept maps the Accept header to an OutputMode. An unrecognized or
// absent value is not an error; it just falls back to the default mode.
func ParseAccept(req *http.Request) journal.OutputMode {
	return journal.ModeFromAccept(req.Header.Get("Accept"))
}

// ParseRange parses the Range header and fills in cursor, skip, and count
// on ctx. A missing or non-matching header is a no-op success.
func ParseRange(req *http.Request, ctx *RequestContext) error {
	return ParseRangeValue(req.Header.Get("Range"), ctx)
}

// ParseRangeValue parses a raw Range header value in isolation, so tests
// can exercise the grammar without building an *http.Request.
func ParseRangeValue(raw string, ctx *RequestContext) error {
	if raw == "" || !strings.HasPrefix(raw, rangeEntriesPrefix) {
		return nil
	}

	rest := strings.TrimPrefix(raw, rangeEntriesPrefix)
	rest = strings.TrimLeft(rest, " \t")

	parts := strings.SplitN(rest, ":", 3)
	cursor := strings.TrimRight(parts[0], " \t")
	if cursor != "" {
		ctx.Cursor = cursor
	}

	if len(parts) >= 2 && parts[1] != "" {
		skip, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			return errBadSkip
		}
		ctx.NSkip = skip
	}

	if len(parts) == 3 && parts[2] != "" {
		count, err := strconv.ParseUint(strings.TrimSpace(parts[2]), 10, 64)
		if err != nil {
			return errBadCount
		}
		if count == 0 {
			return errZeroCount
		}
		ctx.NEntries = count
		ctx.NEntriesSet = true
	}

	return nil
}

// CurrentBootID is an injectable provider for the `boot` query parameter,
// so tests need not read /proc/sys/kernel/random/boot_id.
type CurrentBootID func() (string, error)

// ParseQuery applies the query-argument rules to ctx. Each parse failure
// is deferred into ctx.ParseErr so only the first one is ever reported;
// ParseQuery itself has no return value and callers must check
// ctx.ParseErr afterwards.
func ParseQuery(req *http.Request, ctx *RequestContext, bootID CurrentBootID) {
	for key, values := range req.URL.Query() {
		first := ""
		if len(values) > 0 {
			first = values[0]
		}

		switch key {
		case "follow":
			ctx.Follow = boolArg(first)
		case "discrete":
			ctx.Discrete = boolArg(first)
		case "boot":
			if !boolArg(first) {
				continue
			}
			id, err := bootID()
			if err != nil {
				if ctx.ParseErr == nil {
					ctx.ParseErr = apierr.Wrap(apierr.Server, err)
				}
				continue
			}
			ctx.Matches = append(ctx.Matches, journal.Match{Field: "_BOOT_ID", Value: id})
		default:
			// A repeated key=value pair adds one match per occurrence,
			// not just the first.
			for _, value := range values {
				ctx.Matches = append(ctx.Matches, journal.Match{Field: key, Value: value})
			}
		}
	}
}

// boolArg implements "empty value means true" query-flag parsing.
func boolArg(v string) bool {
	if v == "" {
		return true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}
