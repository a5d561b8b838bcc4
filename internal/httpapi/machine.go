package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/vanvugt/journal-gatewayd/internal/apierr"
	"github.com/vanvugt/journal-gatewayd/internal/journal"
)

// machineDoc is the wire shape of GET /machine. Every integer field is
// serialized as a JSON string of decimal digits rather than a JSON
// number, preserving full 64-bit precision across the wire.
type machineDoc struct {
	MachineID          string `json:"machine_id"`
	BootID             string `json:"boot_id"`
	Hostname           string `json:"hostname"`
	OSPrettyName       string `json:"os_pretty_name"`
	Virtualization     string `json:"virtualization"`
	Usage              string `json:"usage"`
	CutoffFromRealtime string `json:"cutoff_from_realtime"`
	CutoffToRealtime   string `json:"cutoff_to_realtime"`
}

// MachineIdentity supplies the host-level facts the journal adapter
// cannot provide. Each field is independently injectable for tests.
type MachineIdentity struct {
	MachineID      func() (string, error)
	BootID         func() (string, error)
	Hostname       func() (string, error)
	OSPrettyName   func() string
	Virtualization func() string
}

// MachineHandler builds the /machine handler. openAdapter opens a fresh
// journal handle per request, the same way the other handlers do, so the
// usage and cutoff figures it reports are never stale relative to a
// long-lived handle.
func MachineHandler(identity MachineIdentity, openAdapter func() (journal.Adapter, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		adapter, err := openAdapter()
		if err != nil {
			writeError(w, apierr.Wrap(apierr.Server, err))
			return
		}
		defer adapter.Close()

		machineID, err := identity.MachineID()
		if err != nil {
			writeError(w, apierr.Wrap(apierr.Server, err))
			return
		}

		bootID, err := identity.BootID()
		if err != nil {
			writeError(w, apierr.Wrap(apierr.Server, err))
			return
		}

		hostname, err := identity.Hostname()
		if err != nil {
			writeError(w, apierr.Wrap(apierr.Server, err))
			return
		}

		usage, err := adapter.GetUsage()
		if err != nil {
			writeError(w, apierr.Wrap(apierr.Server, err))
			return
		}

		from, to, err := adapter.GetCutoffRealtime()
		if err != nil {
			writeError(w, apierr.Wrap(apierr.Server, err))
			return
		}

		doc := machineDoc{
			MachineID:          machineID,
			BootID:             bootID,
			Hostname:           hostname,
			OSPrettyName:       identity.OSPrettyName(),
			Virtualization:     identity.Virtualization(),
			Usage:              strconv.FormatUint(usage, 10),
			CutoffFromRealtime: strconv.FormatUint(from, 10),
			CutoffToRealtime:   strconv.FormatUint(to, 10),
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(doc); err != nil {
			logrus.Errorf("machine: encode response: %s", err)
		}
	}
}
