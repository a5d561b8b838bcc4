// Package osinfo probes host identity for the machine metadata handler.
// Every probe is exposed as a small function value so tests can inject
// fixed results instead of reading the real host.
package osinfo

import (
	"bufio"
	"os"
	"strings"
)

// MachineID reads the 32-hex-digit machine id from /etc/machine-id.
func MachineID() (string, error) {
	return readID("/etc/machine-id")
}

// BootID reads the current boot's 32-hex-digit id from the kernel.
func BootID() (string, error) {
	return readID("/proc/sys/kernel/random/boot_id")
}

func readID(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	id := strings.TrimSpace(string(b))
	id = strings.ReplaceAll(id, "-", "")
	return id, nil
}

// Hostname returns the cleaned host name: the kernel hostname with any
// domain suffix and surrounding whitespace stripped.
func Hostname() (string, error) {
	h, err := os.Hostname()
	if err != nil {
		return "", err
	}
	h = strings.TrimSpace(h)
	if i := strings.IndexByte(h, '.'); i >= 0 {
		h = h[:i]
	}
	return h, nil
}

// OSPrettyName reads PRETTY_NAME from /etc/os-release, defaulting to
// "Linux" when the file is absent or the key is missing.
func OSPrettyName() string {
	f, err := os.Open("/etc/os-release")
	if err != nil {
		return "Linux"
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "PRETTY_NAME=") {
			continue
		}
		v := strings.TrimPrefix(line, "PRETTY_NAME=")
		v = strings.Trim(v, `"`)
		if v != "" {
			return v
		}
	}
	return "Linux"
}

// VirtualizationDetector reports the detected virtualization technology, defaulting
// to "bare" when none is detected. A complete detector would inspect
// /sys/class/dmi, cgroup membership, and container environment markers;
// this gateway exposes the result as an injectable function so the
// detection strategy can evolve without touching the handler.
type VirtualizationDetector func() string

// DefaultVirtualization is the zero-dependency detector: it only checks the
// presence of /.dockerenv and /run/.containerenv, the two cheapest signals,
// and otherwise reports "bare".
func DefaultVirtualization() string {
	for _, marker := range []string{"/.dockerenv", "/run/.containerenv"} {
		if _, err := os.Stat(marker); err == nil {
			return "docker"
		}
	}
	return "bare"
}
