package checks

import (
	"bytes"
	"fmt"

	"github.com/atomikpanda/pass/internal/capability"
	"github.com/atomikpanda/pass/internal/process"
)

// Unit states reported by `systemctl is-active`.
const (
	ServiceActive   = "active"
	ServiceInactive = "inactive"
	ServiceFailed   = "failed"
)

// Systemctl is the command used to query and drive services.
var Systemctl = "systemctl"

// ServiceStatusIs is met when `systemctl is-active service` prints status.
// systemctl exits non-zero for every state but active, so only a failure to
// start it makes the check Undetermined.
func ServiceStatusIs(service, status string) capability.Prober {
	return unitProbe(fmt.Sprintf("service %s is %s", service, status), "is-active", service, status)
}

// ServiceIsActive is met when service is running.
func ServiceIsActive(service string) capability.Prober {
	return ServiceStatusIs(service, ServiceActive)
}

// ServiceIsInactive is met when service is stopped.
func ServiceIsInactive(service string) capability.Prober {
	return ServiceStatusIs(service, ServiceInactive)
}

// ServiceIsFailed is met when service has failed.
func ServiceIsFailed(service string) capability.Prober {
	return ServiceStatusIs(service, ServiceFailed)
}

// ServiceIsEnabled is met when service starts at boot.
func ServiceIsEnabled(service string) capability.Prober {
	return unitProbe(fmt.Sprintf("service %s is enabled", service), "is-enabled", service, "enabled")
}

func unitProbe(name, verb, service, want string) capability.Prober {
	return capability.NewProbe(name, func() capability.Verdict {
		res := process.Run([]string{Systemctl, verb, service})
		if res.Code == process.FailOnStart {
			return capability.Undetermined
		}
		return capability.VerdictOf(string(bytes.TrimSpace(res.Stdout)) == want)
	})
}
