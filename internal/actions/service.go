package actions

import (
	"fmt"

	"github.com/atomikpanda/pass/internal/capability"
	"github.com/atomikpanda/pass/internal/checks"
	"github.com/atomikpanda/pass/internal/process"
)

// ServiceCommand runs `systemctl <verb> <service>`.
func ServiceCommand(verb, service string) capability.Action {
	return capability.NewAction(fmt.Sprintf("%s service %s", verb, service), func() capability.Result {
		return capability.ResultOf(process.Run([]string{checks.Systemctl, verb, service}).OK())
	})
}

func StartService(service string) capability.Action   { return ServiceCommand("start", service) }
func StopService(service string) capability.Action    { return ServiceCommand("stop", service) }
func RestartService(service string) capability.Action { return ServiceCommand("restart", service) }
func ReloadService(service string) capability.Action  { return ServiceCommand("reload", service) }
func EnableService(service string) capability.Action  { return ServiceCommand("enable", service) }
func DisableService(service string) capability.Action { return ServiceCommand("disable", service) }
